package diag

// Position is a zero-based line/character pair.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is a single finding issued by the external linter.
// It is immutable once issued; a re-lint replaces the whole batch.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity,omitempty"`
	Code     Code     `json:"code,omitempty"`
	Source   string   `json:"source,omitempty"`
	Message  string   `json:"message"`
}

// RuleID extracts the rule id from the diagnostic code.
func (d Diagnostic) RuleID() (string, error) {
	return d.Code.RuleID()
}

// StartLine returns the zero-based line the diagnostic starts on.
func (d Diagnostic) StartLine() int {
	return d.Range.Start.Line
}

// FixSuggestion is a remediation label offered by the linter for a rule.
type FixSuggestion struct {
	Label string `json:"label"`
}

// Catalog maps rule ids to the fix suggestions the linter knows for them.
type Catalog map[string][]FixSuggestion

// For returns the suggestions registered for ruleID.
func (c Catalog) For(ruleID string) []FixSuggestion {
	if c == nil {
		return nil
	}
	return c[ruleID]
}

// Add registers a suggestion unless an identical label is already present.
func (c Catalog) Add(ruleID string, s FixSuggestion) {
	for _, existing := range c[ruleID] {
		if existing.Label == s.Label {
			return
		}
	}
	c[ruleID] = append(c[ruleID], s)
}
