package suppress

import (
	"errors"
	"fmt"

	"lintfix/internal/diag"
)

// ErrLineOutOfRange is returned when the target line lies past the document end.
var ErrLineOutOfRange = errors.New("suppression target line out of range")

// Scope selects how far a suppression reaches.
type Scope uint8

const (
	// ScopeLine annotates the construct on the diagnostic's start line.
	ScopeLine Scope = iota + 1
	// ScopeFile annotates the top of the document.
	ScopeFile
	// ScopeAlways disables the rule in the persistent rule store.
	ScopeAlways
)

func (s Scope) String() string {
	switch s {
	case ScopeLine:
		return "line"
	case ScopeFile:
		return "file"
	case ScopeAlways:
		return "always"
	}
	return "unknown"
}

// ParseScope converts "line", "file" or "always" into a Scope.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "line":
		return ScopeLine, nil
	case "file":
		return ScopeFile, nil
	case "always":
		return ScopeAlways, nil
	}
	return 0, fmt.Errorf("invalid suppression scope %q (expected: line|file|always)", s)
}

// EditKind tells whether an edit inserts a new line or rewrites one in place.
type EditKind uint8

const (
	EditInsert EditKind = iota + 1
	EditReplace
)

func (k EditKind) String() string {
	if k == EditReplace {
		return "replace"
	}
	return "insert"
}

// Edit is a single-line document mutation. For EditInsert the text becomes
// line Line and existing lines shift down; for EditReplace line Line is
// rewritten.
type Edit struct {
	Kind EditKind
	Line int
	Text string
}

// Apply returns a copy of lines with the edit applied.
func (e Edit) Apply(lines []string) ([]string, error) {
	switch e.Kind {
	case EditInsert:
		if e.Line < 0 || e.Line > len(lines) {
			return nil, fmt.Errorf("%w: insert at %d of %d", ErrLineOutOfRange, e.Line, len(lines))
		}
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:e.Line]...)
		out = append(out, e.Text)
		return append(out, lines[e.Line:]...), nil
	case EditReplace:
		if e.Line < 0 || e.Line >= len(lines) {
			return nil, fmt.Errorf("%w: replace at %d of %d", ErrLineOutOfRange, e.Line, len(lines))
		}
		out := append([]string(nil), lines...)
		out[e.Line] = e.Text
		return out, nil
	}
	return nil, fmt.Errorf("unknown edit kind %d", e.Kind)
}

// Removal describes which live diagnostics disappear after the edit.
// All=false removes exactly Diagnostics; All=true removes every diagnostic
// sharing their rule id.
type Removal struct {
	Diagnostics []diag.Diagnostic
	All         bool
}

// Plan is the outcome of Compute.
type Plan struct {
	RuleID  string
	Scope   Scope
	Edit    *Edit // nil for ScopeAlways
	Removal Removal
}

// Compute derives the suppression edit for d without touching the document.
//
// The target line is the diagnostic start line for ScopeLine and 0 for
// ScopeFile. If the line before the target (line 0 itself when the target is
// 0) already holds a directive, the rule is merged into it and the line is
// replaced; otherwise a fresh directive is inserted before the target. The
// directive takes the target line's indentation.
func Compute(d diag.Diagnostic, scope Scope, lines []string) (Plan, error) {
	ruleID, err := d.RuleID()
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{
		RuleID:  ruleID,
		Scope:   scope,
		Removal: Removal{Diagnostics: []diag.Diagnostic{d}, All: scope != ScopeLine},
	}

	var target int
	switch scope {
	case ScopeLine:
		target = d.StartLine()
	case ScopeFile:
		target = 0
	case ScopeAlways:
		return plan, nil
	default:
		return Plan{}, fmt.Errorf("unknown suppression scope %d", scope)
	}
	if target < 0 || target > len(lines) {
		return Plan{}, fmt.Errorf("%w: line %d of %d", ErrLineOutOfRange, target, len(lines))
	}

	indent := ""
	if target < len(lines) {
		indent = leadingWhitespace(lines[target])
	}

	prev := target - 1
	if target == 0 {
		prev = 0
	}
	if prev < len(lines) {
		if existing, ok := ParseDirective(lines[prev]); ok {
			existing.Indent = indent
			existing.Add(ruleID)
			plan.Edit = &Edit{Kind: EditReplace, Line: prev, Text: existing.String()}
			return plan, nil
		}
	}

	fresh := NewDirective(indent, ruleID)
	plan.Edit = &Edit{Kind: EditInsert, Line: target, Text: fresh.String()}
	return plan, nil
}
