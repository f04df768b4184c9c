package action

import (
	"lintfix/internal/diag"
)

// Synthesize maps diagnostics onto the actions a user may pick.
//
// Per diagnostic, in input order: an ApplyOne/ApplyInFile pair for every fix
// suggestion of its rule, then SuppressLine, SuppressFile and SuppressAlways
// unless the diagnostic is a hint. The result is deterministic for equal
// inputs. A malformed diagnostic code is returned as an error.
func Synthesize(uri string, diagnostics []diag.Diagnostic, catalog diag.Catalog) ([]Action, error) {
	if len(diagnostics) == 0 {
		return nil, nil
	}
	actions := make([]Action, 0, len(diagnostics)*5)
	for _, d := range diagnostics {
		ruleID, err := d.RuleID()
		if err != nil {
			return nil, err
		}
		target := Target{URI: uri, Diagnostic: d}
		for _, s := range catalog.For(ruleID) {
			actions = append(actions,
				ApplyOne{Target: target, Suggestion: s},
				ApplyInFile{Target: target, Suggestion: s},
			)
		}
		if !d.Severity.Suppressible() {
			continue
		}
		actions = append(actions,
			SuppressLine{Target: target, RuleID: ruleID},
			SuppressFile{Target: target, RuleID: ruleID},
			SuppressAlways{Target: target, RuleID: ruleID},
		)
	}
	return actions, nil
}
