package suppress

import (
	"context"
	"fmt"

	"lintfix/internal/diag"
	"lintfix/internal/trace"
)

// Editor is the document collaborator the manager mutates through.
// The line buffer is read-only here; all changes go through ApplyEdit.
type Editor interface {
	Lines(ctx context.Context, uri string) ([]string, error)
	ApplyEdit(ctx context.Context, uri string, edit Edit) error
	RemoveDiagnostics(ctx context.Context, uri string, diagnostics []diag.Diagnostic, all bool) error
}

// RuleStore persists rules disabled with ScopeAlways.
type RuleStore interface {
	DisableRule(ruleID string) error
}

// Manager adds suppression directives and retires the diagnostics they cover.
type Manager struct {
	editor Editor
	store  RuleStore
}

// NewManager creates a Manager. store may be nil when ScopeAlways is unused.
func NewManager(editor Editor, store RuleStore) *Manager {
	return &Manager{editor: editor, store: store}
}

// Add suppresses d at scope in document uri. The diagnostic removal is
// requested only after the edit (or the rule store write) succeeded.
func (m *Manager) Add(ctx context.Context, uri string, d diag.Diagnostic, scope Scope) (Plan, error) {
	ctx, span := trace.Start(ctx, trace.ScopeCommand, "suppress.add")
	defer span.End("")
	span.WithExtra("code", d.Code.String()).WithExtra("scope", scope.String())

	var lines []string
	if scope != ScopeAlways {
		var err error
		lines, err = m.editor.Lines(ctx, uri)
		if err != nil {
			return Plan{}, fmt.Errorf("suppress: read %s: %w", uri, err)
		}
	}

	plan, err := Compute(d, scope, lines)
	if err != nil {
		trace.Failure(trace.FromContext(ctx), trace.ScopeStep, "suppress.compute", err, span.ID())
		return Plan{}, err
	}

	if plan.Edit != nil {
		trace.Point(trace.FromContext(ctx), trace.ScopeStep, "suppress.edit",
			fmt.Sprintf("%s line %d", plan.Edit.Kind, plan.Edit.Line), span.ID())
		if err := m.editor.ApplyEdit(ctx, uri, *plan.Edit); err != nil {
			return Plan{}, fmt.Errorf("suppress: apply edit: %w", err)
		}
	} else {
		if m.store == nil {
			return Plan{}, fmt.Errorf("suppress: no rule store for %s scope", scope)
		}
		if err := m.store.DisableRule(plan.RuleID); err != nil {
			return Plan{}, fmt.Errorf("suppress: disable %s: %w", plan.RuleID, err)
		}
	}

	if err := m.editor.RemoveDiagnostics(ctx, uri, plan.Removal.Diagnostics, plan.Removal.All); err != nil {
		return plan, fmt.Errorf("suppress: remove diagnostics: %w", err)
	}
	return plan, nil
}
