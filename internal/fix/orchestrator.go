package fix

import (
	"context"
	"fmt"
	"strconv"

	"lintfix/internal/diag"
	"lintfix/internal/trace"
)

// StatusSuccess is the fixer status that allows the document to change.
const StatusSuccess = 0

// Result is what the external fixer returns.
type Result struct {
	Status int
	Source string
}

// OK reports whether the fixer succeeded.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// LintOptions restricts a lint run; Fix with FixRuleID fixes one rule only.
type LintOptions struct {
	Fix       bool
	FixRuleID string
}

// Fixer is the external lint/fix collaborator.
type Fixer interface {
	FixErrors(ctx context.Context, uri, text string, occurrences []int) (*Result, error)
	LintWithOptions(ctx context.Context, uri, text string, opts LintOptions) (*Result, error)
}

// Documents is the document collaborator the orchestrator mutates through.
type Documents interface {
	Text(ctx context.Context, uri string) (string, error)
	ReplaceText(ctx context.Context, uri, text string) error
	RemoveDiagnostics(ctx context.Context, uri string, diagnostics []diag.Diagnostic, all bool) error
	RemoveDiagnosticsFrom(ctx context.Context, uri string, line int) error
	Revalidate(ctx context.Context, uri string) error
}

// Scope selects between fixing the given occurrences and fixing a rule across
// the whole document.
type Scope uint8

const (
	ScopeSingle Scope = iota + 1
	ScopeFile
)

func (s Scope) String() string {
	switch s {
	case ScopeSingle:
		return "single"
	case ScopeFile:
		return "file"
	}
	return "unknown"
}

// Config tunes the post-fix refresh.
type Config struct {
	// LintAgain re-validates the whole document after a fix. When false the
	// experimental incremental refresh runs instead: fixed diagnostics and
	// everything from the first fixed line down are dropped until the next
	// lint restores them.
	LintAgain bool
}

// DefaultConfig returns the full-revalidation configuration.
func DefaultConfig() Config {
	return Config{LintAgain: true}
}

// Outcome reports what Apply did.
type Outcome struct {
	Applied     bool
	Status      int
	Revalidated bool
	Occurrences []int
	RuleID      string
}

// Orchestrator runs the external fixer for a chosen action and refreshes the
// document afterwards.
type Orchestrator struct {
	fixer Fixer
	docs  Documents
	cfg   Config
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(fixer Fixer, docs Documents, cfg Config) *Orchestrator {
	return &Orchestrator{fixer: fixer, docs: docs, cfg: cfg}
}

// Apply fixes diagnostics in uri. ScopeSingle asks the fixer for exactly the
// occurrence ids of diagnostics; ScopeFile re-runs lint-with-fix for the rule
// of the first diagnostic. A non-success status leaves the document and the
// diagnostic set untouched and is not an error.
func (o *Orchestrator) Apply(ctx context.Context, uri string, diagnostics []diag.Diagnostic, scope Scope) (Outcome, error) {
	ctx, span := trace.Start(ctx, trace.ScopeCommand, "fix.apply")
	defer span.End("")
	span.WithExtra("scope", scope.String())

	var outcome Outcome
	if len(diagnostics) == 0 {
		return outcome, nil
	}
	text, err := o.docs.Text(ctx, uri)
	if err != nil {
		return outcome, fmt.Errorf("fix: read %s: %w", uri, err)
	}

	var res *Result
	switch scope {
	case ScopeSingle:
		ids, err := occurrences(diagnostics)
		if err != nil {
			return outcome, err
		}
		outcome.Occurrences = ids
		res, err = o.fixer.FixErrors(ctx, uri, text, ids)
		if err != nil {
			return outcome, fmt.Errorf("fix: fixer: %w", err)
		}
	case ScopeFile:
		ruleID, err := diagnostics[0].RuleID()
		if err != nil {
			return outcome, err
		}
		outcome.RuleID = ruleID
		res, err = o.fixer.LintWithOptions(ctx, uri, text, LintOptions{Fix: true, FixRuleID: ruleID})
		if err != nil {
			return outcome, fmt.Errorf("fix: lint with fix: %w", err)
		}
	default:
		return outcome, fmt.Errorf("fix: unknown scope %d", scope)
	}

	if !res.OK() {
		if res != nil {
			outcome.Status = res.Status
		}
		span.WithExtra("status", strconv.Itoa(outcome.Status))
		trace.Point(trace.FromContext(ctx), trace.ScopeStep, "fix.skipped", "fixer reported failure", span.ID())
		return outcome, nil
	}

	if err := o.docs.ReplaceText(ctx, uri, res.Source); err != nil {
		return outcome, fmt.Errorf("fix: replace document: %w", err)
	}
	outcome.Applied = true

	if o.cfg.LintAgain {
		if err := o.docs.Revalidate(ctx, uri); err != nil {
			return outcome, fmt.Errorf("fix: revalidate: %w", err)
		}
		outcome.Revalidated = true
		return outcome, nil
	}
	return outcome, o.refreshIncremental(ctx, uri, diagnostics, scope)
}

// refreshIncremental drops what the fix may have invalidated without
// repositioning anything.
func (o *Orchestrator) refreshIncremental(ctx context.Context, uri string, diagnostics []diag.Diagnostic, scope Scope) error {
	trace.Point(trace.FromContext(ctx), trace.ScopeStep, "fix.incremental", uri, trace.CurrentSpan(ctx))
	if err := o.docs.RemoveDiagnostics(ctx, uri, diagnostics, scope == ScopeFile); err != nil {
		return fmt.Errorf("fix: remove diagnostics: %w", err)
	}
	from := diagnostics[0].StartLine()
	for _, d := range diagnostics[1:] {
		if d.StartLine() < from {
			from = d.StartLine()
		}
	}
	if err := o.docs.RemoveDiagnosticsFrom(ctx, uri, from); err != nil {
		return fmt.Errorf("fix: remove diagnostics from line %d: %w", from, err)
	}
	return nil
}

func occurrences(diagnostics []diag.Diagnostic) ([]int, error) {
	ids := make([]int, 0, len(diagnostics))
	for _, d := range diagnostics {
		id, err := d.Code.Occurrence()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
