// Package linter runs an external SARIF-emitting linter and exposes it as the
// fixer collaborator of the fix orchestrator.
package linter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"lintfix/internal/diag"
	"lintfix/internal/docuri"
	"lintfix/internal/fix"
	"lintfix/internal/trace"
)

// StatusNoFix is reported when a fix request names unknown occurrences or no
// edit could be applied.
const StatusNoFix = 1

// ErrNoCommand is returned when no lint command is configured.
var ErrNoCommand = errors.New("no lint command configured")

// PathPlaceholder in the command line is replaced with the document path.
const PathPlaceholder = "{path}"

// Executor runs a command with stdin and returns its stdout.
type Executor interface {
	Execute(ctx context.Context, argv []string, stdin []byte) ([]byte, error)
}

// ExecExecutor runs commands through os/exec. Linters usually exit non-zero
// when they report findings, so a failing exit with output is not an error.
type ExecExecutor struct{}

func (ExecExecutor) Execute(ctx context.Context, argv []string, stdin []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stdout.Len() > 0 {
			return stdout.Bytes(), nil
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}
	return stdout.Bytes(), nil
}

// Options configures a Linter.
type Options struct {
	Command []string
	Source  string
	// Disabled reports rules whose diagnostics are dropped.
	Disabled func(ruleID string) bool
	Cache    *Cache
}

// Linter lints documents and applies the replacements its reports carry.
type Linter struct {
	opts Options
	exec Executor
}

// New creates a Linter. A nil exec uses ExecExecutor.
func New(opts Options, exec Executor) *Linter {
	if exec == nil {
		exec = ExecExecutor{}
	}
	return &Linter{opts: opts, exec: exec}
}

// Lint runs the linter over text and decodes its report.
func (l *Linter) Lint(ctx context.Context, uri, text string) (*Report, error) {
	ctx, span := trace.Start(ctx, trace.ScopeStep, "lint.run")
	defer span.End("")

	if len(l.opts.Command) == 0 {
		return nil, ErrNoCommand
	}
	argv := l.argv(uri)
	key := KeyFor(argv, text)
	out, hit, err := l.opts.Cache.Get(key)
	if err != nil {
		// битый кэш не должен ломать линт
		trace.Failure(trace.FromContext(ctx), trace.ScopeDetail, "lint.cache", err, span.ID())
		hit = false
	}
	span.WithExtra("cache", fmt.Sprintf("%t", hit))
	if !hit {
		out, err = l.exec.Execute(ctx, argv, []byte(text))
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", uri, err)
		}
		if err := l.opts.Cache.Put(key, out); err != nil {
			trace.Failure(trace.FromContext(ctx), trace.ScopeDetail, "lint.cache", err, span.ID())
		}
	}
	report, err := ParseSARIF(out, text, l.opts.Source, l.opts.Disabled)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", uri, err)
	}
	span.WithExtra("diagnostics", fmt.Sprintf("%d", len(report.Diagnostics)))
	return report, nil
}

// FixErrors applies the replacements of the given occurrences. Unknown ids
// or nothing applicable yield StatusNoFix.
func (l *Linter) FixErrors(ctx context.Context, uri, text string, occurrences []int) (*fix.Result, error) {
	report, err := l.Lint(ctx, uri, text)
	if err != nil {
		return nil, err
	}
	cands := make([]fix.Candidate, 0, len(occurrences))
	for _, id := range occurrences {
		cand, ok := report.Candidate(id)
		if !ok {
			return &fix.Result{Status: StatusNoFix, Source: text}, nil
		}
		cands = append(cands, cand)
	}
	return apply(text, cands)
}

// LintWithOptions lints text; with opts.Fix it applies every fix of
// opts.FixRuleID (all rules when empty) and returns the fixed source.
func (l *Linter) LintWithOptions(ctx context.Context, uri, text string, opts fix.LintOptions) (*fix.Result, error) {
	report, err := l.Lint(ctx, uri, text)
	if err != nil {
		return nil, err
	}
	if !opts.Fix {
		return &fix.Result{Status: fix.StatusSuccess, Source: text}, nil
	}
	var cands []fix.Candidate
	for _, cand := range report.Candidates {
		if opts.FixRuleID != "" && cand.RuleID != opts.FixRuleID {
			continue
		}
		if l.opts.Disabled != nil && l.opts.Disabled(cand.RuleID) {
			continue
		}
		cands = append(cands, cand)
	}
	return apply(text, cands)
}

// Diagnostics lints text and returns the diagnostics with the catalog.
func (l *Linter) Diagnostics(ctx context.Context, uri, text string) ([]diag.Diagnostic, diag.Catalog, error) {
	report, err := l.Lint(ctx, uri, text)
	if err != nil {
		return nil, nil, err
	}
	return report.Diagnostics, report.Catalog, nil
}

func (l *Linter) argv(uri string) []string {
	path := docuri.ToPath(uri)
	argv := slices.Clone(l.opts.Command)
	for i, arg := range argv {
		argv[i] = strings.ReplaceAll(arg, PathPlaceholder, path)
	}
	return argv
}

func apply(text string, cands []fix.Candidate) (*fix.Result, error) {
	res, err := fix.ApplyEdits(text, cands)
	if errors.Is(err, fix.ErrNoFixes) {
		return &fix.Result{Status: StatusNoFix, Source: text}, nil
	}
	if err != nil {
		return nil, err
	}
	return &fix.Result{Status: fix.StatusSuccess, Source: res.Text}, nil
}
