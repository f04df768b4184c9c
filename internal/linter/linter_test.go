package linter

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"

	"lintfix/internal/fix"
)

type fakeExec struct {
	out   string
	err   error
	calls int
	argv  []string
	stdin string
}

func (f *fakeExec) Execute(_ context.Context, argv []string, stdin []byte) ([]byte, error) {
	f.calls++
	f.argv = argv
	f.stdin = string(stdin)
	return []byte(f.out), f.err
}

const demoURI = "file:///tmp/demo.groovy"

func newTestLinter(t *testing.T, ex *fakeExec, disabled func(string) bool) *Linter {
	t.Helper()
	cache, err := NewCache(16, "")
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return New(Options{
		Command:  []string{"mylinter", "--format", "sarif", "--file={path}"},
		Source:   "mylinter",
		Disabled: disabled,
		Cache:    cache,
	}, ex)
}

func TestLintPassesPathAndText(t *testing.T) {
	ex := &fakeExec{out: sampleSARIF}
	l := newTestLinter(t, ex, nil)

	diags, catalog, err := l.Diagnostics(context.Background(), demoURI, sampleText)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(diags) != 4 || len(catalog) != 2 {
		t.Fatalf("unexpected result: %d diagnostics, %d catalog entries", len(diags), len(catalog))
	}
	want := []string{"mylinter", "--format", "sarif", "--file=/tmp/demo.groovy"}
	if !reflect.DeepEqual(ex.argv, want) {
		t.Fatalf("unexpected argv %v", ex.argv)
	}
	if ex.stdin != sampleText {
		t.Fatalf("unexpected stdin %q", ex.stdin)
	}
}

func TestLintUsesCache(t *testing.T) {
	ex := &fakeExec{out: sampleSARIF}
	l := newTestLinter(t, ex, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.Lint(ctx, demoURI, sampleText); err != nil {
			t.Fatalf("lint: %v", err)
		}
	}
	if ex.calls != 1 {
		t.Fatalf("expected one linter run, got %d", ex.calls)
	}
	if _, err := l.Lint(ctx, demoURI, sampleText+"\n"); err != nil {
		t.Fatalf("lint: %v", err)
	}
	if ex.calls != 2 {
		t.Fatalf("changed text must miss the cache, got %d runs", ex.calls)
	}
}

func TestLintErrors(t *testing.T) {
	boom := errors.New("boom")
	l := newTestLinter(t, &fakeExec{err: boom}, nil)
	if _, err := l.Lint(context.Background(), demoURI, sampleText); !errors.Is(err, boom) {
		t.Fatalf("expected executor error, got %v", err)
	}

	empty := New(Options{}, &fakeExec{})
	if _, err := empty.Lint(context.Background(), demoURI, sampleText); !errors.Is(err, ErrNoCommand) {
		t.Fatalf("expected ErrNoCommand, got %v", err)
	}
}

func TestFixErrors(t *testing.T) {
	tests := []struct {
		name   string
		ids    []int
		status int
		source string
	}{
		{"single", []int{1}, fix.StatusSuccess, "import a.B \nclass X {  \n}\n"},
		{"two", []int{0, 2}, fix.StatusSuccess, "import a.B\nimport a.B\nclass X {\n}\n"},
		{"no edits", []int{3}, StatusNoFix, sampleText},
		{"unknown id", []int{1, 9}, StatusNoFix, sampleText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLinter(t, &fakeExec{out: sampleSARIF}, nil)
			res, err := l.FixErrors(context.Background(), demoURI, sampleText, tt.ids)
			if err != nil {
				t.Fatalf("fix: %v", err)
			}
			if res.Status != tt.status || res.Source != tt.source {
				t.Fatalf("got status %d source %q", res.Status, res.Source)
			}
		})
	}
}

func TestLintWithOptions(t *testing.T) {
	ctx := context.Background()
	l := newTestLinter(t, &fakeExec{out: sampleSARIF}, nil)

	res, err := l.LintWithOptions(ctx, demoURI, sampleText, fix.LintOptions{Fix: true, FixRuleID: "TrailingWhitespace"})
	if err != nil {
		t.Fatalf("lint with fix: %v", err)
	}
	if !res.OK() || res.Source != "import a.B\nimport a.B\nclass X {\n}\n" {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = l.LintWithOptions(ctx, demoURI, sampleText, fix.LintOptions{})
	if err != nil || !res.OK() || res.Source != sampleText {
		t.Fatalf("lint without fix must echo the text: %+v %v", res, err)
	}

	res, err = l.LintWithOptions(ctx, demoURI, sampleText, fix.LintOptions{Fix: true, FixRuleID: "NoFixRule"})
	if err != nil || res.Status != StatusNoFix {
		t.Fatalf("expected StatusNoFix, got %+v %v", res, err)
	}
}

func TestLintWithOptionsSkipsDisabledRules(t *testing.T) {
	disabled := func(rule string) bool { return rule == "DuplicateImport" }
	l := newTestLinter(t, &fakeExec{out: sampleSARIF}, disabled)
	res, err := l.LintWithOptions(context.Background(), demoURI, sampleText, fix.LintOptions{Fix: true})
	if err != nil {
		t.Fatalf("lint with fix: %v", err)
	}
	if res.Source != "import a.B\nimport a.B\nclass X {\n}\n" {
		t.Fatalf("disabled rule was fixed: %q", res.Source)
	}
}

func TestExecExecutor(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx := context.Background()
	var ex ExecExecutor

	out, err := ex.Execute(ctx, []string{"sh", "-c", "cat"}, []byte("payload"))
	if err != nil || string(out) != "payload" {
		t.Fatalf("cat: %q %v", out, err)
	}
	out, err = ex.Execute(ctx, []string{"sh", "-c", "echo findings; exit 3"}, nil)
	if err != nil || string(out) != "findings\n" {
		t.Fatalf("non-zero exit with output: %q %v", out, err)
	}
	if _, err := ex.Execute(ctx, []string{"sh", "-c", "echo broken >&2; exit 2"}, nil); err == nil {
		t.Fatal("expected error for failing command without output")
	}
}
