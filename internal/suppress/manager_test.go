package suppress

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"lintfix/internal/diag"
)

type fakeEditor struct {
	lines    []string
	calls    []string
	edits    []Edit
	removed  []diag.Diagnostic
	all      bool
	editErr  error
	linesErr error
}

func (f *fakeEditor) Lines(context.Context, string) ([]string, error) {
	f.calls = append(f.calls, "lines")
	return f.lines, f.linesErr
}

func (f *fakeEditor) ApplyEdit(_ context.Context, _ string, edit Edit) error {
	f.calls = append(f.calls, "edit")
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, edit)
	return nil
}

func (f *fakeEditor) RemoveDiagnostics(_ context.Context, _ string, diagnostics []diag.Diagnostic, all bool) error {
	f.calls = append(f.calls, "remove")
	f.removed = diagnostics
	f.all = all
	return nil
}

type fakeStore struct {
	disabled []string
}

func (s *fakeStore) DisableRule(ruleID string) error {
	s.disabled = append(s.disabled, ruleID)
	return nil
}

func TestManagerEditsBeforeRemoving(t *testing.T) {
	ed := &fakeEditor{lines: sampleLines()}
	m := NewManager(ed, nil)
	d := diagAt("UnusedImport-7", 4)

	if _, err := m.Add(context.Background(), "file:///demo.groovy", d, ScopeLine); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !reflect.DeepEqual(ed.calls, []string{"lines", "edit", "remove"}) {
		t.Fatalf("unexpected call order: %v", ed.calls)
	}
	if ed.edits[0].Text != "    @SuppressWarnings(['UnusedImport'])" || ed.edits[0].Line != 4 {
		t.Fatalf("unexpected edit: %+v", ed.edits[0])
	}
	if ed.all || len(ed.removed) != 1 || ed.removed[0].Code != d.Code {
		t.Fatalf("unexpected removal: all=%v %+v", ed.all, ed.removed)
	}
}

func TestManagerFileScopeRemovesAll(t *testing.T) {
	ed := &fakeEditor{lines: sampleLines()}
	m := NewManager(ed, nil)
	if _, err := m.Add(context.Background(), "file:///demo.groovy", diagAt("UnusedImport-7", 4), ScopeFile); err != nil {
		t.Fatalf("add: %v", err)
	}
	if ed.edits[0].Line != 0 || !ed.all {
		t.Fatalf("unexpected edit/removal: %+v all=%v", ed.edits[0], ed.all)
	}
}

func TestManagerAlwaysWritesStore(t *testing.T) {
	ed := &fakeEditor{}
	store := &fakeStore{}
	m := NewManager(ed, store)
	if _, err := m.Add(context.Background(), "file:///demo.groovy", diagAt("UnusedImport-7", 4), ScopeAlways); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !reflect.DeepEqual(store.disabled, []string{"UnusedImport"}) {
		t.Fatalf("unexpected store writes: %v", store.disabled)
	}
	if !reflect.DeepEqual(ed.calls, []string{"remove"}) || !ed.all {
		t.Fatalf("unexpected editor calls: %v all=%v", ed.calls, ed.all)
	}
}

func TestManagerFailedEditKeepsDiagnostics(t *testing.T) {
	ed := &fakeEditor{lines: sampleLines(), editErr: errors.New("rejected")}
	m := NewManager(ed, nil)
	if _, err := m.Add(context.Background(), "file:///demo.groovy", diagAt("UnusedImport-7", 4), ScopeLine); err == nil {
		t.Fatal("expected error")
	}
	for _, call := range ed.calls {
		if call == "remove" {
			t.Fatal("diagnostics must not be removed when the edit failed")
		}
	}
}

func TestManagerMalformedCode(t *testing.T) {
	ed := &fakeEditor{lines: sampleLines()}
	m := NewManager(ed, nil)
	_, err := m.Add(context.Background(), "file:///demo.groovy", diagAt("UnusedImport", 4), ScopeLine)
	if !errors.Is(err, diag.ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode, got %v", err)
	}
}
