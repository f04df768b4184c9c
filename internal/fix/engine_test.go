package fix

import (
	"errors"
	"reflect"
	"testing"
)

func TestApplyEditsDescendingOrder(t *testing.T) {
	text := "import a\nimport b\nclass X {}\n"
	res, err := ApplyEdits(text, []Candidate{
		{Occurrence: 0, Edits: []TextEdit{{Start: 0, End: 9, OldText: "import a\n"}}},
		{Occurrence: 1, Edits: []TextEdit{{Start: 16, End: 17, NewText: "B"}}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Text != "import B\nclass X {}\n" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if !reflect.DeepEqual(res.Applied, []int{0, 1}) {
		t.Fatalf("unexpected applied %v", res.Applied)
	}
}

func TestApplyEditsSkipsConflictsAndGuards(t *testing.T) {
	text := "abcdef"
	res, err := ApplyEdits(text, []Candidate{
		{Occurrence: 1, Edits: []TextEdit{{Start: 1, End: 3, NewText: "XY"}}},
		{Occurrence: 2, Edits: []TextEdit{{Start: 2, End: 4, NewText: "ZZ"}}},
		{Occurrence: 3, Edits: []TextEdit{{Start: 4, End: 5, NewText: "Q", OldText: "x"}}},
		{Occurrence: 4, Edits: []TextEdit{{Start: 5, End: 9}}},
		{Occurrence: 5},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Text != "aXYdef" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	want := []SkippedFix{
		{Occurrence: 2, Reason: "conflicts with previously applied edits"},
		{Occurrence: 3, Reason: "existing text does not match expected content"},
		{Occurrence: 4, Reason: "edit span out of range"},
		{Occurrence: 5, Reason: "fix has no edits"},
	}
	if !reflect.DeepEqual(res.Skipped, want) {
		t.Fatalf("unexpected skips %+v", res.Skipped)
	}
}

func TestApplyEditsNothingApplied(t *testing.T) {
	res, err := ApplyEdits("abc", nil)
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if res.Text != "abc" {
		t.Fatalf("text must be untouched, got %q", res.Text)
	}
}

func TestSpansConflict(t *testing.T) {
	tests := []struct {
		a, b TextEdit
		want bool
	}{
		{TextEdit{Start: 1, End: 1}, TextEdit{Start: 1, End: 1}, false},
		{TextEdit{Start: 2, End: 2}, TextEdit{Start: 1, End: 3}, true},
		{TextEdit{Start: 3, End: 3}, TextEdit{Start: 1, End: 3}, false},
		{TextEdit{Start: 0, End: 2}, TextEdit{Start: 2, End: 4}, false},
		{TextEdit{Start: 0, End: 3}, TextEdit{Start: 2, End: 4}, true},
	}
	for i, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Fatalf("case %d: got %v, want %v", i, got, tt.want)
		}
	}
}

func TestOffsetAt(t *testing.T) {
	text := "ab\ncdef\ng"
	cases := []struct{ line, col, want int }{
		{0, 0, 0},
		{0, 5, 2},
		{1, 2, 5},
		{2, 1, 9},
	}
	for _, c := range cases {
		got, err := OffsetAt(text, c.line, c.col)
		if err != nil {
			t.Fatalf("%d:%d: %v", c.line, c.col, err)
		}
		if got != c.want {
			t.Fatalf("%d:%d: got %d, want %d", c.line, c.col, got, c.want)
		}
	}
	if _, err := OffsetAt(text, 5, 0); err == nil {
		t.Fatal("expected error past end")
	}
}
