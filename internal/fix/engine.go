package fix

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoFixes is returned when no edits could be applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// TextEdit replaces the byte range [Start, End) of a document with NewText.
// OldText, when set, must match the replaced range.
type TextEdit struct {
	Start   int
	End     int
	NewText string
	OldText string
}

// Candidate is the set of edits that remediates one diagnostic occurrence.
type Candidate struct {
	Occurrence int
	RuleID     string
	Edits      []TextEdit
}

// SkippedFix captures a skipped candidate with a reason.
type SkippedFix struct {
	Occurrence int
	Reason     string
}

// EditResult is the outcome of ApplyEdits.
type EditResult struct {
	Text    string
	Applied []int
	Skipped []SkippedFix
}

// ApplyEdits applies candidates to text in the given order. A candidate is
// skipped as a whole when one of its edits is out of range, fails its guard,
// or overlaps an edit of a previously accepted candidate. Returns ErrNoFixes
// when nothing was applied.
func ApplyEdits(text string, candidates []Candidate) (EditResult, error) {
	result := EditResult{Text: text}
	accepted := make([]TextEdit, 0)

	for _, cand := range candidates {
		if len(cand.Edits) == 0 {
			result.Skipped = append(result.Skipped, SkippedFix{Occurrence: cand.Occurrence, Reason: "fix has no edits"})
			continue
		}
		reason := ""
		for i, edit := range cand.Edits {
			if edit.Start < 0 || edit.End < edit.Start || edit.End > len(text) {
				reason = "edit span out of range"
				break
			}
			if edit.OldText != "" && text[edit.Start:edit.End] != edit.OldText {
				reason = "existing text does not match expected content"
				break
			}
			if conflictsWithExisting(accepted, cand.Edits[i:i+1]) || conflictsWithExisting(cand.Edits[:i], cand.Edits[i:i+1]) {
				reason = "conflicts with previously applied edits"
				break
			}
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{Occurrence: cand.Occurrence, Reason: reason})
			continue
		}
		accepted = append(accepted, cand.Edits...)
		result.Applied = append(result.Applied, cand.Occurrence)
	}

	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	// с конца к началу, чтобы смещения оставались валидными
	sort.SliceStable(accepted, func(i, j int) bool {
		if accepted[i].Start == accepted[j].Start {
			return accepted[i].End > accepted[j].End
		}
		return accepted[i].Start > accepted[j].Start
	})
	working := []byte(text)
	for _, edit := range accepted {
		suffix := append([]byte(nil), working[edit.End:]...)
		working = append(append(working[:edit.Start], edit.NewText...), suffix...)
	}
	result.Text = string(working)
	return result, nil
}

// OffsetAt converts a zero-based line and byte column into an offset in text.
// Columns past the line end clamp to the line end.
func OffsetAt(text string, line, column int) (int, error) {
	if line < 0 || column < 0 {
		return 0, fmt.Errorf("negative position %d:%d", line, column)
	}
	offset := 0
	for l := 0; l < line; l++ {
		idx := indexNewline(text[offset:])
		if idx < 0 {
			return 0, fmt.Errorf("line %d past end of text", line)
		}
		offset += idx + 1
	}
	lineEnd := indexNewline(text[offset:])
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}
	if column > lineEnd {
		column = lineEnd
	}
	return offset + column, nil
}

func indexNewline(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}

func conflictsWithExisting(existing []TextEdit, edits []TextEdit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

// spansConflict reports whether two text edits' spans overlap.
// Spans are treated as half-open intervals [Start, End). Two zero-length edits
// (Start == End) never conflict. A zero-length edit conflicts with a non-zero
// span if its position is within that span (Start <= pos < End). For two
// non-zero spans, any overlap yields a conflict.
func spansConflict(a, b TextEdit) bool {
	if a.Start == a.End && b.Start == b.End {
		return false
	}
	if a.Start == a.End {
		return b.Start <= a.Start && a.Start < b.End
	}
	if b.Start == b.End {
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}
