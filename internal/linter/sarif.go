package linter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"fortio.org/safecast"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"lintfix/internal/diag"
	"lintfix/internal/fix"
)

// ErrNoRuleID is returned for a SARIF result carrying neither ruleId nor a
// resolvable ruleIndex.
var ErrNoRuleID = errors.New("sarif result without rule id")

// Report is one lint run decoded into diagnostics.
type Report struct {
	// Diagnostics in report order, minus disabled rules.
	Diagnostics []diag.Diagnostic
	Catalog     diag.Catalog
	// Candidates holds the replacement edits of every occurrence, indexed by
	// occurrence id. Disabled rules keep their slot.
	Candidates []fix.Candidate
}

// Candidate returns the fix candidate for an occurrence id.
func (r *Report) Candidate(id int) (fix.Candidate, bool) {
	if r == nil || id < 0 || id >= len(r.Candidates) {
		return fix.Candidate{}, false
	}
	return r.Candidates[id], true
}

// ParseSARIF decodes SARIF output produced for text. Occurrence ids are
// assigned in report order across all runs. Regions use 1-based lines and
// byte columns.
func ParseSARIF(data []byte, text, source string, disabled func(string) bool) (*Report, error) {
	doc, err := sarif.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode sarif: %w", err)
	}
	report := &Report{Catalog: diag.Catalog{}}
	lines := strings.Split(text, "\n")

	for _, run := range doc.Runs {
		if run == nil {
			continue
		}
		for _, res := range run.Results {
			if res == nil {
				continue
			}
			id := len(report.Candidates)
			ruleID, err := resultRuleID(run, res)
			if err != nil {
				return nil, fmt.Errorf("result %d: %w", id, err)
			}
			cand := fix.Candidate{Occurrence: id, RuleID: ruleID}
			for _, f := range res.Fixes {
				if f == nil {
					continue
				}
				if f.Description != nil && f.Description.Text != nil && *f.Description.Text != "" {
					report.Catalog.Add(ruleID, diag.FixSuggestion{Label: *f.Description.Text})
				}
				edits, err := fixEdits(f, text)
				if err != nil {
					return nil, fmt.Errorf("result %d: %w", id, err)
				}
				cand.Edits = append(cand.Edits, edits...)
			}
			report.Candidates = append(report.Candidates, cand)

			if disabled != nil && disabled(ruleID) {
				continue
			}
			sev, err := diag.ParseSeverity(deref(res.Level))
			if err != nil {
				return nil, fmt.Errorf("result %d: %w", id, err)
			}
			report.Diagnostics = append(report.Diagnostics, diag.Diagnostic{
				Range:    resultRange(res, lines),
				Severity: sev,
				Code:     diag.MakeCode(ruleID, id),
				Source:   source,
				Message:  deref(res.Message.Text),
			})
		}
	}
	return report, nil
}

func resultRuleID(run *sarif.Run, res *sarif.Result) (string, error) {
	if res.RuleID != nil && *res.RuleID != "" {
		return *res.RuleID, nil
	}
	if res.RuleIndex != nil && run.Tool.Driver != nil {
		idx, err := safecast.Conv[int](*res.RuleIndex)
		if err != nil {
			return "", err
		}
		rules := run.Tool.Driver.Rules
		if idx < len(rules) && rules[idx] != nil && rules[idx].ID != "" {
			return rules[idx].ID, nil
		}
	}
	return "", ErrNoRuleID
}

// resultRange converts the first physical location into a zero-based range.
// A missing location pins the diagnostic to the first line.
func resultRange(res *sarif.Result, lines []string) diag.Range {
	var region *sarif.Region
	for _, loc := range res.Locations {
		if loc != nil && loc.PhysicalLocation != nil && loc.PhysicalLocation.Region != nil {
			region = loc.PhysicalLocation.Region
			break
		}
	}
	if region == nil {
		return diag.Range{}
	}
	startLine := oneBased(region.StartLine, 1) - 1
	startCol := oneBased(region.StartColumn, 1) - 1
	endLine := oneBased(region.EndLine, startLine+1) - 1
	endCol := lineLen(lines, endLine)
	if region.EndColumn != nil {
		endCol = oneBased(region.EndColumn, 1) - 1
	}
	if endLine < startLine || (endLine == startLine && endCol < startCol) {
		endLine, endCol = startLine, startCol
	}
	return diag.Range{
		Start: diag.Position{Line: startLine, Character: startCol},
		End:   diag.Position{Line: endLine, Character: endCol},
	}
}

func fixEdits(f *sarif.Fix, text string) ([]fix.TextEdit, error) {
	var edits []fix.TextEdit
	for _, change := range f.ArtifactChanges {
		if change == nil {
			continue
		}
		for _, rep := range change.Replacements {
			if rep == nil {
				continue
			}
			start, end, err := regionOffsets(rep.DeletedRegion, text)
			if err != nil {
				return nil, err
			}
			edit := fix.TextEdit{Start: start, End: end}
			if rep.InsertedContent != nil {
				edit.NewText = deref(rep.InsertedContent.Text)
			}
			edits = append(edits, edit)
		}
	}
	return edits, nil
}

// regionOffsets resolves a deleted region to byte offsets. byteOffset wins
// over charOffset, which wins over line/column. An absent endColumn extends
// to the end of the line.
func regionOffsets(r sarif.Region, text string) (int, int, error) {
	switch {
	case r.ByteOffset != nil:
		return offsetSpan(*r.ByteOffset, r.ByteLength)
	case r.CharOffset != nil:
		return offsetSpan(*r.CharOffset, r.CharLength)
	case r.StartLine != nil:
		startLine := oneBased(r.StartLine, 1) - 1
		start, err := fix.OffsetAt(text, startLine, oneBased(r.StartColumn, 1)-1)
		if err != nil {
			return 0, 0, err
		}
		endLine := oneBased(r.EndLine, startLine+1) - 1
		endCol := math.MaxInt32
		if r.EndColumn != nil {
			endCol = oneBased(r.EndColumn, 1) - 1
		}
		end, err := fix.OffsetAt(text, endLine, endCol)
		if err != nil {
			return 0, 0, err
		}
		return start, end, nil
	}
	return 0, 0, fmt.Errorf("replacement region has no position")
}

func offsetSpan(offset int, length *int) (int, int, error) {
	n := 0
	if length != nil {
		n = *length
	}
	if offset < 0 || n < 0 {
		return 0, 0, fmt.Errorf("negative region %d+%d", offset, n)
	}
	end, err := safecast.Conv[int](int64(offset) + int64(n))
	if err != nil {
		return 0, 0, err
	}
	return offset, end, nil
}

func oneBased(v *int, def int) int {
	if v == nil || *v < 1 {
		return def
	}
	return *v
}

func lineLen(lines []string, line int) int {
	if line < 0 || line >= len(lines) {
		return 0
	}
	return len(strings.TrimSuffix(lines[line], "\r"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
