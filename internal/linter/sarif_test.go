package linter

import (
	"reflect"
	"testing"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"lintfix/internal/diag"
)

const sampleText = "import a.B \nimport a.B\nclass X {  \n}\n"

const sampleSARIF = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "mylinter", "rules": [{"id": "NoFixRule"}]}},
    "results": [
      {
        "ruleId": "TrailingWhitespace",
        "level": "note",
        "message": {"text": "Line ends with whitespace"},
        "locations": [{"physicalLocation": {"region": {"startLine": 1, "startColumn": 11, "endColumn": 12}}}],
        "fixes": [{
          "description": {"text": "Remove trailing whitespace"},
          "artifactChanges": [{
            "artifactLocation": {"uri": "demo.groovy"},
            "replacements": [{"deletedRegion": {"startLine": 1, "startColumn": 11, "endColumn": 12}}]
          }]
        }]
      },
      {
        "ruleId": "DuplicateImport",
        "level": "warning",
        "message": {"text": "Duplicate import a.B"},
        "locations": [{"physicalLocation": {"region": {"startLine": 2}}}],
        "fixes": [{
          "description": {"text": "Remove duplicate import"},
          "artifactChanges": [{
            "artifactLocation": {"uri": "demo.groovy"},
            "replacements": [{"deletedRegion": {"startLine": 2, "startColumn": 1, "endLine": 3, "endColumn": 1}}]
          }]
        }]
      },
      {
        "ruleId": "TrailingWhitespace",
        "level": "note",
        "message": {"text": "Line ends with whitespace"},
        "locations": [{"physicalLocation": {"region": {"startLine": 3, "startColumn": 10, "endColumn": 12}}}],
        "fixes": [{
          "description": {"text": "Remove trailing whitespace"},
          "artifactChanges": [{
            "artifactLocation": {"uri": "demo.groovy"},
            "replacements": [{"deletedRegion": {"startLine": 3, "startColumn": 10, "endColumn": 12}}]
          }]
        }]
      },
      {
        "ruleIndex": 0,
        "level": "error",
        "message": {"text": "Bad"},
        "locations": [{"physicalLocation": {"region": {"startLine": 4, "startColumn": 1, "endColumn": 2}}}]
      }
    ]
  }]
}`

func TestParseSARIF(t *testing.T) {
	report, err := ParseSARIF([]byte(sampleSARIF), sampleText, "mylinter", nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantCodes := []diag.Code{"TrailingWhitespace-0", "DuplicateImport-1", "TrailingWhitespace-2", "NoFixRule-3"}
	wantSev := []diag.Severity{diag.SevInformation, diag.SevWarning, diag.SevInformation, diag.SevError}
	if len(report.Diagnostics) != len(wantCodes) {
		t.Fatalf("expected %d diagnostics, got %d", len(wantCodes), len(report.Diagnostics))
	}
	for i, d := range report.Diagnostics {
		if d.Code != wantCodes[i] || d.Severity != wantSev[i] || d.Source != "mylinter" {
			t.Fatalf("diagnostic %d: %+v", i, d)
		}
	}

	wantRange := diag.Range{Start: diag.Position{Line: 1}, End: diag.Position{Line: 1, Character: 10}}
	if got := report.Diagnostics[1].Range; got != wantRange {
		t.Fatalf("whole-line range: got %+v", got)
	}
	if got := report.Diagnostics[3].Message; got != "Bad" {
		t.Fatalf("unexpected message %q", got)
	}

	wantCatalog := diag.Catalog{
		"TrailingWhitespace": {{Label: "Remove trailing whitespace"}},
		"DuplicateImport":    {{Label: "Remove duplicate import"}},
	}
	if !reflect.DeepEqual(report.Catalog, wantCatalog) {
		t.Fatalf("unexpected catalog %+v", report.Catalog)
	}

	cand, ok := report.Candidate(1)
	if !ok || len(cand.Edits) != 1 || cand.Edits[0].Start != 12 || cand.Edits[0].End != 23 {
		t.Fatalf("unexpected candidate %+v", cand)
	}
	if cand, ok := report.Candidate(3); !ok || len(cand.Edits) != 0 {
		t.Fatalf("rule without fixes should have an empty candidate, got %+v", cand)
	}
	if _, ok := report.Candidate(4); ok {
		t.Fatal("candidate past the report must not exist")
	}
}

func TestParseSARIFDisabledKeepsOccurrenceIDs(t *testing.T) {
	disabled := func(rule string) bool { return rule == "DuplicateImport" }
	report, err := ParseSARIF([]byte(sampleSARIF), sampleText, "mylinter", disabled)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var codes []diag.Code
	for _, d := range report.Diagnostics {
		codes = append(codes, d.Code)
	}
	want := []diag.Code{"TrailingWhitespace-0", "TrailingWhitespace-2", "NoFixRule-3"}
	if !reflect.DeepEqual(codes, want) {
		t.Fatalf("unexpected codes %v", codes)
	}
	if len(report.Candidates) != 4 {
		t.Fatalf("candidates must keep every slot, got %d", len(report.Candidates))
	}
}

func TestParseSARIFErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"no rule", `{"version":"2.1.0","runs":[{"tool":{"driver":{"name":"x"}},"results":[{"message":{"text":"m"}}]}]}`},
		{"bad level", `{"version":"2.1.0","runs":[{"tool":{"driver":{"name":"x"}},"results":[{"ruleId":"R","level":"fatal","message":{"text":"m"}}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSARIF([]byte(tt.data), sampleText, "x", nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRegionOffsetsPrefersByteOffset(t *testing.T) {
	start, end, err := regionOffsets(regionFixture(4, 3, 1), sampleText)
	if err != nil {
		t.Fatalf("offsets: %v", err)
	}
	if start != 4 || end != 7 {
		t.Fatalf("got [%d,%d)", start, end)
	}
}

func regionFixture(offset, length, line int) sarif.Region {
	return sarif.Region{ByteOffset: &offset, ByteLength: &length, StartLine: &line}
}
