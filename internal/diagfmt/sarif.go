package diagfmt

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"lintfix/internal/diag"
)

// Sarif форматирует диагностики в SARIF (v2.1.0). Result ids are the rule
// ids; the occurrence part of each code is dropped since it is only valid
// for a single lint run.
func Sarif(w io.Writer, files []File, meta SarifRunMeta) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}
	run := sarif.NewRunWithInformationURI(meta.ToolName, meta.InformationURI)
	if meta.ToolVersion != "" {
		run.Tool.Driver.Version = &meta.ToolVersion
	}

	rules := make(map[string]struct{})
	for _, f := range files {
		for _, d := range f.Diagnostics {
			ruleID, err := d.RuleID()
			if err != nil {
				ruleID = d.Code.String()
			}
			if _, ok := rules[ruleID]; !ok {
				rules[ruleID] = struct{}{}
				rule := run.AddRule(ruleID)
				if fixes := f.Catalog.For(ruleID); len(fixes) > 0 {
					rule.WithDescription(fixes[0].Label)
				}
			}
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Path)).
					WithRegion(sarif.NewRegion().
						WithStartLine(d.Range.Start.Line + 1).
						WithStartColumn(d.Range.Start.Character + 1).
						WithEndLine(d.Range.End.Line + 1).
						WithEndColumn(d.Range.End.Character + 1)),
			)
			result := sarif.NewRuleResult(ruleID).
				WithMessage(sarif.NewTextMessage(d.Message)).
				WithLevel(sarifLevel(d.Severity)).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}
	report.AddRun(run)
	return report.PrettyWrite(w)
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	case diag.SevInformation:
		return "note"
	}
	return "none"
}
