package diagfmt

import (
	"encoding/json"
	"io"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Source   string       `json:"source,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Fixes    []string     `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// BuildJSON converts files into the JSON output model. Lines and columns
// are 1-based.
func BuildJSON(files []File, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, f := range files {
		path := displayPath(f.Path, opts.PathMode, opts.BaseDir)
		for _, d := range f.Diagnostics {
			out.Count++
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				out.Truncated = true
				continue
			}
			item := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.String(),
				Source:   d.Source,
				Message:  d.Message,
				Location: LocationJSON{
					File:      path,
					StartLine: d.Range.Start.Line + 1,
					StartCol:  d.Range.Start.Character + 1,
					EndLine:   d.Range.End.Line + 1,
					EndCol:    d.Range.End.Character + 1,
				},
			}
			if opts.IncludeFixes {
				if rule, err := d.RuleID(); err == nil {
					for _, s := range f.Catalog.For(rule) {
						item.Fixes = append(item.Fixes, s.Label)
					}
				}
			}
			out.Diagnostics = append(out.Diagnostics, item)
		}
	}
	return out
}

// JSON writes files as indented JSON.
func JSON(w io.Writer, files []File, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSON(files, opts))
}
