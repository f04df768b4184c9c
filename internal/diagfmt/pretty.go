package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lintfix/internal/diag"
)

var severityColors = map[diag.Severity]*color.Color{
	diag.SevError:       color.New(color.FgRed, color.Bold),
	diag.SevWarning:     color.New(color.FgYellow, color.Bold),
	diag.SevInformation: color.New(color.FgBlue),
	diag.SevHint:        color.New(color.Faint),
}

// Pretty форматирует диагностики в человекочитаемый вид:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем, если включён Context, строку исходника и подчёркивание ^~~~.
// Diagnostics are expected to be sorted.
func Pretty(w io.Writer, file File, opts PrettyOpts) error {
	path := displayPath(file.Path, opts.PathMode, opts.BaseDir)
	lines := strings.Split(file.Text, "\n")
	for _, d := range file.Diagnostics {
		sev := d.Severity.String()
		if opts.Color {
			if c, ok := severityColors[d.Severity]; ok {
				sev = c.Sprint(sev)
			}
		}
		start := d.Range.Start
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			path, start.Line+1, start.Character+1, sev, d.Code, d.Message); err != nil {
			return err
		}
		if !opts.Context || start.Line >= len(lines) {
			continue
		}
		line := strings.TrimRight(lines[start.Line], "\r")
		if _, err := fmt.Fprintf(w, "  %s\n  %s\n", line, underline(line, d.Range)); err != nil {
			return err
		}
	}
	return nil
}

// underline builds the ^~~~ marker for rng on line. Columns are measured in
// display cells; a multi-line range is underlined to the end of the line.
func underline(line string, rng diag.Range) string {
	runes := []rune(line)
	from := utf16Index(runes, rng.Start.Character)
	to := len(runes)
	if rng.End.Line == rng.Start.Line {
		to = utf16Index(runes, rng.End.Character)
	}
	pad := runewidth.StringWidth(string(runes[:from]))
	width := runewidth.StringWidth(string(runes[from:max(from, to)]))
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", pad) + "^" + strings.Repeat("~", width-1)
}

// utf16Index converts a UTF-16 column into a rune index, clamped to runes.
func utf16Index(runes []rune, col int) int {
	units := 0
	for i, r := range runes {
		if units >= col {
			return i
		}
		units++
		if r >= 0x10000 {
			units++
		}
	}
	return len(runes)
}
