package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"lintfix/internal/action"
	"lintfix/internal/diag"
)

var actionsCmd = &cobra.Command{
	Use:   "actions [flags] <file>",
	Short: "List the code actions available for a file's diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runActions,
}

func init() {
	actionsCmd.Flags().Int("line", 0, "only list actions for diagnostics starting on this 1-based line")
	actionsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type actionRow struct {
	Position string `json:"position"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Command  string `json:"command"`
}

func runActions(cmd *cobra.Command, args []string) error {
	line, err := cmd.Flags().GetInt("line")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	_, cleanup, err := setupTracing(cmd, "")
	if err != nil {
		return err
	}
	defer cleanup()

	doc, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	diagnostics := doc.ws.Diagnostics(doc.uri)
	if line > 0 {
		diagnostics = onLine(diagnostics, line-1)
	}
	actions, err := action.Synthesize(doc.uri, diagnostics, doc.ws.Catalog(doc.uri))
	if err != nil {
		return err
	}

	rows := make([]actionRow, 0, len(actions))
	for _, a := range actions {
		d := a.Subject().Diagnostic
		rows = append(rows, actionRow{
			Position: position(d),
			Code:     d.Code.String(),
			Severity: d.Severity.String(),
			Kind:     a.Category().String(),
			Title:    a.Title(),
			Command:  a.Command().Name,
		})
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	renderActions(cmd.OutOrStdout(), rows)
	return nil
}

func onLine(diagnostics []diag.Diagnostic, line int) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range diagnostics {
		if d.StartLine() == line {
			out = append(out, d)
		}
	}
	return out
}

// position formats a diagnostic start as 1-based line:column.
func position(d diag.Diagnostic) string {
	return strconv.Itoa(d.Range.Start.Line+1) + ":" + strconv.Itoa(d.Range.Start.Character+1)
}

var (
	positionColor = color.New(color.Faint)
	codeColor     = color.New(color.FgCyan)
	applyColor    = color.New(color.FgGreen, color.Bold)
	suppressColor = color.New(color.FgYellow)
)

// renderActions prints one aligned row per action. Padding is computed on
// the plain text so colors and wide runes do not skew the columns.
func renderActions(out io.Writer, rows []actionRow) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "no actions")
		return
	}
	var posWidth, codeWidth, kindWidth int
	for _, r := range rows {
		posWidth = max(posWidth, runewidth.StringWidth(r.Position))
		codeWidth = max(codeWidth, runewidth.StringWidth(r.Code))
		kindWidth = max(kindWidth, runewidth.StringWidth(r.Kind))
	}
	for _, r := range rows {
		kind := suppressColor
		if r.Kind == action.CategoryApplyOne.String() || r.Kind == action.CategoryApplyInFile.String() {
			kind = applyColor
		}
		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			positionColor.Sprint(runewidth.FillRight(r.Position, posWidth)),
			codeColor.Sprint(runewidth.FillRight(r.Code, codeWidth)),
			kind.Sprint(runewidth.FillRight(r.Kind, kindWidth)),
			r.Title,
		)
	}
}
