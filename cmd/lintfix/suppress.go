package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lintfix/internal/diag"
	"lintfix/internal/suppress"
)

var suppressCmd = &cobra.Command{
	Use:   "suppress [flags] <file>",
	Short: "Add a @SuppressWarnings annotation for a diagnostic",
	Long: `Suppress a diagnostic reported on --line for --rule. Scope "line" annotates the
construct on that line, "file" annotates the top of the file and "always"
disables the rule in lintfix.toml.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuppress,
}

func init() {
	suppressCmd.Flags().Int("line", 0, "1-based line the diagnostic starts on")
	suppressCmd.Flags().String("rule", "", "rule id to suppress")
	suppressCmd.Flags().String("scope", "line", "suppression scope (line|file|always)")
	suppressCmd.Flags().Bool("dry-run", false, "print the planned edit without changing anything")
	_ = suppressCmd.MarkFlagRequired("line")
	_ = suppressCmd.MarkFlagRequired("rule")
}

func runSuppress(cmd *cobra.Command, args []string) error {
	line, err := cmd.Flags().GetInt("line")
	if err != nil {
		return err
	}
	ruleID, err := cmd.Flags().GetString("rule")
	if err != nil {
		return err
	}
	scopeStr, err := cmd.Flags().GetString("scope")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	if line < 1 {
		return fmt.Errorf("--line must be >= 1")
	}
	scope, err := suppress.ParseScope(scopeStr)
	if err != nil {
		return err
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
	d, err := findDiagnostic(doc.ws.Diagnostics(doc.uri), ruleID, line-1)
	if err != nil {
		return err
	}
	if !d.Severity.Suppressible() {
		return fmt.Errorf("%s diagnostics cannot be suppressed", d.Severity)
	}

	out := cmd.OutOrStdout()
	if dryRun {
		var lines []string
		if scope != suppress.ScopeAlways {
			if lines, err = doc.ws.Lines(cmd.Context(), doc.uri); err != nil {
				return err
			}
		}
		plan, err := suppress.Compute(d, scope, lines)
		if err != nil {
			return err
		}
		describePlan(out, args[0], doc.store.Path(), plan)
		return nil
	}

	plan, err := suppress.NewManager(doc.ws, doc.store).Add(cmd.Context(), doc.uri, d, scope)
	if err != nil {
		return err
	}
	describePlan(out, args[0], doc.store.Path(), plan)
	return nil
}

// findDiagnostic returns the first diagnostic of ruleID starting on line.
func findDiagnostic(diagnostics []diag.Diagnostic, ruleID string, line int) (diag.Diagnostic, error) {
	for _, d := range diagnostics {
		if d.StartLine() != line {
			continue
		}
		// чужие коды без occurrence id пропускаем
		if id, err := d.RuleID(); err == nil && id == ruleID {
			return d, nil
		}
	}
	return diag.Diagnostic{}, fmt.Errorf("no %s diagnostic on line %d", ruleID, line+1)
}

func describePlan(out io.Writer, path, manifest string, plan suppress.Plan) {
	if plan.Edit == nil {
		fmt.Fprintf(out, "%s: disabled in %s\n", plan.RuleID, manifest)
		return
	}
	fmt.Fprintf(out, "%s:%d: %s %s\n", path, plan.Edit.Line+1, plan.Edit.Kind, plan.Edit.Text)
}
