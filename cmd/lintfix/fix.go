package main

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lintfix/internal/diag"
	"lintfix/internal/fix"
	"lintfix/internal/observ"
	"lintfix/internal/ui"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file>...",
	Short: "Apply the linter's fixes to files",
	Long: `Run the linter and apply its fixes. With --id only the listed occurrences are
fixed, with --rule every occurrence of that rule, and with neither every rule
that has a fix.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().String("rule", "", "fix every occurrence of this rule")
	fixCmd.Flags().IntSlice("id", nil, "fix these occurrence ids (see `lintfix actions`)")
	fixCmd.Flags().Int("jobs", 0, "files processed in parallel (default: number of CPUs)")
	fixCmd.Flags().Bool("timings", false, "print per-file timing information")
	fixCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

// fileReport is what fixing a single file produced.
type fileReport struct {
	path  string
	fixed []string
	left  int
}

// fixRun holds what every file of one fix invocation shares.
type fixRun struct {
	cmd    *cobra.Command
	timer  *observ.Timer
	sink   ui.Sink
	ruleID string
	ids    []int
}

func runFix(cmd *cobra.Command, args []string) error {
	ruleID, err := cmd.Flags().GetString("rule")
	if err != nil {
		return err
	}
	ids, err := cmd.Flags().GetIntSlice("id")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	if ruleID != "" && len(ids) > 0 {
		return fmt.Errorf("--rule cannot be combined with --id")
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	_, cleanup, err := setupTracing(cmd, "")
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	run := &fixRun{cmd: cmd, ruleID: ruleID, ids: ids, sink: ui.NopSink{}}
	if showTimings {
		run.timer = observ.NewTimer()
	}
	reports := make([]fileReport, len(args))
	work := func(sink ui.Sink) error {
		run.sink = sink
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)
		for i, path := range args {
			g.Go(func() error {
				report, err := run.file(ctx, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				reports[i] = report
				return nil
			})
		}
		return g.Wait()
	}

	if shouldUseTUI(mode, len(args)) {
		err = runWithUI("lintfix fix", args, work)
	} else {
		err = work(ui.NopSink{})
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen)
	for _, r := range reports {
		if len(r.fixed) == 0 {
			fmt.Fprintf(out, "%s: nothing fixed (%d diagnostics)\n", r.path, r.left)
			continue
		}
		fmt.Fprintf(out, "%s: %s %s (%d diagnostics left)\n",
			r.path, ok.Sprint("fixed"), strings.Join(r.fixed, ", "), r.left)
	}
	if run.timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), run.timer.Summary())
	}
	return nil
}

// file lints path, applies the requested fixes and reports progress.
func (r *fixRun) file(ctx context.Context, path string) (report fileReport, err error) {
	report.path = path
	defer func() {
		if err != nil {
			r.sink.Emit(ui.Event{File: path, Status: ui.StatusError, Note: err.Error()})
			return
		}
		r.sink.Emit(ui.Event{File: path, Status: ui.StatusDone, Note: fmt.Sprintf("%d fixed", len(report.fixed))})
	}()

	r.sink.Emit(ui.Event{File: path, Status: ui.StatusLinting})
	endLint := r.timer.Begin(path + " lint")
	doc, err := openDocument(r.cmd, path)
	if err != nil {
		endLint("failed")
		return fileReport{}, err
	}
	endLint(fmt.Sprintf("%d diagnostics", len(doc.ws.Diagnostics(doc.uri))))

	r.sink.Emit(ui.Event{File: path, Status: ui.StatusFixing})
	endFix := r.timer.Begin(path + " fix")
	defer func() { endFix(fmt.Sprintf("%d fixed", len(report.fixed))) }()

	// CLI always relints: later --rule passes need fresh occurrence ids
	orch := fix.NewOrchestrator(doc.linter, doc.ws, fix.Config{LintAgain: true})

	switch {
	case len(r.ids) > 0:
		targets := byOccurrence(doc.ws.Diagnostics(doc.uri), r.ids)
		if len(targets) == 0 {
			return fileReport{}, fmt.Errorf("no diagnostics with ids %v", r.ids)
		}
		out, err := orch.Apply(ctx, doc.uri, targets, fix.ScopeSingle)
		if err != nil {
			return fileReport{}, err
		}
		if out.Applied {
			for _, d := range targets {
				report.fixed = append(report.fixed, d.Code.String())
			}
		}
	case r.ruleID != "":
		out, err := fixRule(ctx, orch, doc, r.ruleID)
		if err != nil {
			return fileReport{}, err
		}
		if out.Applied {
			report.fixed = append(report.fixed, out.RuleID)
		}
	default:
		for _, rule := range ruleIDs(doc.ws.Diagnostics(doc.uri)) {
			out, err := fixRule(ctx, orch, doc, rule)
			if err != nil {
				return fileReport{}, err
			}
			if out.Applied {
				report.fixed = append(report.fixed, out.RuleID)
			}
		}
	}
	report.left = len(doc.ws.Diagnostics(doc.uri))
	return report, nil
}

// fixRule applies the file-wide fix for ruleID using the current diagnostics.
// A rule no longer reported is not an error.
func fixRule(ctx context.Context, orch *fix.Orchestrator, doc *document, ruleID string) (fix.Outcome, error) {
	for _, d := range doc.ws.Diagnostics(doc.uri) {
		if id, err := d.RuleID(); err == nil && id == ruleID {
			return orch.Apply(ctx, doc.uri, []diag.Diagnostic{d}, fix.ScopeFile)
		}
	}
	return fix.Outcome{}, nil
}

func byOccurrence(diagnostics []diag.Diagnostic, ids []int) []diag.Diagnostic {
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []diag.Diagnostic
	for _, d := range diagnostics {
		n, err := d.Code.Occurrence()
		if err != nil {
			continue
		}
		if _, ok := want[n]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ruleIDs lists distinct rule ids in diagnostic order.
func ruleIDs(diagnostics []diag.Diagnostic) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range diagnostics {
		id, err := d.RuleID()
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
