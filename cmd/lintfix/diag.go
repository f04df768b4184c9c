package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lintfix/internal/diag"
	"lintfix/internal/diagfmt"
	"lintfix/internal/version"
)

var diagCmd = &cobra.Command{
	Use:          "diag [flags] <file>...",
	Short:        "Lint files and print their diagnostics",
	Long:         `Run the configured linter over files and print the diagnostics with their rule codes. Exits non-zero when any error is reported.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif)")
	diagCmd.Flags().Bool("context", true, "show the source line under each diagnostic (pretty)")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output (json)")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	diagCmd.Flags().Int("jobs", 0, "files linted in parallel (default: number of CPUs)")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	showContext, err := cmd.Flags().GetBool("context")
	if err != nil {
		return err
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return err
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	switch format {
	case "pretty", "json", "sarif":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	_, cleanup, err := setupTracing(cmd, "")
	if err != nil {
		return err
	}
	defer cleanup()

	files := make([]diagfmt.File, len(args))
	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for i, path := range args {
		g.Go(func() error {
			doc, err := openDocument(cmd, path)
			if err != nil {
				return err
			}
			text, err := doc.ws.Text(cmd.Context(), doc.uri)
			if err != nil {
				return err
			}
			files[i] = diagfmt.File{
				Path:        path,
				Text:        text,
				Diagnostics: doc.ws.Diagnostics(doc.uri),
				Catalog:     doc.ws.Catalog(doc.uri),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	base, _ := os.Getwd()
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = diagfmt.JSON(out, files, diagfmt.JSONOpts{PathMode: pathMode, BaseDir: base, IncludeFixes: suggest})
	case "sarif":
		err = diagfmt.Sarif(out, files, diagfmt.SarifRunMeta{ToolName: "lintfix", ToolVersion: version.Plain()})
	default:
		opts := diagfmt.PrettyOpts{Color: !color.NoColor, Context: showContext, PathMode: pathMode, BaseDir: base}
		for _, f := range files {
			if err = diagfmt.Pretty(out, f, opts); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}

	if n := countErrors(files); n > 0 {
		return fmt.Errorf("found %d error(s)", n)
	}
	return nil
}

func countErrors(files []diagfmt.File) int {
	n := 0
	for _, f := range files {
		for _, d := range f.Diagnostics {
			if d.Severity == diag.SevError {
				n++
			}
		}
	}
	return n
}
