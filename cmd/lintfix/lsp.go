package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lintfix/internal/fix"
	"lintfix/internal/lsp"
	"lintfix/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the lintfix language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	store, err := loadStore(cmd, wd)
	if err != nil {
		return err
	}
	cfg := store.Config()

	tracer, cleanup, err := setupTracing(cmd, cfg.Trace.Level)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	lint, err := newLinter(store)
	if err != nil {
		return err
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce:       cfg.Debounce(),
		MaxDiagnostics: cfg.LSP.MaxDiagnostics,
		Linter:         lint,
		Fix:            fix.Config{LintAgain: cfg.Fix.LintAgain},
		Tracer:         tracer,
		Version:        version.Plain(),
		Rules:          store,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
