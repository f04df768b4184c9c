package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lintfix/internal/config"
	"lintfix/internal/docuri"
	"lintfix/internal/linter"
	"lintfix/internal/workspace"
)

// reportCacheSize bounds the in-memory cache of raw linter output.
const reportCacheSize = 128

// loadStore resolves the manifest for dir: the --config flag wins, then the
// nearest lintfix.toml above dir. Without either the store points at dir and
// the file is created on the first persisted rule.
func loadStore(cmd *cobra.Command, dir string) (*config.Store, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		found, ok, err := config.Find(dir)
		if err != nil {
			return nil, err
		}
		if ok {
			path = found
		} else {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, err
			}
			path = filepath.Join(abs, config.FileName)
		}
	}
	return config.NewStore(path)
}

// newLinter builds the SARIF linter adapter for the store's configuration.
// Disabled rules are read from the store on every run so that rules disabled
// during the session take effect on the next lint.
func newLinter(store *config.Store) (*linter.Linter, error) {
	cfg := store.Config()
	var cache *linter.Cache
	if cfg.Lint.Cache {
		dir, err := linter.DefaultCacheDir("lintfix")
		if err != nil {
			// без диска остаётся кеш в памяти
			fmt.Fprintf(os.Stderr, "lintfix: disk cache disabled: %v\n", err)
			dir = ""
		}
		cache, err = linter.NewCache(reportCacheSize, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create report cache: %w", err)
		}
	}
	return linter.New(linter.Options{
		Command: cfg.Lint.Command,
		Source:  cfg.Lint.Source,
		Disabled: func(ruleID string) bool {
			return store.Config().IsDisabled(ruleID)
		},
		Cache: cache,
	}, nil), nil
}

// document is a file opened for a one-shot CLI operation.
type document struct {
	uri    string
	store  *config.Store
	linter *linter.Linter
	ws     *workspace.Workspace
}

// openDocument lints path from disk and keeps its diagnostics in a
// disk-backed workspace.
func openDocument(cmd *cobra.Command, path string) (*document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, err
	} else if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	store, err := loadStore(cmd, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	lint, err := newLinter(store)
	if err != nil {
		return nil, err
	}
	doc := &document{
		uri:    docuri.FromPath(abs),
		store:  store,
		linter: lint,
		ws:     workspace.New(workspace.DiskBackend{}, lint, store.Config().LSP.MaxDiagnostics),
	}
	if err := doc.ws.Revalidate(cmd.Context(), doc.uri); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
