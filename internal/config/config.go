// Package config discovers and loads lintfix.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest looked up from the working or document directory.
const FileName = "lintfix.toml"

// Config mirrors lintfix.toml.
type Config struct {
	Lint  LintConfig  `toml:"lint"`
	Fix   FixConfig   `toml:"fix"`
	Rules RulesConfig `toml:"rules"`
	LSP   LSPConfig   `toml:"lsp"`
	Trace TraceConfig `toml:"trace"`
}

type LintConfig struct {
	Command []string `toml:"command,omitempty"`
	Source  string   `toml:"source"`
	Cache   bool     `toml:"cache"`
}

type FixConfig struct {
	LintAgain bool `toml:"lint_again"`
}

type RulesConfig struct {
	Disabled []string `toml:"disabled,omitempty"`
}

type LSPConfig struct {
	DebounceMS     int `toml:"debounce_ms"`
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type TraceConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Lint:  LintConfig{Source: "lintfix", Cache: true},
		Fix:   FixConfig{LintAgain: true},
		LSP:   LSPConfig{DebounceMS: 300, MaxDiagnostics: 100},
		Trace: TraceConfig{Level: "off"},
	}
}

// Debounce returns the lint debounce as a duration.
func (c Config) Debounce() time.Duration {
	if c.LSP.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(c.LSP.DebounceMS) * time.Millisecond
}

// IsDisabled reports whether ruleID is listed in [rules] disabled.
func (c Config) IsDisabled(ruleID string) bool {
	for _, r := range c.Rules.Disabled {
		if r == ruleID {
			return true
		}
	}
	return false
}

// Find walks up from startDir to locate lintfix.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of Default. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("lint", "command") && len(cfg.Lint.Command) == 0 {
		return Config{}, fmt.Errorf("%s: [lint].command must not be empty", path)
	}
	if cfg.LSP.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [lsp].max_diagnostics must be >= 0", path)
	}
	return cfg, nil
}

// Discover finds the manifest above startDir and loads it. When none exists
// it returns Default with an empty path.
func Discover(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}
