package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
)

// Store persists the [rules] disabled list of a manifest. Other sections are
// preserved as loaded.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  Config
}

// NewStore binds a Store to path. A missing file starts from Default and is
// created on the first write.
func NewStore(path string) (*Store, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	return &Store{path: path, cfg: cfg}, nil
}

// Path returns the manifest location.
func (s *Store) Path() string {
	return s.path
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	cfg.Rules.Disabled = slices.Clone(s.cfg.Rules.Disabled)
	cfg.Lint.Command = slices.Clone(s.cfg.Lint.Command)
	return cfg
}

// Disabled returns the sorted disabled rule ids.
func (s *Store) Disabled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cfg.Rules.Disabled)
}

// DisableRule adds ruleID to [rules] disabled and rewrites the manifest.
// Disabling an already disabled rule is a no-op.
func (s *Store) DisableRule(ruleID string) error {
	if ruleID == "" {
		return fmt.Errorf("config: empty rule id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := slices.Clone(s.cfg.Rules.Disabled)
	rules = append(rules, ruleID)
	slices.Sort(rules)
	rules = slices.Compact(rules)
	if slices.Equal(rules, s.cfg.Rules.Disabled) {
		return nil
	}
	next := s.cfg
	next.Rules.Disabled = rules
	if err := writeAtomic(s.path, next); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

func writeAtomic(path string, cfg Config) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".lintfix-*.toml")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), path)
}
