package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"lintfix/internal/diag"
	"lintfix/internal/docuri"
)

// DiskBackend reads and writes documents on the local filesystem.
type DiskBackend struct {
	// OnPublish, when set, receives every diagnostic update.
	OnPublish func(uri string, diagnostics []diag.Diagnostic)
}

func (b DiskBackend) Load(_ context.Context, uri string) (string, error) {
	path, err := localPath(uri)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Store writes text through a temp file and rename, keeping the file mode.
func (b DiskBackend) Store(_ context.Context, uri, text string, _ Change) (err error) {
	path, err := localPath(uri)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".lintfix-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.WriteString(text); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func (b DiskBackend) Publish(_ context.Context, uri string, diagnostics []diag.Diagnostic) error {
	if b.OnPublish != nil {
		b.OnPublish(uri, diagnostics)
	}
	return nil
}

func localPath(uri string) (string, error) {
	path := docuri.ToPath(uri)
	if path == "" {
		return "", fmt.Errorf("not a file uri: %q", uri)
	}
	return path, nil
}
