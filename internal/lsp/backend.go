package lsp

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lintfix/internal/diag"
	"lintfix/internal/docuri"
	"lintfix/internal/workspace"
)

// clientBackend reads open buffers, edits through workspace/applyEdit and
// publishes through textDocument/publishDiagnostics.
type clientBackend struct {
	s *Server
}

func (b clientBackend) Load(_ context.Context, uri string) (string, error) {
	b.s.mu.Lock()
	text, ok := b.s.openDocs[uri]
	b.s.mu.Unlock()
	if ok {
		return text, nil
	}
	path := docuri.ToPath(uri)
	if path == "" {
		return "", fmt.Errorf("document %s is not open", uri)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Store asks the client to apply change. The buffer is updated right away
// on success; the client's didChange carries the same full text.
func (b clientBackend) Store(ctx context.Context, uri, text string, change workspace.Change) error {
	params := applyWorkspaceEditParams{
		Label: "lintfix",
		Edit: workspaceEdit{Changes: map[string][]textEdit{
			uri: {{Range: change.Range, NewText: change.NewText}},
		}},
	}
	var res applyWorkspaceEditResult
	if err := b.s.call(ctx, "workspace/applyEdit", params, &res); err != nil {
		return err
	}
	if !res.Applied {
		reason := res.FailureReason
		if reason == "" {
			reason = "no reason given"
		}
		return errors.New("client rejected edit: " + reason)
	}
	b.s.mu.Lock()
	if _, ok := b.s.openDocs[uri]; ok {
		b.s.openDocs[uri] = text
	}
	b.s.mu.Unlock()
	return nil
}

func (b clientBackend) Publish(_ context.Context, uri string, diagnostics []diag.Diagnostic) error {
	b.s.mu.Lock()
	b.s.published[uri] = struct{}{}
	b.s.generation[uri]++
	b.s.mu.Unlock()
	return b.s.sendPublish(uri, diagnostics)
}

func (s *Server) sendPublish(uri string, list []diag.Diagnostic) error {
	if list == nil {
		list = []diag.Diagnostic{}
	}
	params := publishDiagnosticsParams{URI: uri, Diagnostics: list}
	s.mu.Lock()
	if v, ok := s.versions[uri]; ok {
		params.Version = &v
	}
	s.mu.Unlock()
	return s.sendNotification("textDocument/publishDiagnostics", params)
}
