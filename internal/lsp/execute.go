package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lintfix/internal/action"
	"lintfix/internal/diag"
	"lintfix/internal/fix"
	"lintfix/internal/suppress"
	"lintfix/internal/trace"
)

// handleExecuteCommand decodes the command and runs it off the read loop:
// the action may wait on workspace/applyEdit, whose response the loop must
// keep reading.
func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	a, err := action.Decode(params.Command, params.Arguments)
	if err != nil {
		s.logf("executeCommand: %v", err)
		code := codeInvalidParams
		if errors.Is(err, action.ErrUnknownCommand) {
			code = codeMethodNotFound
		}
		return s.sendError(msg.ID, code, err.Error())
	}

	id := msg.ID
	ctx := s.context()
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.execute(ctx, a); err != nil {
			s.logf("executeCommand %s: %v", params.Command, err)
			s.showMessage(messageError, "lintfix: %s failed: %v", a.Title(), err)
		}
		if err := s.sendResponse(id, nil); err != nil {
			s.logf("failed to respond to executeCommand: %v", err)
		}
	}()
	return nil
}

// execute runs one action with the document lock held.
func (s *Server) execute(ctx context.Context, a action.Action) error {
	ctx, span := trace.Start(ctx, trace.ScopeCommand, "executeCommand")
	defer span.End("")
	span.WithExtra("category", a.Category().String())

	target := a.Subject()
	uri := canonicalURI(target.URI)
	lock := s.lockFor(uri)
	if err := lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer lock.Release(1)

	switch v := a.(type) {
	case action.ApplyOne:
		return s.applyFix(ctx, uri, v.Diagnostic, fix.ScopeSingle)
	case action.ApplyInFile:
		return s.applyFix(ctx, uri, v.Diagnostic, fix.ScopeFile)
	case action.SuppressLine:
		return s.suppress(ctx, uri, v.Diagnostic, suppress.ScopeLine)
	case action.SuppressFile:
		return s.suppress(ctx, uri, v.Diagnostic, suppress.ScopeFile)
	case action.SuppressAlways:
		return s.suppress(ctx, uri, v.Diagnostic, suppress.ScopeAlways)
	}
	return fmt.Errorf("unsupported action %T", a)
}

func (s *Server) applyFix(ctx context.Context, uri string, d diag.Diagnostic, scope fix.Scope) error {
	s.mu.Lock()
	cfg := s.fixCfg
	s.mu.Unlock()
	out, err := fix.NewOrchestrator(s.linter, s.ws, cfg).Apply(ctx, uri, []diag.Diagnostic{d}, scope)
	if err != nil {
		return err
	}
	if !out.Applied {
		s.showMessage(messageWarning, "lintfix: no fix applied for %s (status %d)", d.Code, out.Status)
	}
	return nil
}

func (s *Server) suppress(ctx context.Context, uri string, d diag.Diagnostic, scope suppress.Scope) error {
	plan, err := suppress.NewManager(s.ws, s.rules).Add(ctx, uri, d, scope)
	if err != nil {
		return err
	}
	if scope == suppress.ScopeAlways {
		s.showMessage(messageInfo, "lintfix: rule %s disabled", plan.RuleID)
	}
	return nil
}
