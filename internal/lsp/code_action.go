package lsp

import (
	"encoding/json"
	"strconv"
	"strings"

	"lintfix/internal/action"
	"lintfix/internal/diag"
	"lintfix/internal/trace"
)

// actionKey identifies a cached codeAction answer. generation moves with
// every publish, so a re-lint of the same version misses the cache.
type actionKey struct {
	uri        string
	version    int
	generation uint64
	rng        diag.Range
	codes      string
}

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	ctx, span := trace.Start(s.context(), trace.ScopeCommand, "codeAction")
	defer span.End("")

	uri := canonicalURI(params.TextDocument.URI)
	if !wantsQuickFix(params.Context.Only) {
		return s.sendResponse(msg.ID, []codeAction{})
	}
	diags := ownDiagnostics(params.Context.Diagnostics)
	if len(diags) == 0 {
		return s.sendResponse(msg.ID, []codeAction{})
	}

	key := s.actionKeyFor(uri, params.Range, diags)
	if cached, ok := s.actions.Get(key); ok {
		span.WithExtra("cache", "hit")
		return s.sendResponse(msg.ID, cached)
	}

	actions, err := action.Synthesize(uri, diags, s.ws.Catalog(uri))
	if err != nil {
		trace.Failure(trace.FromContext(ctx), trace.ScopeStep, "codeAction.synthesize", err, span.ID())
		return s.sendError(msg.ID, codeInvalidParams, err.Error())
	}
	out := make([]codeAction, 0, len(actions))
	for _, a := range actions {
		cmd := a.Command()
		out = append(out, codeAction{
			Title:       a.Title(),
			Kind:        codeActionKindQuickFix,
			Diagnostics: action.Diagnostics(a),
			IsPreferred: a.Preferred(),
			Command: &lspCommand{
				Title:     cmd.Title,
				Command:   cmd.Name,
				Arguments: cmd.Arguments,
			},
		})
	}
	s.actions.Add(key, out)
	span.WithExtra("actions", strconv.Itoa(len(out)))
	return s.sendResponse(msg.ID, out)
}

func (s *Server) actionKeyFor(uri string, rng diag.Range, diags []diag.Diagnostic) actionKey {
	codes := make([]string, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, string(d.Code))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return actionKey{
		uri:        uri,
		version:    s.versions[uri],
		generation: s.generation[uri],
		rng:        rng,
		codes:      strings.Join(codes, ","),
	}
}

// ownDiagnostics keeps the request diagnostics that carry a
// "<RuleId>-<OccurrenceId>" code; anything else belongs to another server.
func ownDiagnostics(raw []json.RawMessage) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(raw))
	for _, r := range raw {
		var d diag.Diagnostic
		if err := json.Unmarshal(r, &d); err != nil {
			continue
		}
		if _, _, err := d.Code.Split(); err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

func wantsQuickFix(only []string) bool {
	if len(only) == 0 {
		return true
	}
	for _, kind := range only {
		if kind == "" || kind == codeActionKindQuickFix {
			return true
		}
	}
	return false
}
