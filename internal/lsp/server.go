package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"lintfix/internal/action"
	"lintfix/internal/fix"
	"lintfix/internal/suppress"
	"lintfix/internal/trace"
	"lintfix/internal/workspace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// Linter is what the server needs from the external linter: diagnostics for
// publishing and the fixer used by the fix orchestrator.
type Linter interface {
	workspace.Linter
	fix.Fixer
}

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Debounce       time.Duration
	MaxDiagnostics int
	Linter         Linter
	Fix            fix.Config
	Tracer         trace.Tracer
	ActionCache    int
	Version        string

	// Rules persists rules disabled everywhere; nil makes that action fail.
	Rules suppress.RuleStore
}

// Server handles stdio JSON-RPC for the lintfix language server.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	mu     sync.Mutex

	openDocs   map[string]string
	versions   map[string]int
	published  map[string]struct{}
	generation map[string]uint64
	lintSeq    map[string]uint64
	timers     map[string]*time.Timer
	locks      map[string]*semaphore.Weighted

	shutdownRequested bool
	debounce          time.Duration
	traceLSP          bool
	fixCfg            fix.Config
	version           string

	baseCtx context.Context
	tracer  trace.Tracer
	linter  Linter
	rules   suppress.RuleStore
	ws      *workspace.Workspace
	actions *lru.Cache[actionKey, []codeAction]

	nextID    atomic.Int64
	pendingMu sync.Mutex
	pending   map[string]chan *rpcMessage
	inflight  sync.WaitGroup
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	cacheSize := opts.ActionCache
	if cacheSize <= 0 {
		cacheSize = 256
	}
	actions, err := lru.New[actionKey, []codeAction](cacheSize)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	s := &Server{
		in:         bufio.NewReader(in),
		out:        bufio.NewWriter(out),
		openDocs:   make(map[string]string),
		versions:   make(map[string]int),
		published:  make(map[string]struct{}),
		generation: make(map[string]uint64),
		lintSeq:    make(map[string]uint64),
		timers:     make(map[string]*time.Timer),
		locks:      make(map[string]*semaphore.Weighted),
		debounce:   debounce,
		fixCfg:     opts.Fix,
		version:    opts.Version,
		baseCtx:    trace.WithTracer(context.Background(), tracer),
		tracer:     tracer,
		linter:     opts.Linter,
		rules:      opts.Rules,
		actions:    actions,
		pending:    make(map[string]chan *rpcMessage),
	}
	s.ws = workspace.New(clientBackend{s: s}, opts.Linter, maxDiagnostics)
	return s
}

// Run serves LSP requests until exit or end of input.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(trace.WithTracer(ctx, s.tracer))
	defer func() {
		s.stopTimers()
		cancel()
		s.inflight.Wait()
	}()
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.isResponse() {
			s.deliver(&msg)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if s.isShutdown() {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "$/cancelRequest", "$/setTrace":
		return nil
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	s.applySettings(params.InitializationOptions)

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    1,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{codeActionKindQuickFix},
			},
			ExecuteCommandProvider: &executeCommandOptions{
				Commands: action.Commands,
			},
		},
		ServerInfo: &serverInfo{Name: "lintfix", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopTimers()
	s.clearPublishedDiagnostics()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = params.TextDocument.Text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	s.scheduleLint(uri)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = applyChanges(s.openDocs[uri], params.ContentChanges)
	s.versions[uri] = params.TextDocument.Version
	traceLSP := s.traceLSP
	s.mu.Unlock()
	if traceLSP {
		s.logf("didChange: uri=%s version=%d", uri, params.TextDocument.Version)
	}
	s.scheduleLint(uri)
	return nil
}

func (s *Server) handleDidSave(msg *rpcMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if params.Text != nil {
		s.openDocs[uri] = *params.Text
	}
	s.mu.Unlock()
	s.scheduleLint(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	delete(s.lintSeq, uri)
	if t := s.timers[uri]; t != nil {
		t.Stop()
		delete(s.timers, uri)
	}
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()
	s.ws.Forget(uri)
	if hadDiagnostics {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
	return nil
}

// lockFor returns the per-document mutation lock.
func (s *Server) lockFor(uri string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	sem, ok := s.locks[uri]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[uri] = sem
	}
	return sem
}

func (s *Server) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

func (s *Server) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for uri := range prev {
		if err := s.sendPublish(uri, nil); err != nil {
			s.logf("failed to clear diagnostics: %v", err)
		}
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return s.send(msg)
}

func (s *Server) showMessage(kind int, format string, args ...any) {
	params := showMessageParams{Type: kind, Message: fmt.Sprintf(format, args...)}
	if err := s.sendNotification("window/showMessage", params); err != nil {
		s.logf("failed to show message: %v", err)
	}
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "lsp: "+format+"\n", args...)
}
