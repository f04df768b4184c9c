package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lintfix/internal/diag"
	"lintfix/internal/docuri"
	"lintfix/internal/fix"
)

// fakeLinter reports UnusedImport on the first line while the text still
// contains "import foo", and fixes it by dropping that line.
type fakeLinter struct {
	mu        sync.Mutex
	fixStatus int
	lints     int
	fixCalls  [][]int
}

var unusedImport = diag.Diagnostic{
	Range:    diag.Range{End: diag.Position{Character: 10}},
	Severity: diag.SevWarning,
	Code:     "UnusedImport-0",
	Source:   "fake",
	Message:  "import foo is never used",
}

func (f *fakeLinter) Diagnostics(_ context.Context, _ string, text string) ([]diag.Diagnostic, diag.Catalog, error) {
	f.mu.Lock()
	f.lints++
	f.mu.Unlock()
	catalog := diag.Catalog{"UnusedImport": {{Label: "Remove unused import"}}}
	if strings.Contains(text, "import foo") {
		return []diag.Diagnostic{unusedImport}, catalog, nil
	}
	return nil, catalog, nil
}

func (f *fakeLinter) FixErrors(_ context.Context, _ string, text string, ids []int) (*fix.Result, error) {
	f.mu.Lock()
	f.fixCalls = append(f.fixCalls, ids)
	status := f.fixStatus
	f.mu.Unlock()
	if status != fix.StatusSuccess {
		return &fix.Result{Status: status, Source: text}, nil
	}
	return &fix.Result{Source: strings.Replace(text, "import foo\n", "", 1)}, nil
}

func (f *fakeLinter) LintWithOptions(ctx context.Context, uri, text string, opts fix.LintOptions) (*fix.Result, error) {
	if !opts.Fix {
		return &fix.Result{Source: text}, nil
	}
	return f.FixErrors(ctx, uri, text, nil)
}

func (f *fakeLinter) lintCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lints
}

type fakeRules struct {
	mu    sync.Mutex
	rules []string
}

func (r *fakeRules) DisableRule(ruleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, ruleID)
	return nil
}

// testClient drives a running Server over in-memory pipes.
type testClient struct {
	t      *testing.T
	srv    *Server
	w      *io.PipeWriter
	msgs   chan rpcMessage
	done   chan error
	nextID int
}

func startServer(t *testing.T, opts ServerOptions) *testClient {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = 5 * time.Millisecond
	}
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	srv := NewServer(inR, outW, opts)
	c := &testClient{
		t:    t,
		srv:  srv,
		w:    inW,
		msgs: make(chan rpcMessage, 64),
		done: make(chan error, 1),
	}
	go func() {
		err := srv.Run(context.Background())
		outW.Close()
		c.done <- err
	}()
	go func() {
		r := bufio.NewReader(outR)
		for {
			payload, err := readMessage(r)
			if err != nil {
				close(c.msgs)
				return
			}
			var msg rpcMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				continue
			}
			c.msgs <- msg
		}
	}()
	t.Cleanup(func() {
		inW.Close()
		select {
		case <-c.done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return c
}

func (c *testClient) write(msg map[string]any) {
	c.t.Helper()
	msg["jsonrpc"] = "2.0"
	payload, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	if err := writeMessage(c.w, payload); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.write(map[string]any{"method": method, "params": params})
}

func (c *testClient) request(method string, params any) int {
	c.t.Helper()
	c.nextID++
	c.write(map[string]any{"id": c.nextID, "method": method, "params": params})
	return c.nextID
}

func (c *testClient) reply(id json.RawMessage, result any) {
	c.t.Helper()
	c.write(map[string]any{"id": id, "result": result})
}

func (c *testClient) next() rpcMessage {
	c.t.Helper()
	select {
	case msg, ok := <-c.msgs:
		if !ok {
			c.t.Fatal("server closed its output")
		}
		return msg
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for a server message")
	}
	return rpcMessage{}
}

// expectMethod reads until a server message with method arrives.
func (c *testClient) expectMethod(method string) rpcMessage {
	c.t.Helper()
	for {
		msg := c.next()
		if msg.Method == method {
			return msg
		}
	}
}

// expectResponse reads until the response to id arrives.
func (c *testClient) expectResponse(id int) rpcMessage {
	c.t.Helper()
	want, _ := json.Marshal(id)
	for {
		msg := c.next()
		if msg.isResponse() && string(msg.ID) == string(want) {
			return msg
		}
	}
}

func (c *testClient) publishParams(msg rpcMessage) publishDiagnosticsParams {
	c.t.Helper()
	var params publishDiagnosticsParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		c.t.Fatalf("decode publish: %v", err)
	}
	return params
}

func (c *testClient) open(uri, text string) publishDiagnosticsParams {
	c.t.Helper()
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "groovy", Version: 1, Text: text},
	})
	return c.publishParams(c.expectMethod("textDocument/publishDiagnostics"))
}

func testURI(t *testing.T) string {
	t.Helper()
	return docuri.FromPath(filepath.Join(t.TempDir(), "Build.groovy"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
