// Package workspace keeps the live diagnostic set of each document and
// routes text mutations to a Backend (the filesystem for the CLI, the
// client's workspace/applyEdit for the language server).
package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"

	"lintfix/internal/diag"
	"lintfix/internal/suppress"
	"lintfix/internal/trace"
)

// Linter produces the diagnostics and fix catalog of a document text.
type Linter interface {
	Diagnostics(ctx context.Context, uri, text string) ([]diag.Diagnostic, diag.Catalog, error)
}

// Change is a single text edit against the previous document text.
// Characters count UTF-16 code units.
type Change struct {
	Range   diag.Range
	NewText string
}

// Backend loads and stores document text and receives diagnostic updates.
type Backend interface {
	Load(ctx context.Context, uri string) (string, error)
	// Store persists text; change describes the same mutation as an edit.
	Store(ctx context.Context, uri, text string, change Change) error
	Publish(ctx context.Context, uri string, diagnostics []diag.Diagnostic) error
}

type docState struct {
	bag     *diag.Bag
	catalog diag.Catalog
}

// Workspace implements the document collaborator of the suppression
// manager and the fix orchestrator.
type Workspace struct {
	mu             sync.Mutex
	backend        Backend
	linter         Linter
	maxDiagnostics int
	docs           map[string]*docState
}

// New creates a Workspace. maxDiagnostics caps each document's set (0 = no cap).
func New(backend Backend, linter Linter, maxDiagnostics int) *Workspace {
	return &Workspace{
		backend:        backend,
		linter:         linter,
		maxDiagnostics: maxDiagnostics,
		docs:           make(map[string]*docState),
	}
}

func (w *Workspace) state(uri string) *docState {
	st, ok := w.docs[uri]
	if !ok {
		st = &docState{bag: diag.NewBag(w.maxDiagnostics), catalog: diag.Catalog{}}
		w.docs[uri] = st
	}
	return st
}

// Text returns the current document text.
func (w *Workspace) Text(ctx context.Context, uri string) (string, error) {
	return w.backend.Load(ctx, uri)
}

// Lines returns the document lines without their terminators. Both "\n"
// and "\r\n" end a line.
func (w *Workspace) Lines(ctx context.Context, uri string) ([]string, error) {
	text, err := w.backend.Load(ctx, uri)
	if err != nil {
		return nil, err
	}
	return stripCR(strings.Split(text, "\n")), nil
}

// ApplyEdit applies a suppression edit. The new line ends the way the
// document's lines do; untouched lines keep their bytes.
func (w *Workspace) ApplyEdit(ctx context.Context, uri string, edit suppress.Edit) error {
	text, err := w.backend.Load(ctx, uri)
	if err != nil {
		return err
	}
	eol := lineEnding(text)
	raw := strings.Split(text, "\n")
	lines := stripCR(raw)

	rawEdit := edit
	switch edit.Kind {
	case suppress.EditReplace:
		if edit.Line >= 0 && edit.Line < len(raw) && strings.HasSuffix(raw[edit.Line], "\r") {
			rawEdit.Text += "\r"
		}
	case suppress.EditInsert:
		if eol == "\r\n" {
			if edit.Line < len(raw) {
				rawEdit.Text += "\r"
			} else if edit.Line == len(raw) {
				raw = append([]string(nil), raw...)
				raw[len(raw)-1] += "\r"
			}
		}
	}
	next, err := rawEdit.Apply(raw)
	if err != nil {
		return err
	}
	return w.backend.Store(ctx, uri, strings.Join(next, "\n"), lineChange(lines, edit, eol))
}

// ReplaceText swaps the whole document text.
func (w *Workspace) ReplaceText(ctx context.Context, uri, text string) error {
	old, err := w.backend.Load(ctx, uri)
	if err != nil {
		return err
	}
	return w.backend.Store(ctx, uri, text, Change{Range: fullRange(old), NewText: text})
}

// Revalidate re-lints the document and replaces its diagnostic set.
func (w *Workspace) Revalidate(ctx context.Context, uri string) error {
	text, err := w.backend.Load(ctx, uri)
	if err != nil {
		return err
	}
	diags, catalog, err := w.linter.Diagnostics(ctx, uri, text)
	if err != nil {
		return err
	}
	if catalog == nil {
		catalog = diag.Catalog{}
	}

	w.mu.Lock()
	st := w.state(uri)
	st.bag.Reset(diags)
	st.bag.Sort()
	st.catalog = catalog
	items := st.bag.Items()
	w.mu.Unlock()

	trace.Point(trace.FromContext(ctx), trace.ScopeStep, "workspace.revalidate",
		fmt.Sprintf("%s: %d diagnostics", uri, len(items)), trace.CurrentSpan(ctx))
	return w.backend.Publish(ctx, uri, items)
}

// RemoveDiagnostics drops diagnostics from the live set. With all set, every
// diagnostic sharing a rule id with one of them goes.
func (w *Workspace) RemoveDiagnostics(ctx context.Context, uri string, diagnostics []diag.Diagnostic, all bool) error {
	w.mu.Lock()
	st := w.state(uri)
	if all {
		if _, err := st.bag.RemoveRules(diagnostics); err != nil {
			w.mu.Unlock()
			return err
		}
	} else {
		st.bag.Remove(diagnostics)
	}
	items := st.bag.Items()
	w.mu.Unlock()
	return w.backend.Publish(ctx, uri, items)
}

// RemoveDiagnosticsFrom drops every diagnostic starting at or below line.
func (w *Workspace) RemoveDiagnosticsFrom(ctx context.Context, uri string, line int) error {
	w.mu.Lock()
	st := w.state(uri)
	st.bag.RemoveFromLine(line)
	items := st.bag.Items()
	w.mu.Unlock()
	return w.backend.Publish(ctx, uri, items)
}

// Diagnostics returns the live diagnostics of uri.
func (w *Workspace) Diagnostics(uri string) []diag.Diagnostic {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, ok := w.docs[uri]; ok {
		return st.bag.Items()
	}
	return nil
}

// Catalog returns the fix catalog of the last lint of uri.
func (w *Workspace) Catalog(uri string) diag.Catalog {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, ok := w.docs[uri]; ok {
		return st.catalog
	}
	return nil
}

// Forget drops all state of uri.
func (w *Workspace) Forget(uri string) {
	w.mu.Lock()
	delete(w.docs, uri)
	w.mu.Unlock()
}

// lineChange describes edit against lines (terminators stripped) for the
// client; eol terminates an inserted line.
func lineChange(lines []string, edit suppress.Edit, eol string) Change {
	switch edit.Kind {
	case suppress.EditReplace:
		return Change{
			Range: diag.Range{
				Start: diag.Position{Line: edit.Line},
				End:   diag.Position{Line: edit.Line, Character: utf16Len(lines[edit.Line])},
			},
			NewText: edit.Text,
		}
	default:
		if edit.Line >= len(lines) {
			last := len(lines) - 1
			end := diag.Position{Line: last, Character: utf16Len(lines[last])}
			return Change{Range: diag.Range{Start: end, End: end}, NewText: eol + edit.Text}
		}
		at := diag.Position{Line: edit.Line}
		return Change{Range: diag.Range{Start: at, End: at}, NewText: edit.Text + eol}
	}
}

// lineEnding returns "\r\n" when the first line of text ends that way and
// "\n" otherwise.
func lineEnding(text string) string {
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

func stripCR(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSuffix(l, "\r")
	}
	return out
}

func fullRange(text string) diag.Range {
	lines := strings.Split(text, "\n")
	last := len(lines) - 1
	return diag.Range{End: diag.Position{Line: last, Character: utf16Len(lines[last])}}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
