package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lintfix/internal/diag"
	"lintfix/internal/observ"
	"lintfix/internal/ui"
)

const demoText = "import a.B \nimport a.B\nclass X {}\n"

const demoSARIF = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "mylinter"}},
    "results": [
      {
        "ruleId": "TrailingWhitespace",
        "level": "note",
        "message": {"text": "Line ends with whitespace"},
        "locations": [{"physicalLocation": {"region": {"startLine": 1, "startColumn": 11, "endColumn": 12}}}],
        "fixes": [{
          "description": {"text": "Remove trailing whitespace"},
          "artifactChanges": [{
            "artifactLocation": {"uri": "demo.groovy"},
            "replacements": [{"deletedRegion": {"startLine": 1, "startColumn": 11, "endColumn": 12}}]
          }]
        }]
      },
      {
        "ruleId": "DuplicateImport",
        "level": "warning",
        "message": {"text": "Duplicate import a.B"},
        "locations": [{"physicalLocation": {"region": {"startLine": 2, "startColumn": 1, "endColumn": 11}}}],
        "fixes": [{
          "description": {"text": "Remove duplicate import"},
          "artifactChanges": [{
            "artifactLocation": {"uri": "demo.groovy"},
            "replacements": [{"deletedRegion": {"startLine": 2, "startColumn": 1, "endLine": 3, "endColumn": 1}}]
          }]
        }]
      }
    ]
  }]
}`

// lintScript reports demoSARIF while the duplicate import is present and
// nothing afterwards.
const lintScript = `if grep -q '^import a.B$'; then
  cat "$(dirname "$0")/report.sarif"
else
  echo '{"version": "2.1.0", "runs": []}'
fi
`

// setupProject writes a project with a shell-based linter and returns the
// document path.
func setupProject(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	files := map[string]string{
		"report.sarif": demoSARIF,
		"lint.sh":      lintScript,
		"demo.groovy":  demoText,
		"lintfix.toml": "[lint]\ncommand = [\"sh\", '" + filepath.Join(dir, "lint.sh") + "']\nsource = \"mylinter\"\ncache = false\n",
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "demo.groovy")
}

// testCommand returns a subcommand attached to a root carrying the
// persistent flags the commands read.
func testCommand() *cobra.Command {
	root := &cobra.Command{Use: "lintfix"}
	root.PersistentFlags().String("config", "", "")
	root.PersistentFlags().String("color", "off", "")
	root.PersistentFlags().String("trace", "", "")
	root.PersistentFlags().String("trace-level", "", "")
	child := &cobra.Command{Use: "child"}
	root.AddCommand(child)
	child.SetContext(context.Background())
	return child
}

type recordingSink struct {
	statuses []ui.Status
}

func (s *recordingSink) Emit(ev ui.Event) {
	s.statuses = append(s.statuses, ev.Status)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestOpenDocumentLints(t *testing.T) {
	path := setupProject(t)
	doc, err := openDocument(testCommand(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got := doc.ws.Diagnostics(doc.uri)
	if len(got) != 2 {
		t.Fatalf("expected 2 diagnostics, got %+v", got)
	}
	if got[0].Code != "TrailingWhitespace-0" || got[1].Code != "DuplicateImport-1" {
		t.Fatalf("unexpected codes %q %q", got[0].Code, got[1].Code)
	}
	if got[1].Source != "mylinter" {
		t.Fatalf("unexpected source %q", got[1].Source)
	}
}

func TestOpenDocumentRejectsDirectory(t *testing.T) {
	if _, err := openDocument(testCommand(), t.TempDir()); err == nil {
		t.Fatal("expected an error for a directory")
	}
}

func TestFixFileByOccurrence(t *testing.T) {
	path := setupProject(t)
	timer := observ.NewTimer()
	sink := &recordingSink{}
	run := &fixRun{cmd: testCommand(), timer: timer, sink: sink, ids: []int{1}}
	report, err := run.file(context.Background(), path)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !reflect.DeepEqual(report.fixed, []string{"DuplicateImport-1"}) {
		t.Fatalf("unexpected fixed list %v", report.fixed)
	}
	if report.left != 0 {
		t.Fatalf("expected a clean relint, %d diagnostics left", report.left)
	}
	if got := readFile(t, path); got != "import a.B \nclass X {}\n" {
		t.Fatalf("unexpected file content %q", got)
	}
	phases := timer.Report().Phases
	if len(phases) != 2 || phases[0].Note != "2 diagnostics" || phases[1].Note != "1 fixed" {
		t.Fatalf("unexpected timings %+v", phases)
	}
	want := []ui.Status{ui.StatusLinting, ui.StatusFixing, ui.StatusDone}
	if !reflect.DeepEqual(sink.statuses, want) {
		t.Fatalf("progress %v, want %v", sink.statuses, want)
	}
}

func TestFixFileByRule(t *testing.T) {
	path := setupProject(t)
	run := &fixRun{cmd: testCommand(), sink: ui.NopSink{}, ruleID: "DuplicateImport"}
	report, err := run.file(context.Background(), path)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !reflect.DeepEqual(report.fixed, []string{"DuplicateImport"}) {
		t.Fatalf("unexpected fixed list %v", report.fixed)
	}
	if got := readFile(t, path); got != "import a.B \nclass X {}\n" {
		t.Fatalf("unexpected file content %q", got)
	}
}

func TestFixFileUnknownOccurrence(t *testing.T) {
	path := setupProject(t)
	run := &fixRun{cmd: testCommand(), sink: ui.NopSink{}, ids: []int{7}}
	if _, err := run.file(context.Background(), path); err == nil {
		t.Fatal("expected an error for unknown ids")
	}
	if got := readFile(t, path); got != demoText {
		t.Fatalf("document changed: %q", got)
	}
}

func TestSuppressLineCommand(t *testing.T) {
	path := setupProject(t)
	cmd := testCommand()
	cmd.Flags().Int("line", 2, "")
	cmd.Flags().String("rule", "DuplicateImport", "")
	cmd.Flags().String("scope", "line", "")
	cmd.Flags().Bool("dry-run", false, "")
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runSuppress(cmd, []string{path}); err != nil {
		t.Fatalf("suppress: %v", err)
	}
	want := "import a.B \n@SuppressWarnings(['DuplicateImport'])\nimport a.B\nclass X {}\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("unexpected file content %q", got)
	}
	if !strings.Contains(out.String(), ":2: insert @SuppressWarnings(['DuplicateImport'])") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSuppressAlwaysWritesManifest(t *testing.T) {
	path := setupProject(t)
	cmd := testCommand()
	cmd.Flags().Int("line", 2, "")
	cmd.Flags().String("rule", "DuplicateImport", "")
	cmd.Flags().String("scope", "always", "")
	cmd.Flags().Bool("dry-run", false, "")
	cmd.SetOut(&bytes.Buffer{})

	if err := runSuppress(cmd, []string{path}); err != nil {
		t.Fatalf("suppress: %v", err)
	}
	if got := readFile(t, path); got != demoText {
		t.Fatalf("always scope must not edit the document: %q", got)
	}
	manifest := readFile(t, filepath.Join(filepath.Dir(path), "lintfix.toml"))
	if !strings.Contains(manifest, `"DuplicateImport"`) {
		t.Fatalf("rule not persisted:\n%s", manifest)
	}

	doc, err := openDocument(testCommand(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	for _, d := range doc.ws.Diagnostics(doc.uri) {
		if d.Code == "DuplicateImport-1" {
			t.Fatal("disabled rule still reported")
		}
	}
}

func TestSuppressDryRunLeavesFile(t *testing.T) {
	path := setupProject(t)
	cmd := testCommand()
	cmd.Flags().Int("line", 1, "")
	cmd.Flags().String("rule", "TrailingWhitespace", "")
	cmd.Flags().String("scope", "file", "")
	cmd.Flags().Bool("dry-run", true, "")
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runSuppress(cmd, []string{path}); err != nil {
		t.Fatalf("suppress: %v", err)
	}
	if got := readFile(t, path); got != demoText {
		t.Fatalf("dry run changed the file: %q", got)
	}
	if !strings.Contains(out.String(), ":1: insert @SuppressWarnings(['TrailingWhitespace'])") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFindDiagnostic(t *testing.T) {
	diagnostics := []diag.Diagnostic{
		{Code: "Foo", Range: diag.Range{Start: diag.Position{Line: 2}}},
		{Code: "Foo-3", Range: diag.Range{Start: diag.Position{Line: 1}}},
		{Code: "Foo-4", Range: diag.Range{Start: diag.Position{Line: 2}}},
	}
	d, err := findDiagnostic(diagnostics, "Foo", 2)
	if err != nil || d.Code != "Foo-4" {
		t.Fatalf("got %+v %v", d, err)
	}
	if _, err := findDiagnostic(diagnostics, "Bar", 2); err == nil {
		t.Fatal("expected an error for a missing rule")
	}
}

func TestRuleIDsAndOccurrences(t *testing.T) {
	diagnostics := []diag.Diagnostic{
		{Code: "B-0"}, {Code: "A-1"}, {Code: "B-2"}, {Code: "broken"},
	}
	if got := ruleIDs(diagnostics); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("ruleIDs = %v", got)
	}
	got := byOccurrence(diagnostics, []int{2, 0, 9})
	if len(got) != 2 || got[0].Code != "B-0" || got[1].Code != "B-2" {
		t.Fatalf("byOccurrence = %+v", got)
	}
}

func TestRenderActionsAligns(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	var out bytes.Buffer
	renderActions(&out, []actionRow{
		{Position: "1:11", Code: "TrailingWhitespace-0", Kind: "apply-one", Title: "Fix: Remove trailing whitespace"},
		{Position: "12:1", Code: "Ünïcode-1", Kind: "suppress-line", Title: "Ignore Ünïcode for this line"},
	})
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected output %q", out.String())
	}
	if lines[0] != "1:11  TrailingWhitespace-0  apply-one      Fix: Remove trailing whitespace" {
		t.Fatalf("unexpected row %q", lines[0])
	}
	if lines[1] != "12:1  Ünïcode-1             suppress-line  Ignore Ünïcode for this line" {
		t.Fatalf("unexpected row %q", lines[1])
	}

	out.Reset()
	renderActions(&out, nil)
	if out.String() != "no actions\n" {
		t.Fatalf("unexpected empty output %q", out.String())
	}
}

func TestVersionJSON(t *testing.T) {
	var out bytes.Buffer
	if err := renderVersionJSON(&out, versionInfo{Version: "1.2.3"}, versionOptions{showHash: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "lintfix" || payload.Version != "1.2.3" || payload.GitCommit != "unknown" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(payload.Commands) != 4 {
		t.Fatalf("expected the four commands, got %v", payload.Commands)
	}
}

func TestDiagJSON(t *testing.T) {
	path := setupProject(t)
	cmd := testCommand()
	cmd.Flags().String("format", "json", "")
	cmd.Flags().Bool("context", false, "")
	cmd.Flags().Bool("suggest", true, "")
	cmd.Flags().Bool("fullpath", true, "")
	cmd.Flags().Int("jobs", 1, "")
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runDiagnose(cmd, []string{path}); err != nil {
		t.Fatalf("diag: %v", err)
	}
	var payload struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code  string   `json:"code"`
			Fixes []string `json:"fixes"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if payload.Count != 2 || payload.Diagnostics[1].Code != "DuplicateImport-1" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(payload.Diagnostics[1].Fixes) != 1 || payload.Diagnostics[1].Fixes[0] != "Remove duplicate import" {
		t.Fatalf("unexpected fixes %v", payload.Diagnostics[1].Fixes)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"ON", uiModeOn, false},
		{" off ", uiModeOff, false},
		{"maybe", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeOff, 5) || !shouldUseTUI(uiModeOn, 1) {
		t.Fatal("explicit modes must win")
	}
	if shouldUseTUI(uiModeAuto, 1) {
		t.Fatal("auto must stay off for a single file")
	}
}
