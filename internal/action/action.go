package action

import (
	"lintfix/internal/diag"
)

// Category classifies an action.
type Category uint8

const (
	CategoryApplyOne Category = iota + 1
	CategoryApplyInFile
	CategorySuppressLine
	CategorySuppressFile
	CategorySuppressAlways
)

func (c Category) String() string {
	switch c {
	case CategoryApplyOne:
		return "apply-one"
	case CategoryApplyInFile:
		return "apply-in-file"
	case CategorySuppressLine:
		return "suppress-line"
	case CategorySuppressFile:
		return "suppress-file"
	case CategorySuppressAlways:
		return "suppress-always"
	default:
		return "unknown"
	}
}

// Command names exposed to the client. Every command takes
// [diagnostic, documentUri].
const (
	// CommandApplySingleFix fixes the one occurrence.
	CommandApplySingleFix = "lintfix.applySingleFix"
	// CommandApplyFileFix fixes every occurrence of the rule in the document.
	CommandApplyFileFix = "lintfix.applyFileFix"
	// CommandAddLineSuppression annotates the diagnostic's line.
	CommandAddLineSuppression = "lintfix.addLineSuppression"
	// CommandAddFileSuppression takes a third argument, the scope: "file"
	// annotates the top of the document, "always" disables the rule in
	// lintfix.toml.
	CommandAddFileSuppression = "lintfix.addFileSuppression"
)

// Commands lists every command name the server executes.
var Commands = []string{
	CommandApplySingleFix,
	CommandApplyFileFix,
	CommandAddLineSuppression,
	CommandAddFileSuppression,
}

// Scope arguments carried by CommandAddFileSuppression.
const (
	scopeFile   = "file"
	scopeAlways = "always"
)

// Command is the invocation payload attached to an action.
type Command struct {
	Title     string `json:"title"`
	Name      string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// Action is a proposable remediation. The concrete variants are ApplyOne,
// ApplyInFile, SuppressLine, SuppressFile and SuppressAlways.
type Action interface {
	Title() string
	Category() Category
	Subject() Target
	Preferred() bool
	Command() Command
	isAction()
}

// Target identifies the diagnostic and document an action was built for.
type Target struct {
	URI        string
	Diagnostic diag.Diagnostic
}

// Diagnostics returns the diagnostics associated with the action.
func Diagnostics(a Action) []diag.Diagnostic {
	return []diag.Diagnostic{a.Subject().Diagnostic}
}

// ApplyOne fixes exactly the targeted occurrence.
type ApplyOne struct {
	Target
	Suggestion diag.FixSuggestion
}

// ApplyInFile fixes every occurrence of the rule in the document.
type ApplyInFile struct {
	Target
	Suggestion diag.FixSuggestion
}

// SuppressLine annotates the construct on the diagnostic's line.
type SuppressLine struct {
	Target
	RuleID string
}

// SuppressFile annotates the top of the document.
type SuppressFile struct {
	Target
	RuleID string
}

// SuppressAlways disables the rule persistently.
type SuppressAlways struct {
	Target
	RuleID string
}

func (a ApplyOne) Title() string      { return "Fix: " + a.Suggestion.Label }
func (a ApplyOne) Category() Category { return CategoryApplyOne }
func (a ApplyOne) Subject() Target    { return a.Target }
func (a ApplyOne) Preferred() bool    { return true }
func (a ApplyOne) Command() Command {
	return Command{Title: a.Title(), Name: CommandApplySingleFix, Arguments: []any{a.Diagnostic, a.URI}}
}
func (ApplyOne) isAction() {}

func (a ApplyInFile) Title() string      { return "Fix in file: " + a.Suggestion.Label }
func (a ApplyInFile) Category() Category { return CategoryApplyInFile }
func (a ApplyInFile) Subject() Target    { return a.Target }
func (a ApplyInFile) Preferred() bool    { return true }
func (a ApplyInFile) Command() Command {
	return Command{Title: a.Title(), Name: CommandApplyFileFix, Arguments: []any{a.Diagnostic, a.URI}}
}
func (ApplyInFile) isAction() {}

func (a SuppressLine) Title() string      { return "Ignore " + RuleLabel(a.RuleID) + " for this line" }
func (a SuppressLine) Category() Category { return CategorySuppressLine }
func (a SuppressLine) Subject() Target    { return a.Target }
func (a SuppressLine) Preferred() bool    { return false }
func (a SuppressLine) Command() Command {
	return Command{Title: a.Title(), Name: CommandAddLineSuppression, Arguments: []any{a.Diagnostic, a.URI}}
}
func (SuppressLine) isAction() {}

func (a SuppressFile) Title() string      { return "Ignore " + RuleLabel(a.RuleID) + " in this file" }
func (a SuppressFile) Category() Category { return CategorySuppressFile }
func (a SuppressFile) Subject() Target    { return a.Target }
func (a SuppressFile) Preferred() bool    { return false }
func (a SuppressFile) Command() Command {
	return Command{Title: a.Title(), Name: CommandAddFileSuppression, Arguments: []any{a.Diagnostic, a.URI, scopeFile}}
}
func (SuppressFile) isAction() {}

func (a SuppressAlways) Title() string      { return "Ignore " + RuleLabel(a.RuleID) + " everywhere" }
func (a SuppressAlways) Category() Category { return CategorySuppressAlways }
func (a SuppressAlways) Subject() Target    { return a.Target }
func (a SuppressAlways) Preferred() bool    { return false }
func (a SuppressAlways) Command() Command {
	return Command{Title: a.Title(), Name: CommandAddFileSuppression, Arguments: []any{a.Diagnostic, a.URI, scopeAlways}}
}
func (SuppressAlways) isAction() {}
