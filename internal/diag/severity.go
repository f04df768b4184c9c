package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
// Значения совпадают с DiagnosticSeverity из LSP.
type Severity uint8

const (
	// SevError is for error diagnostics.
	SevError Severity = iota + 1
	// SevWarning is for warning diagnostics.
	SevWarning
	// SevInformation is for informational diagnostics.
	SevInformation
	// SevHint is for hints; hints are never suppressible.
	SevHint
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInformation:
		return "INFO"
	case SevHint:
		return "HINT"
	}
	return "UNKNOWN"
}

// Suppressible reports whether a suppression directive may target the severity.
func (s Severity) Suppressible() bool {
	return s == SevError || s == SevWarning || s == SevInformation
}

// ParseSeverity maps a SARIF level onto Severity.
func ParseSeverity(level string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return SevError, nil
	case "warning", "":
		return SevWarning, nil
	case "note", "info", "information":
		return SevInformation, nil
	case "none", "hint":
		return SevHint, nil
	}
	return 0, fmt.Errorf("unknown severity level %q", level)
}
