// Package diag defines the diagnostic model shared by the code-action core.
//
// # Data model
//
// Diagnostic is issued by the external linter and never mutated afterwards.
// It carries:
//
//   - Code – wire identifier "<RuleId>-<OccurrenceId>" (see code.go). The
//     rule id selects behaviour; the occurrence id addresses one finding
//     within a single lint run.
//   - Range – zero-based LSP coordinates.
//   - Severity – Error, Warning, Information or Hint, numbered like LSP.
//   - Message and Source – human oriented text and the linter name.
//
// FixSuggestion and Catalog describe the fixes the linter can perform for a
// rule. They are owned by the linter; this package only transports them.
//
// Bag is the live diagnostic set of one open document. A new lint run resets
// it wholesale; suppression and fix operations remove entries from it.
//
// # Scope
//
// Package diag does no IO. Decoding linter output lives in internal/linter,
// publishing lives in internal/lsp.
package diag
