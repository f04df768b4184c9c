// Package trace records spans and point events for lintfix operations.
//
// # Usage
//
// Enable tracing via command-line flags or lintfix.toml:
//
//	lintfix lsp --trace=- --trace-level=detail
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failed operations
//   - LevelPhase: Server lifecycle and executed commands
//   - LevelDetail: Steps inside a command (lint runs, edits, removals)
//   - LevelDebug: Everything
//
// # Scopes
//
//   - ScopeServer: Server lifecycle and CLI entry points
//   - ScopeCommand: One code-action request or executed command
//   - ScopeStep: A step within a command (fixer call, edit, revalidation)
//   - ScopeDetail: Per-diagnostic detail
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeCommand, "fix.apply", 0)
//	defer span.End("")
package trace
