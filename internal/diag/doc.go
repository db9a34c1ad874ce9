// Package diag defines the diagnostic model shared by the lexer, the
// reconciliation engine and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error.
//   - Code – numeric identifier (see codes.go) with a stable ID ("ANN2001")
//     and a machine-readable slug ("DeprecatedAnnotation").
//   - Message – human oriented text, already substituted.
//   - Primary – the source.Span the finding points at.
//   - Fixable / Fixed – whether the fixer can resolve it and whether it did.
//
// # Emitting diagnostics
//
// Producers depend on Reporter only. BagReporter collects into a Bag that
// supports sorting, deduplication and limits; DedupReporter filters repeats
// before forwarding.
//
// Package diag does no formatting or IO. Rendering lives in internal/diagfmt.
package diag
