// Package services defines shared utilities consumed by the reconciliation
// workflows and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, workflow names, and item IDs for
//     logging and the run ledger.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     batch-fatal missing tool apart from a per-item fetch or transform failure.
//
// Use these helpers when wiring new workflow logic so error handling and
// observability stay uniform across the pipeline.
package services
