// Package main hosts the tinals-assets CLI.
//
// The Cobra command tree resolves configuration, builds the logger and the
// optional run history ledger, and hands the requested operations to the
// pipeline runner. Read-only commands (status, profiles, history, doctor)
// inspect the cache without taking the store lock; watch repeats runs on a
// cron schedule until interrupted.
//
// New behavior belongs in the internal packages first; this package only
// maps flags onto pipeline options and renders results.
package main
