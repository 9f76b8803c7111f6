// Package history keeps a SQLite ledger of reconciliation runs.
//
// Each run gets a row in runs; every engine decision taken during the run is
// appended to events. The ledger implements reconcile.Recorder and is opened
// once per process. Schema changes ship as numbered files under migrations/
// and are applied in order on Open.
package history
