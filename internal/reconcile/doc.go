// Package reconcile decides, item by item, which cached assets must be
// materialized, discarded, or forgotten, and applies those decisions to the
// in-memory item collection.
//
// The Engine exposes four operations. SyncAudio and SyncImages compare items
// against the remote manifest and materialize what is missing (or everything
// when forced). Reset deletes cached files and clears their fields. Check
// clears fields whose file vanished from disk. None of them persist the
// collection; the caller saves after each operation.
//
// Every decision is counted in a Report and, when a Recorder is configured,
// emitted as an Event so runs can be audited later.
package reconcile
