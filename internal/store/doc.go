// Package store reads and writes the event item collection.
//
// Items keep unknown fields and key order across a load/save cycle. Managed
// asset fields are exposed as AssetRef values (Absent or Present(path)) and
// only become empty strings when written back. Saves are atomic full
// replacements, and AcquireLock serializes runs against the same store.
package store
