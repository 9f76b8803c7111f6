// Package pipeline executes one asset run end to end.
//
// A run takes the store lock, loads the item collection and size profiles,
// and then applies the requested operations in a fixed order: Reset, Check,
// Sync-Audio (video extraction), Sync-Audio (direct download), Sync-Images.
// The collection is saved after every operation so a later failure never
// loses earlier work. The manifest is fetched once, only when a sync
// operation is requested, and the scratch directory is removed when the run
// ends.
//
// A missing external tool stops only the batch that needed it; the run goes
// on and reports every such error joined together.
package pipeline
