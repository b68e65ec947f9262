// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Collection: Append-only batch writes into a named collection
//   - CollectionProvider: Resolves collections in the configured store
//   - RecordSource: Ordered, finite stream of records from one file
//   - RecordSourceOpener: Selects a RecordSource by file format
//   - CheckpointStore: Load progress persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the corresponding commands report them as unavailable:
//
//   - CollectionCounter: Document counts for a collection
//   - CollectionQuerier: Listing queries over a collection
//   - RecordSink: Writes converted records to disk
//   - DatasetIndex: Discovers downloadable dataset archives
//   - Downloader: Fetches and decompresses one archive
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
