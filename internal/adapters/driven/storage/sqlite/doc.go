// Package sqlite provides a SQLite-backed document store and checkpoint store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database file holds:
//
//   - documents: records loaded with the sqlite backend, stored as JSON
//   - load_checkpoints: confirmed load offsets, used by every backend
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.cloudcluster/data/cloudcluster.db
package sqlite
