// Package mongo provides a MongoDB-backed document store.
//
// Records are converted to ordered BSON documents so field order survives
// the round trip. Batches are written with one ordered InsertMany call; the
// write concern comes from settings ("majority", a replica count, or the
// connection string default).
package mongo
