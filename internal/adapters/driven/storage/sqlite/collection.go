package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// collection implements driven.Collection over the documents table.
type collection struct {
	store *Store
	name  string
}

var _ driven.Collection = (*collection)(nil)

// Name returns the collection name.
func (c *collection) Name() string {
	return c.name
}

// InsertMany writes the batch in one transaction; either every record is
// stored or none is.
func (c *collection) InsertMany(ctx context.Context, records []domain.Record) (domain.Ack, error) {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO documents (collection, body) VALUES (?, ?)")
	if err != nil {
		return domain.Ack{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return domain.Ack{}, fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, c.name, string(body)); err != nil {
			return domain.Ack{}, fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Ack{}, fmt.Errorf("committing batch: %w", err)
	}
	return domain.Ack{Inserted: len(records)}, nil
}

// Documents returns every document in the collection in insertion order.
func (s *Store) Documents(ctx context.Context, name string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM documents WHERE collection = ? ORDER BY id", name)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
