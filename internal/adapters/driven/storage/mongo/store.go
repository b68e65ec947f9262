package mongo

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// Ensure Store and collection implement the interfaces.
var (
	_ driven.CollectionProvider = (*Store)(nil)
	_ driven.CollectionCounter  = (*Store)(nil)
	_ driven.Collection         = (*collection)(nil)
)

const pingTimeout = 10 * time.Second

// Store is a connected MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	target string
}

// Connect dials the deployment named by settings.URI and verifies it with a ping.
func Connect(ctx context.Context, settings domain.StoreSettings) (*Store, error) {
	if settings.URI == "" {
		return nil, fmt.Errorf("%w: mongo connection string is not configured", domain.ErrStoreUnavailable)
	}
	if settings.Database == "" {
		return nil, fmt.Errorf("%w: database name is required", domain.ErrInvalidInput)
	}

	opts := options.Client().ApplyURI(settings.URI).SetAppName("cloudcluster")
	wc, err := ParseWriteConcern(settings.WriteConcern)
	if err != nil {
		return nil, err
	}
	if wc != nil {
		opts.SetWriteConcern(wc)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping: %w", domain.ErrStoreUnavailable, err)
	}

	return &Store{
		client: client,
		db:     client.Database(settings.Database),
		target: Target(opts.Hosts, settings.Database),
	}, nil
}

// Target names a deployment by its hosts and database. Credentials and
// connection options never appear in it.
func Target(hosts []string, database string) string {
	sorted := slices.Clone(hosts)
	slices.Sort(sorted)
	return "mongo:" + strings.Join(sorted, ",") + "/" + database
}

// Target identifies the connected deployment and database.
func (s *Store) Target() string {
	return s.target
}

// ParseWriteConcern accepts "majority", a non-negative replica count, or
// an empty string for the connection string default (nil).
func ParseWriteConcern(s string) (*writeconcern.WriteConcern, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.EqualFold(s, "majority"):
		return writeconcern.Majority(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: write concern %q", domain.ErrInvalidInput, s)
	}
	return &writeconcern.WriteConcern{W: n}, nil
}

// Collection returns a handle on the named collection.
func (s *Store) Collection(_ context.Context, name string) (driven.Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}
	return &collection{coll: s.db.Collection(name)}, nil
}

// CountDocuments returns the number of documents in a collection.
func (s *Store) CountDocuments(ctx context.Context, name string) (int64, error) {
	n, err := s.db.Collection(name).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", name, err)
	}
	return n, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// collection implements driven.Collection.
type collection struct {
	coll *mongo.Collection
}

// Name returns the collection name.
func (c *collection) Name() string {
	return c.coll.Name()
}

// InsertMany writes the batch with one ordered insert.
func (c *collection) InsertMany(ctx context.Context, records []domain.Record) (domain.Ack, error) {
	docs := make([]bson.D, len(records))
	for i, rec := range records {
		docs[i] = ToDocument(rec)
	}

	res, err := c.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		inserted := 0
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
		return domain.Ack{Inserted: inserted}, err
	}
	return domain.Ack{Inserted: len(res.InsertedIDs)}, nil
}
