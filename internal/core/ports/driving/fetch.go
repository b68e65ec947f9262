package driving

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// FetchRequest selects which archives to download.
type FetchRequest struct {
	Kinds      []domain.RecordKind
	LatestOnly bool

	// Limit caps the number of archives; zero means no limit.
	Limit int

	DestDir string
}

// FetchedFile is one archive written to disk.
type FetchedFile struct {
	Link  domain.DatasetLink
	Path  string
	Bytes int64

	// Skipped is true when the file already existed.
	Skipped bool
}

// FetchService discovers and downloads dataset archives.
type FetchService interface {
	// List returns the archives matching the request without downloading.
	List(ctx context.Context, req FetchRequest) ([]domain.DatasetLink, error)

	// Fetch downloads matching archives into req.DestDir.
	Fetch(ctx context.Context, req FetchRequest) ([]FetchedFile, error)
}
