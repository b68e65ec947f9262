package driven

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// DatasetIndex discovers downloadable dataset archives.
type DatasetIndex interface {
	List(ctx context.Context) ([]domain.DatasetLink, error)
}

// Downloader fetches one archive and writes its decompressed content to dest.
type Downloader interface {
	// Download returns the number of decompressed bytes written.
	Download(ctx context.Context, link domain.DatasetLink, dest string) (int64, error)
}
