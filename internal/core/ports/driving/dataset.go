package driving

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// StageRequest moves downloaded CSV files into a flat, indexed directory.
type StageRequest struct {
	SourceDir string
	DestDir   string

	// Start is the first index assigned.
	Start int
}

// ConvertRequest converts staged CSV files into JSON record arrays.
type ConvertRequest struct {
	InputDir  string
	OutputDir string
	Kind      domain.RecordKind

	// Indices restricts conversion to these staged files when non-empty.
	Indices []int
}

// DatasetService prepares dataset files for loading.
type DatasetService interface {
	// Stage renames every CSV under SourceDir into DestDir as <index><name>.
	Stage(ctx context.Context, req StageRequest) ([]domain.StagedFile, error)

	// Convert writes <index><kind>.json for each matching <index><kind>.csv.
	Convert(ctx context.Context, req ConvertRequest) ([]domain.ConvertResult, error)

	// Report summarises every JSON dataset file in dir.
	Report(ctx context.Context, dir string) ([]domain.FileSummary, error)
}
