// Package source opens dataset files as record streams, choosing the decoder
// from the file extension.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PieMyth/CloudCluster/internal/adapters/driven/source/csvfile"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/source/jsonfile"
	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// Ensure Opener implements the interface.
var _ driven.RecordSourceOpener = (*Opener)(nil)

// Opener opens .json and .csv dataset files.
type Opener struct {
	clean domain.CleanSettings
}

// NewOpener creates an opener. clean applies to CSV files only.
func NewOpener(clean domain.CleanSettings) *Opener {
	return &Opener{clean: clean}
}

// Open returns a record source for path.
func (o *Opener) Open(ctx context.Context, path string) (driven.RecordSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		r, err := jsonfile.Open(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	case ".csv":
		r, err := csvfile.Open(path, o.clean)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, &domain.SourceReadError{
			Path: path,
			Err:  fmt.Errorf("%w: file extension %q", domain.ErrUnsupportedType, ext),
		}
	}
}
