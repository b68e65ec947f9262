package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
	"github.com/PieMyth/CloudCluster/internal/logger"
)

// Ensure DatasetService implements the interface.
var _ driving.DatasetService = (*DatasetService)(nil)

const mebibyte = 1 << 20

// DatasetService stages, converts and inspects dataset files on disk.
type DatasetService struct {
	opener driven.RecordSourceOpener
	sinks  driven.RecordSinkFactory
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(opener driven.RecordSourceOpener, sinks driven.RecordSinkFactory) *DatasetService {
	return &DatasetService{opener: opener, sinks: sinks}
}

// Stage moves every CSV under SourceDir into DestDir, prefixing each name
// with a counter that starts at req.Start and increases across all files in
// lexical walk order. Existing destination files are never overwritten.
func (s *DatasetService) Stage(ctx context.Context, req driving.StageRequest) ([]domain.StagedFile, error) {
	if req.SourceDir == "" || req.DestDir == "" {
		return nil, fmt.Errorf("%w: source and destination directories are required", domain.ErrInvalidInput)
	}
	if req.Start < 0 {
		return nil, fmt.Errorf("%w: start index must not be negative", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(req.DestDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	var sources []string
	err := filepath.WalkDir(req.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != req.SourceDir && samePath(path, req.DestDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", req.SourceDir, err)
	}

	staged := make([]domain.StagedFile, 0, len(sources))
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return staged, err
		}
		index := req.Start + i
		dest := filepath.Join(req.DestDir, fmt.Sprintf("%d%s", index, filepath.Base(src)))
		if _, err := os.Lstat(dest); err == nil {
			return staged, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, dest)
		}
		if err := moveFile(src, dest); err != nil {
			return staged, fmt.Errorf("move %s: %w", src, err)
		}
		logger.Debug("staged %s -> %s", src, dest)
		staged = append(staged, domain.StagedFile{From: src, To: dest, Index: index})
	}
	return staged, nil
}

func samePath(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	return errA == nil && errB == nil && aa == bb
}

// moveFile renames src to dest, copying across filesystems when needed.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return os.Remove(src)
}

// Convert writes <index><kind>.json into OutputDir for every staged
// <index><kind>.csv in InputDir, in index order.
func (s *DatasetService) Convert(ctx context.Context, req driving.ConvertRequest) ([]domain.ConvertResult, error) {
	if req.Kind != "" && !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: record kind %q", domain.ErrUnsupportedType, req.Kind)
	}
	files, err := datasetFiles(req.InputDir, "csv")
	if err != nil {
		return nil, err
	}

	wanted := make(map[int]bool, len(req.Indices))
	for _, idx := range req.Indices {
		wanted[idx] = true
	}

	var results []domain.ConvertResult
	for _, f := range files {
		if req.Kind != "" && f.kind != req.Kind {
			continue
		}
		if len(wanted) > 0 && !wanted[f.index] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		dest := filepath.Join(req.OutputDir, domain.DatasetFileName(f.index, f.kind, "json"))
		n, err := s.convertFile(ctx, f.path, dest)
		if err != nil {
			return results, err
		}
		logger.Info("converted %s (%d records)", filepath.Base(f.path), n)
		results = append(results, domain.ConvertResult{Source: f.path, Destination: dest, Records: n})
	}
	return results, nil
}

func (s *DatasetService) convertFile(ctx context.Context, src, dest string) (int, error) {
	in, err := s.opener.Open(ctx, src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := s.sinks.Create(dest)
	if err != nil {
		return 0, err
	}

	n := 0
	for {
		rec, err := in.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			err = out.Write(rec)
		}
		if err != nil {
			_ = out.Abort()
			return n, err
		}
		n++
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("write %s: %w", dest, err)
	}
	return n, nil
}

// Report summarises every JSON dataset file in dir.
func (s *DatasetService) Report(ctx context.Context, dir string) ([]domain.FileSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var summaries []domain.FileSummary
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		summary, err := s.summarise(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Index != summaries[j].Index {
			return summaries[i].Index < summaries[j].Index
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

func (s *DatasetService) summarise(ctx context.Context, path string) (domain.FileSummary, error) {
	summary := domain.FileSummary{Name: filepath.Base(path), Index: -1}
	if index, kind, _, ok := domain.ParseDatasetFileName(summary.Name); ok {
		summary.Index = index
		summary.Kind = kind.String()
	}

	info, err := os.Stat(path)
	if err != nil {
		return summary, fmt.Errorf("stat %s: %w", path, err)
	}
	summary.SizeMiB = info.Size() / mebibyte

	src, err := s.opener.Open(ctx, path)
	if err != nil {
		return summary, err
	}
	defer src.Close()

	for {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}
		if summary.Records == 0 {
			if loc, ok := rec.Get("host_location"); ok {
				if str, ok := loc.(string); ok {
					summary.HostLocation = str
				}
			}
		}
		summary.Records++
	}
	return summary, nil
}

type datasetFile struct {
	path  string
	index int
	kind  domain.RecordKind
}

// datasetFiles lists <index><kind>.<ext> files in dir ordered by index then kind.
func datasetFiles(dir, ext string) ([]datasetFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []datasetFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		index, kind, fext, ok := domain.ParseDatasetFileName(e.Name())
		if !ok || !strings.EqualFold(fext, ext) {
			continue
		}
		files = append(files, datasetFile{path: filepath.Join(dir, e.Name()), index: index, kind: kind})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].index != files[j].index {
			return files[i].index < files[j].index
		}
		return files[i].kind < files[j].kind
	})
	return files, nil
}
