package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
	"github.com/PieMyth/CloudCluster/internal/logger"
)

// Ensure FetchService implements the interface.
var _ driving.FetchService = (*FetchService)(nil)

// FetchService discovers and downloads dataset archives.
type FetchService struct {
	index      driven.DatasetIndex
	downloader driven.Downloader
	workers    int
}

// NewFetchService creates a fetch service running at most workers downloads at once.
func NewFetchService(index driven.DatasetIndex, downloader driven.Downloader, workers int) *FetchService {
	if workers < 1 {
		workers = 1
	}
	return &FetchService{index: index, downloader: downloader, workers: workers}
}

// List returns the archives matching the request.
func (s *FetchService) List(ctx context.Context, req driving.FetchRequest) ([]domain.DatasetLink, error) {
	for _, k := range req.Kinds {
		if !k.IsValid() {
			return nil, fmt.Errorf("%w: record kind %q", domain.ErrUnsupportedType, k)
		}
	}

	all, err := s.index.List(ctx)
	if err != nil {
		return nil, err
	}

	links := filterKinds(all, req.Kinds)
	if req.LatestOnly {
		links = latestPerCity(links)
	}
	if req.Limit > 0 && len(links) > req.Limit {
		links = links[:req.Limit]
	}
	return links, nil
}

func filterKinds(links []domain.DatasetLink, kinds []domain.RecordKind) []domain.DatasetLink {
	if len(kinds) == 0 {
		return links
	}
	want := make(map[domain.RecordKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	out := make([]domain.DatasetLink, 0, len(links))
	for _, l := range links {
		if want[l.Kind] {
			out = append(out, l)
		}
	}
	return out
}

// latestPerCity keeps the newest snapshot of each kind for every city,
// preserving the input order.
func latestPerCity(links []domain.DatasetLink) []domain.DatasetLink {
	type cityKind struct {
		country, region, city string
		kind                  domain.RecordKind
	}
	newest := make(map[cityKind]string)
	for _, l := range links {
		key := cityKind{l.Country, l.Region, l.City, l.Kind}
		if l.Date > newest[key] {
			newest[key] = l.Date
		}
	}
	out := make([]domain.DatasetLink, 0, len(newest))
	for _, l := range links {
		if newest[cityKind{l.Country, l.Region, l.City, l.Kind}] == l.Date {
			out = append(out, l)
		}
	}
	return out
}

// Fetch downloads matching archives into req.DestDir. Files that already
// exist are skipped. The first failed download cancels the rest.
func (s *FetchService) Fetch(ctx context.Context, req driving.FetchRequest) ([]driving.FetchedFile, error) {
	if req.DestDir == "" {
		return nil, fmt.Errorf("%w: destination directory is required", domain.ErrInvalidInput)
	}
	links, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}

	fetched := make([]driving.FetchedFile, len(links))
	done := make([]bool, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, link := range links {
		dest := filepath.Join(req.DestDir, filepath.FromSlash(link.RelPath()))
		g.Go(func() error {
			f := driving.FetchedFile{Link: link, Path: dest}
			if info, err := os.Stat(dest); err == nil {
				f.Skipped = true
				f.Bytes = info.Size()
				logger.Debug("skipping %s: already downloaded", dest)
			} else {
				n, err := s.downloader.Download(gctx, link, dest)
				if err != nil {
					logger.Warn("download of %s failed: %v", link.RelPath(), err)
					return fmt.Errorf("download %s: %w", link.URL, err)
				}
				f.Bytes = n
				logger.Info("downloaded %s (%d bytes)", link.RelPath(), n)
			}
			fetched[i] = f
			done[i] = true
			return nil
		})
	}
	err = g.Wait()

	out := make([]driving.FetchedFile, 0, len(links))
	for i, ok := range done {
		if ok {
			out = append(out, fetched[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, err
}
