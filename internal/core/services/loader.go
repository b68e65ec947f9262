package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
	"github.com/PieMyth/CloudCluster/internal/logger"
)

// Ensure LoadService implements the interface.
var _ driving.LoadService = (*LoadService)(nil)

// LoadService plans and runs bulk loads, recording a checkpoint after every
// acknowledged batch so an aborted run can resume.
//
// Loads are not idempotent: the store has no dedup key, so loading a file
// again without Resume inserts its records a second time.
type LoadService struct {
	stores      driven.CollectionProvider
	opener      driven.RecordSourceOpener
	checkpoints driven.CheckpointStore
	loader      *BatchLoader
	now         func() time.Time
}

// NewLoadService creates a new load service.
func NewLoadService(
	stores driven.CollectionProvider,
	opener driven.RecordSourceOpener,
	checkpoints driven.CheckpointStore,
) *LoadService {
	return &LoadService{
		stores:      stores,
		opener:      opener,
		checkpoints: checkpoints,
		loader:      NewBatchLoader(),
		now:         time.Now,
	}
}

// Plan builds one job per index per kind. Indices come from the request,
// then from settings, then from the JSON files present in the JSON dir.
func (s *LoadService) Plan(settings *domain.AppSettings, req driving.PlanRequest) (domain.LoadPlan, error) {
	plan := domain.LoadPlan{RunID: uuid.NewString()}
	if settings == nil {
		return plan, fmt.Errorf("%w: settings required", domain.ErrInvalidInput)
	}

	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = domain.AllKinds()
	}

	for _, kind := range kinds {
		cs, err := settings.CollectionFor(kind)
		if err != nil {
			return plan, err
		}

		batchSize := cs.BatchSize
		if req.BatchSize > 0 {
			batchSize = req.BatchSize
		}
		if batchSize < 1 {
			return plan, fmt.Errorf("%w: %s batch size must be at least 1", domain.ErrInvalidInput, kind)
		}

		indices := req.Indices
		if len(indices) == 0 {
			indices = cs.Indices
		}
		if len(indices) == 0 {
			indices, err = discoverIndices(settings.Paths.JSONDir, kind)
			if err != nil {
				return plan, err
			}
		}

		for _, idx := range indices {
			plan.Jobs = append(plan.Jobs, domain.LoadJob{
				Collection: cs.Name,
				Kind:       kind,
				Path:       filepath.Join(settings.Paths.JSONDir, domain.DatasetFileName(idx, kind, "json")),
				BatchSize:  batchSize,
				Resume:     req.Resume,
			})
		}
	}

	if len(plan.Jobs) == 0 {
		return plan, fmt.Errorf("%w: no dataset files to load in %s", domain.ErrNotFound, settings.Paths.JSONDir)
	}
	return plan, nil
}

// discoverIndices lists the indices of <index><kind>.json files in dir.
func discoverIndices(dir string, kind domain.RecordKind) ([]int, error) {
	files, err := datasetFiles(dir, "json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var indices []int
	for _, f := range files {
		if f.kind == kind {
			indices = append(indices, f.index)
		}
	}
	return indices, nil
}

// LoadFile loads one source file into one collection.
func (s *LoadService) LoadFile(
	ctx context.Context,
	job domain.LoadJob,
	observe driving.BatchObserver,
) (*domain.LoadResult, error) {
	return s.loadFile(ctx, uuid.NewString(), job, observe)
}

//nolint:gocyclo // Sequential load steps with distinct failure modes
func (s *LoadService) loadFile(
	ctx context.Context,
	runID string,
	job domain.LoadJob,
	observe driving.BatchObserver,
) (*domain.LoadResult, error) {
	start := s.now()
	source := filepath.Base(job.Path)

	cp := domain.Checkpoint{
		Target:     s.stores.Target(),
		Collection: job.Collection,
		Source:     source,
		RunID:      runID,
	}

	if job.Resume {
		saved, err := s.checkpoints.Get(ctx, cp.Key())
		switch {
		case err == nil:
			if saved.Complete {
				logger.Info("%s: already loaded into %s (%d records)", source, job.Collection, saved.Offset)
				return &domain.LoadResult{
					Collection:      job.Collection,
					Source:          job.Path,
					Skipped:         saved.Offset,
					Offset:          saved.Offset,
					AlreadyComplete: true,
					Complete:        true,
				}, nil
			}
			cp.Offset = saved.Offset
			cp.Batches = saved.Batches
		case errors.Is(err, domain.ErrNotFound):
		default:
			return nil, fmt.Errorf("get checkpoint: %w", err)
		}
	}

	coll, err := s.stores.Collection(ctx, job.Collection)
	if err != nil {
		return nil, fmt.Errorf("%w: collection %s: %w", domain.ErrStoreUnavailable, job.Collection, err)
	}

	src, err := s.opener.Open(ctx, job.Path)
	if err != nil {
		var sre *domain.SourceReadError
		if !errors.As(err, &sre) {
			err = &domain.SourceReadError{Path: job.Path, Err: err}
		}
		return nil, err
	}
	defer src.Close()

	if !job.Resume {
		cp.UpdatedAt = s.now()
		if err := s.checkpoints.Save(ctx, cp); err != nil {
			return nil, fmt.Errorf("reset checkpoint: %w", err)
		}
	}

	logger.Debug("loading %s into %s (batch size %d, skipping %d)", job.Path, job.Collection, job.BatchSize, cp.Offset)

	res, err := s.loader.Load(ctx, src, coll, job.BatchSize, LoadOptions{
		SourceName:    job.Path,
		Skip:          cp.Offset,
		FirstSequence: cp.Batches,
		OnBatch: func(ctx context.Context, ack domain.BatchAck) error {
			cp.Offset = ack.End()
			cp.Batches = ack.Sequence + 1
			cp.UpdatedAt = s.now()
			if err := s.checkpoints.Save(ctx, cp); err != nil {
				return err
			}
			if observe != nil {
				observe(ack)
			}
			return nil
		},
	})
	res.Duration = s.now().Sub(start)
	if err != nil {
		logger.Error(err, "load of %s stopped at record %d", source, res.Offset)
		return &res, err
	}

	cp.Offset = res.Offset
	cp.Complete = true
	cp.UpdatedAt = s.now()
	if err := s.checkpoints.Save(ctx, cp); err != nil {
		return &res, fmt.Errorf("save checkpoint: %w", err)
	}
	res.Complete = true

	logger.Info("%s: %d records in %d batches into %s", source, res.Records, res.Batches, job.Collection)
	return &res, nil
}

// Run executes every job in order and stops at the first failure.
func (s *LoadService) Run(
	ctx context.Context,
	plan domain.LoadPlan,
	observe driving.BatchObserver,
) ([]domain.LoadResult, error) {
	runID := plan.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger.Debug("load run %s: %d jobs", runID, len(plan.Jobs))

	results := make([]domain.LoadResult, 0, len(plan.Jobs))
	for _, job := range plan.Jobs {
		res, err := s.loadFile(ctx, runID, job, observe)
		if res != nil {
			results = append(results, *res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Checkpoints lists saved load progress.
func (s *LoadService) Checkpoints(ctx context.Context) ([]domain.Checkpoint, error) {
	return s.checkpoints.List(ctx)
}

// ResetCheckpoint forgets saved progress for one source in the configured store.
func (s *LoadService) ResetCheckpoint(ctx context.Context, collection, source string) error {
	key := domain.CheckpointKey{Target: s.stores.Target(), Collection: collection, Source: source}
	if _, err := s.checkpoints.Get(ctx, key); err != nil {
		return fmt.Errorf("checkpoint %s/%s: %w", collection, source, err)
	}
	return s.checkpoints.Delete(ctx, key)
}

// Count returns the number of documents in a collection.
func (s *LoadService) Count(ctx context.Context, collection string) (int64, error) {
	counter, ok := s.stores.(driven.CollectionCounter)
	if !ok {
		return 0, fmt.Errorf("%w: store cannot count documents", domain.ErrUnsupportedType)
	}
	return counter.CountDocuments(ctx, collection)
}
