package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/PieMyth/CloudCluster/internal/adapters/driven/config/file"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/source"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/source/jsonfile"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/storage/memory"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/storage/mongo"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/storage/sqlite"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/web/insideairbnb"
	"github.com/PieMyth/CloudCluster/internal/adapters/driving/cli"
	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
	"github.com/PieMyth/CloudCluster/internal/core/services"
	"github.com/PieMyth/CloudCluster/internal/logger"
)

// bootstrap wires adapters into services for one command invocation.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if opts.Store != "" {
		settings.Store.Backend = opts.Store
	}

	opener := source.NewOpener(settings.Clean)
	client := insideairbnb.New(insideairbnb.Config{
		IndexURL:          settings.Fetch.IndexURL,
		RequestsPerSecond: settings.Fetch.RequestsPerSecond,
	})

	svc := &cli.Services{
		Settings: settingsService,
		Dataset:  services.NewDatasetService(opener, jsonfile.Factory{}),
		Fetch:    services.NewFetchService(client, client, settings.Fetch.Workers),
	}
	if !opts.NeedStore {
		return svc, nil
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	state, err := sqlite.NewStore(settings.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: local state: %w", domain.ErrStoreUnavailable, err)
	}

	stores, err := openStore(ctx, settings.Store, state)
	if err != nil {
		_ = state.Close(ctx)
		return nil, err
	}
	logger.Debug("store %s, checkpoints in %s", stores.Target(), state.Path())

	svc.Load = services.NewLoadService(stores, opener, state.CheckpointStore())
	svc.Query = services.NewQueryService(stores)
	svc.Close = func(ctx context.Context) error {
		var errs []error
		if stores != driven.CollectionProvider(state) {
			errs = append(errs, stores.Close(ctx))
		}
		errs = append(errs, state.Close(ctx))
		return errors.Join(errs...)
	}
	return svc, nil
}

// openStore returns the document store for the configured backend. The
// SQLite state database doubles as the document store for the sqlite backend.
func openStore(
	ctx context.Context,
	settings domain.StoreSettings,
	state *sqlite.Store,
) (driven.CollectionProvider, error) {
	switch settings.Backend {
	case domain.StoreMongo:
		store, err := mongo.Connect(ctx, settings)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.StoreSQLite:
		return state, nil
	case domain.StoreMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
