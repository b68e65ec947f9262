package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	setErr   error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"listings.batch_size", "store.uri"}
}

func (m *mockSettingsService) Path() string {
	return "/home/test/.cloudcluster/config.toml"
}

// mockLoadService implements driving.LoadService for testing.
type mockLoadService struct {
	lastReq     driving.PlanRequest
	acks        []domain.BatchAck
	results     []domain.LoadResult
	runErr      error
	checkpoints []domain.Checkpoint
	reset       [][2]string
	resetErr    error
	count       int64
	counted     string
}

func (m *mockLoadService) Plan(settings *domain.AppSettings, req driving.PlanRequest) (domain.LoadPlan, error) {
	m.lastReq = req
	plan := domain.LoadPlan{RunID: "run-1"}
	for _, kind := range req.Kinds {
		cs, err := settings.CollectionFor(kind)
		if err != nil {
			return plan, err
		}
		plan.Jobs = append(plan.Jobs, domain.LoadJob{
			Collection: cs.Name,
			Kind:       kind,
			Path:       "all_json/1" + kind.String() + ".json",
			BatchSize:  cs.BatchSize,
			Resume:     req.Resume,
		})
	}
	return plan, nil
}

func (m *mockLoadService) LoadFile(
	_ context.Context,
	_ domain.LoadJob,
	_ driving.BatchObserver,
) (*domain.LoadResult, error) {
	return nil, nil
}

func (m *mockLoadService) Run(
	_ context.Context,
	_ domain.LoadPlan,
	observe driving.BatchObserver,
) ([]domain.LoadResult, error) {
	for _, ack := range m.acks {
		observe(ack)
	}
	return m.results, m.runErr
}

func (m *mockLoadService) Checkpoints(_ context.Context) ([]domain.Checkpoint, error) {
	return m.checkpoints, nil
}

func (m *mockLoadService) ResetCheckpoint(_ context.Context, collection, source string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.reset = append(m.reset, [2]string{collection, source})
	return nil
}

func (m *mockLoadService) Count(_ context.Context, collection string) (int64, error) {
	m.counted = collection
	return m.count, nil
}

// mockDatasetService implements driving.DatasetService for testing.
type mockDatasetService struct {
	stageReq   driving.StageRequest
	staged     []domain.StagedFile
	convertReq []driving.ConvertRequest
	converted  map[domain.RecordKind][]domain.ConvertResult
	reportDir  string
	summaries  []domain.FileSummary
}

func (m *mockDatasetService) Stage(_ context.Context, req driving.StageRequest) ([]domain.StagedFile, error) {
	m.stageReq = req
	return m.staged, nil
}

func (m *mockDatasetService) Convert(_ context.Context, req driving.ConvertRequest) ([]domain.ConvertResult, error) {
	m.convertReq = append(m.convertReq, req)
	return m.converted[req.Kind], nil
}

func (m *mockDatasetService) Report(_ context.Context, dir string) ([]domain.FileSummary, error) {
	m.reportDir = dir
	return m.summaries, nil
}

// mockFetchService implements driving.FetchService for testing.
type mockFetchService struct {
	lastReq driving.FetchRequest
	links   []domain.DatasetLink
	files   []driving.FetchedFile
	err     error
}

func (m *mockFetchService) List(_ context.Context, req driving.FetchRequest) ([]domain.DatasetLink, error) {
	m.lastReq = req
	return m.links, nil
}

func (m *mockFetchService) Fetch(_ context.Context, req driving.FetchRequest) ([]driving.FetchedFile, error) {
	m.lastReq = req
	return m.files, m.err
}

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	exists     bool
	collection string
	listings   []domain.Record
	listingQs  []domain.ListingQuery
	count      int64
	countQs    []domain.BedroomCountQuery
	err        error
}

func (m *mockQueryService) Exists(_ context.Context, collection string) (bool, error) {
	m.collection = collection
	return m.exists, m.err
}

func (m *mockQueryService) Listings(_ context.Context, collection string, q domain.ListingQuery) ([]domain.Record, error) {
	m.collection = collection
	m.listingQs = append(m.listingQs, q)
	return m.listings, m.err
}

func (m *mockQueryService) CountBedrooms(_ context.Context, collection string, q domain.BedroomCountQuery) (int64, error) {
	m.collection = collection
	m.countQs = append(m.countQs, q)
	return m.count, m.err
}

type testServices struct {
	settings *mockSettingsService
	load     *mockLoadService
	dataset  *mockDatasetService
	fetch    *mockFetchService
	query    *mockQueryService
}

// setupTestServices installs mocks and restores the previous services on cleanup.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	oldSettings, oldLoad, oldDataset, oldFetch := settingsService, loadService, datasetService, fetchService
	oldQuery := queryService
	oldBootstrap, oldClose := bootstrap, closeServices

	ts := &testServices{
		settings: newMockSettingsService(),
		load:     &mockLoadService{},
		dataset:  &mockDatasetService{},
		fetch:    &mockFetchService{},
		query:    &mockQueryService{},
	}
	settingsService = ts.settings
	loadService = ts.load
	datasetService = ts.dataset
	fetchService = ts.fetch
	queryService = ts.query
	bootstrap = nil
	closeServices = nil

	t.Cleanup(func() {
		settingsService, loadService, datasetService, fetchService = oldSettings, oldLoad, oldDataset, oldFetch
		queryService = oldQuery
		bootstrap, closeServices = oldBootstrap, oldClose
	})
	return ts
}

// executeCommand runs the root command with args after resetting every flag.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
