package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PieMyth/CloudCluster/internal/adapters/driven/source"
	"github.com/PieMyth/CloudCluster/internal/adapters/driven/source/jsonfile"
	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
)

func newDatasetService() *DatasetService {
	return NewDatasetService(source.NewOpener(domain.DefaultAppSettings().Clean), jsonfile.Factory{})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDatasetService_Stage(t *testing.T) {
	root := t.TempDir()
	downloads := filepath.Join(root, "csv_files")
	staging := filepath.Join(root, "all_files")
	writeFile(t, filepath.Join(downloads, "united-states", "or", "portland", "2019-07-14", "listings.csv"), "id\n1\n")
	writeFile(t, filepath.Join(downloads, "united-states", "or", "portland", "2019-07-14", "reviews.csv"), "id\n2\n")
	writeFile(t, filepath.Join(downloads, "the-netherlands", "nh", "amsterdam", "2019-07-08", "listings.csv"), "id\n3\n")
	writeFile(t, filepath.Join(downloads, "README.txt"), "ignored")

	staged, err := newDatasetService().Stage(context.Background(), driving.StageRequest{
		SourceDir: downloads,
		DestDir:   staging,
	})

	require.NoError(t, err)
	require.Len(t, staged, 3)
	assert.Equal(t, filepath.Join(staging, "0listings.csv"), staged[0].To)
	assert.Contains(t, staged[0].From, "amsterdam")
	assert.Equal(t, filepath.Join(staging, "1listings.csv"), staged[1].To)
	assert.Equal(t, filepath.Join(staging, "2reviews.csv"), staged[2].To)
	assert.Equal(t, 2, staged[2].Index)

	for _, f := range staged {
		_, err := os.Stat(f.To)
		assert.NoError(t, err)
		_, err = os.Stat(f.From)
		assert.True(t, os.IsNotExist(err))
	}
}

func TestDatasetService_Stage_StartOffsetAndCollision(t *testing.T) {
	root := t.TempDir()
	downloads := filepath.Join(root, "in")
	staging := filepath.Join(root, "out")
	writeFile(t, filepath.Join(downloads, "a", "listings.csv"), "id\n1\n")
	writeFile(t, filepath.Join(downloads, "b", "listings.csv"), "id\n2\n")
	writeFile(t, filepath.Join(staging, "6listings.csv"), "existing")

	staged, err := newDatasetService().Stage(context.Background(), driving.StageRequest{
		SourceDir: downloads,
		DestDir:   staging,
		Start:     5,
	})

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.Len(t, staged, 1)
	assert.Equal(t, 5, staged[0].Index)

	data, err := os.ReadFile(filepath.Join(staging, "6listings.csv"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}

func TestDatasetService_Stage_InvalidRequest(t *testing.T) {
	_, err := newDatasetService().Stage(context.Background(), driving.StageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDatasetService_Convert(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(root, "all_files")
	jsonDir := filepath.Join(root, "all_json")
	writeFile(t, filepath.Join(staging, "0listings.csv"),
		"id,price,zipcode,host_location\n2818,\"$1,200.00\",1053 AB,\"Amsterdam, NL\"\n3209,$99.00,,\n")
	writeFile(t, filepath.Join(staging, "1reviews.csv"), "listing_id,id,comments\n2818,1191,Great\n")
	writeFile(t, filepath.Join(staging, "2listings.csv"), "id\n7\n")

	results, err := newDatasetService().Convert(context.Background(), driving.ConvertRequest{
		InputDir:  staging,
		OutputDir: jsonDir,
		Kind:      domain.KindListings,
		Indices:   []int{0},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(jsonDir, "0listings.json"), results[0].Destination)
	assert.Equal(t, 2, results[0].Records)

	data, err := os.ReadFile(results[0].Destination)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `{"id":2818,"price":1200,"zipcode":"1053","host_location":"Amsterdam, NL"}`)
	assert.Contains(t, content, `{"id":3209,"price":99}`)

	_, err = os.Stat(filepath.Join(jsonDir, "2listings.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestDatasetService_Convert_AllKinds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "in", "0listings.csv"), "id\n1\n")
	writeFile(t, filepath.Join(root, "in", "1reviews.csv"), "id\n2\n")

	results, err := newDatasetService().Convert(context.Background(), driving.ConvertRequest{
		InputDir:  filepath.Join(root, "in"),
		OutputDir: filepath.Join(root, "out"),
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1reviews.json", filepath.Base(results[1].Destination))
}

func TestDatasetService_Convert_MalformedLeavesNoOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "in", "0listings.csv"), "id,name\n1,a\n2,b,extra\n")

	_, err := newDatasetService().Convert(context.Background(), driving.ConvertRequest{
		InputDir:  filepath.Join(root, "in"),
		OutputDir: filepath.Join(root, "out"),
	})

	assert.True(t, domain.IsSourceReadFailure(err))
	entries, err := os.ReadDir(filepath.Join(root, "out"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDatasetService_Convert_UnknownKind(t *testing.T) {
	_, err := newDatasetService().Convert(context.Background(), driving.ConvertRequest{Kind: "calendar"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestDatasetService_Report(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "10listings.json"), `[{"id":1,"host_location":"Portland, Oregon"},{"id":2}]`)
	writeFile(t, filepath.Join(dir, "2reviews.json"), `[]`)
	writeFile(t, filepath.Join(dir, "big.json"), "["+strings.Repeat(`{"n":1},`, 150000)+`{"n":1}]`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "skip")

	summaries, err := newDatasetService().Report(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "big.json", summaries[0].Name)
	assert.Equal(t, -1, summaries[0].Index)
	assert.Equal(t, 150001, summaries[0].Records)
	assert.Equal(t, int64(1), summaries[0].SizeMiB)

	assert.Equal(t, domain.FileSummary{Name: "2reviews.json", Index: 2, Kind: "reviews"}, summaries[1])
	assert.Equal(t, domain.FileSummary{
		Name: "10listings.json", Index: 10, Kind: "listings", Records: 2, HostLocation: "Portland, Oregon",
	}, summaries[2])
}

func TestDatasetService_Report_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1listings.json"), `[{"id":1},`)

	_, err := newDatasetService().Report(context.Background(), dir)

	assert.True(t, domain.IsSourceReadFailure(err))
}
