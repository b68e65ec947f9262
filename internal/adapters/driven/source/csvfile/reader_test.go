package csvfile

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

var testClean = domain.CleanSettings{
	CurrencyFields: []string{"price"},
	ZipcodeFields:  []string{"zipcode"},
	DropEmpty:      true,
}

func readAll(t *testing.T, r *Reader) ([]domain.Record, error) {
	t.Helper()
	var out []domain.Record
	for {
		rec, err := r.Next(context.Background())
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

func TestReader_Rows(t *testing.T) {
	input := "\uFEFFid,name,price,zipcode,summary\n" +
		"2818,Quiet Garden,\"$1,059.00\",1053 AB,\"Multi\nline\"\n" +
		"20168,,$80.00,,\n"
	r := NewReader(strings.NewReader(input), "0listings.csv", testClean)

	records, err := readAll(t, r)

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "price", "zipcode", "summary"}, r.Headers())
	require.Len(t, records, 2)
	assert.Equal(t, domain.Record{
		{Key: "id", Value: int64(2818)},
		{Key: "name", Value: "Quiet Garden"},
		{Key: "price", Value: 1059.0},
		{Key: "zipcode", Value: "1053"},
		{Key: "summary", Value: "Multi\nline"},
	}, records[0])
	assert.Equal(t, domain.Record{
		{Key: "id", Value: int64(20168)},
		{Key: "price", Value: 80.0},
	}, records[1])
}

func TestReader_ShortRowsPadded(t *testing.T) {
	r := NewReader(strings.NewReader("a,b,c\n1,2\n"), "x.csv", domain.CleanSettings{})

	records, err := readAll(t, r)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"a", "b", "c"}, records[0].Keys())
	v, _ := records[0].Get("c")
	assert.Equal(t, "", v)
}

func TestReader_DuplicateHeadersRenamed(t *testing.T) {
	r := NewReader(strings.NewReader("id,name,name,name.1,name\n1,a,b,c,d\n"), "dup.csv", domain.CleanSettings{})

	records, err := readAll(t, r)

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "name.2", "name.1", "name.3"}, r.Headers())
	require.Len(t, records, 1)
	assert.Equal(t, domain.Record{
		{Key: "id", Value: int64(1)},
		{Key: "name", Value: "a"},
		{Key: "name.2", Value: "b"},
		{Key: "name.1", Value: "c"},
		{Key: "name.3", Value: "d"},
	}, records[0])
}

func TestReader_LongRowFails(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\n1,2\n1,2,3\n"), "x.csv", testClean)

	records, err := readAll(t, r)

	require.Error(t, err)
	assert.Len(t, records, 1)
	var serr *domain.SourceReadError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 1, serr.Offset)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReader_EmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader(""), "empty.csv", testClean)

	records, err := readAll(t, r)

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReader_HeaderOnly(t *testing.T) {
	r := NewReader(strings.NewReader("id,name\n"), "h.csv", testClean)

	records, err := readAll(t, r)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, []string{"id", "name"}, r.Headers())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "3reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte("listing_id,id,date,comments\n2818,1191,2009-03-30,Great stay\n"), 0600))

	r, err := Open(path, testClean)
	require.NoError(t, err)
	defer r.Close()

	records, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, records, 1)
	date, _ := records[0].Get("date")
	assert.Equal(t, "2009-03-30", date)

	_, err = Open(filepath.Join(dir, "missing.csv"), testClean)
	assert.True(t, domain.IsSourceReadFailure(err))
}
