package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/bats/pkg/errors"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVReaderSingleColumn(t *testing.T) {
	path := writeTempCSV(t, "10.5\n11\n9.25\n")

	series, err := NewCSVReader(path).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 11, 9.25}, series.Values())
	assert.Equal(t, "series", series.Name)
}

func TestCSVReaderWithHeader(t *testing.T) {
	path := writeTempCSV(t, "value\n1\n2\n3\n")

	series, err := NewCSVReader(path).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, series.Values())
}

func TestCSVReaderTimestampAndValue(t *testing.T) {
	path := writeTempCSV(t,
		"timestamp,value\n"+
			"2024-01-01T00:00:00Z,100\n"+
			"2024-01-01T01:00:00Z,101.5\n")

	series, err := NewCSVReader(path).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, []float64{100, 101.5}, series.Values())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series.DataPoints[0].Timestamp)
}

func TestCSVReaderMissingFile(t *testing.T) {
	_, err := NewCSVReader(filepath.Join(t.TempDir(), "absent.csv")).Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInputNotFound)
}

func TestCSVReaderEmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")

	_, err := NewCSVReader(path).Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptySeries)
}

func TestCSVReaderNonNumericValueMidFile(t *testing.T) {
	path := writeTempCSV(t, "1\n2\noops\n")

	_, err := NewCSVReader(path).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}
