// Package ingest loads time series from input sources: local CSV files
// and InfluxDB queries.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/models"
)

// CSVReader reads a univariate series from a CSV file. Supported
// shapes: a single value column, or a timestamp column followed by a
// value column. A non-numeric first row is treated as a header.
type CSVReader struct {
	Path string

	// TimestampLayout parses the timestamp column; RFC 3339 by default
	TimestampLayout string
}

// NewCSVReader creates a reader for the given file
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{Path: path, TimestampLayout: time.RFC3339}
}

// Read implements interfaces.SeriesReader
func (r *CSVReader) Read(ctx context.Context) (*models.TimeSeries, error) {
	file, err := os.Open(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(errors.ErrInputNotFound,
				errors.ErrorTypeIngest, errors.CodeInputNotFound, r.Path)
		}
		return nil, errors.WrapError(err, errors.ErrorTypeIngest,
			errors.CodeReadFailed, "failed to open input file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var points []models.DataPoint
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeIngest,
				errors.CodeInvalidInput, "malformed CSV input")
		}
		row++

		point, ok, err := r.parseRecord(record, row)
		if err != nil {
			return nil, err
		}
		if ok {
			points = append(points, point)
		}
	}

	if len(points) == 0 {
		return nil, errors.WrapError(errors.ErrEmptySeries,
			errors.ErrorTypeIngest, errors.CodeInvalidInput,
			"no observations found in "+r.Path)
	}

	name := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
	return &models.TimeSeries{
		ID:         name,
		Name:       name,
		DataPoints: points,
	}, nil
}

// parseRecord interprets one CSV row. The first row may be a header,
// which is skipped silently.
func (r *CSVReader) parseRecord(record []string, row int) (models.DataPoint, bool, error) {
	if len(record) == 0 {
		return models.DataPoint{}, false, nil
	}

	var tsField, valueField string
	switch len(record) {
	case 1:
		valueField = record[0]
	default:
		tsField = record[0]
		valueField = record[1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(valueField), 64)
	if err != nil {
		if row == 1 {
			return models.DataPoint{}, false, nil // header row
		}
		return models.DataPoint{}, false, errors.WrapError(err,
			errors.ErrorTypeIngest, errors.CodeInvalidInput,
			"non-numeric value in row "+strconv.Itoa(row))
	}

	point := models.DataPoint{Value: value}
	if tsField != "" {
		if ts, err := time.Parse(r.TimestampLayout, strings.TrimSpace(tsField)); err == nil {
			point.Timestamp = ts
		}
	}
	return point, true, nil
}
