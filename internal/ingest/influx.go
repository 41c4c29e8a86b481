package ingest

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/models"
)

// InfluxConfig contains the connection settings for an InfluxDB source
type InfluxConfig struct {
	URL          string        `mapstructure:"url" json:"url" yaml:"url"`
	Token        string        `mapstructure:"token" json:"token" yaml:"token"`
	Organization string        `mapstructure:"organization" json:"organization" yaml:"organization"`
	Timeout      time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`
}

// InfluxReader loads a series by running a Flux query. Each record's
// time and value become one observation, in query order.
type InfluxReader struct {
	config   *InfluxConfig
	query    string
	client   influxdb2.Client
	queryAPI api.QueryAPI
	logger   *logrus.Logger
}

// NewInfluxReader creates a reader for the given Flux query
func NewInfluxReader(config *InfluxConfig, query string, logger *logrus.Logger) (*InfluxReader, error) {
	if config == nil || config.URL == "" {
		return nil, errors.WrapError(errors.ErrMissingConfiguration,
			errors.ErrorTypeConfiguration, errors.CodeMissingConfig,
			"influxdb url is required")
	}
	if query == "" {
		return nil, errors.NewIngestError(errors.CodeInvalidInput,
			"flux query is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &InfluxReader{config: config, query: query, logger: logger}, nil
}

// Connect establishes the InfluxDB client connection
func (r *InfluxReader) Connect(ctx context.Context) error {
	if r.client != nil {
		return nil
	}

	client := influxdb2.NewClient(r.config.URL, r.config.Token)
	ok, err := client.Ping(ctx)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeIngest,
			errors.CodeReadFailed, "failed to connect to InfluxDB")
	}
	if !ok {
		return errors.NewIngestError(errors.CodeReadFailed, "InfluxDB ping failed")
	}

	r.client = client
	r.queryAPI = client.QueryAPI(r.config.Organization)
	r.logger.WithField("url", r.config.URL).Info("Connected to InfluxDB")
	return nil
}

// Close releases the client
func (r *InfluxReader) Close() {
	if r.client != nil {
		r.client.Close()
		r.client = nil
		r.queryAPI = nil
	}
}

// Read implements interfaces.SeriesReader
func (r *InfluxReader) Read(ctx context.Context) (*models.TimeSeries, error) {
	if r.queryAPI == nil {
		return nil, errors.WrapError(errors.ErrSourceNotReady,
			errors.ErrorTypeIngest, errors.CodeReadFailed,
			"Connect must be called before Read")
	}

	queryCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	result, err := r.queryAPI.Query(queryCtx, r.query)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeIngest,
			errors.CodeReadFailed, "flux query failed")
	}

	var points []models.DataPoint
	for result.Next() {
		record := result.Record()
		value, ok := record.Value().(float64)
		if !ok {
			continue
		}
		points = append(points, models.DataPoint{
			Timestamp: record.Time(),
			Value:     value,
		})
	}
	if result.Err() != nil {
		return nil, errors.WrapError(result.Err(), errors.ErrorTypeIngest,
			errors.CodeReadFailed, "flux result iteration failed")
	}

	if len(points) == 0 {
		return nil, errors.WrapError(errors.ErrEmptySeries,
			errors.ErrorTypeIngest, errors.CodeInvalidInput,
			"query returned no observations")
	}

	r.logger.WithField("observations", len(points)).Info("Loaded series from InfluxDB")
	return &models.TimeSeries{
		ID:         "influxdb",
		Name:       "influxdb",
		DataPoints: points,
	}, nil
}
