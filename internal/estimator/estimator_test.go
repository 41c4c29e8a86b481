package estimator

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func trendingSeries(n int) *models.TimeSeries {
	rng := rand.New(rand.NewSource(11))
	values := make([]float64, n)
	for i := range values {
		values[i] = 20 + 0.8*float64(i) + 0.3*rng.NormFloat64()
	}
	return models.NewTimeSeries("trend", values, time.Unix(0, 0), time.Hour)
}

func TestFitSelectsTrendModelOnTrendingSeries(t *testing.T) {
	options := Options{
		UseBoxCox:      models.SwitchOff,
		UseTrend:       models.SwitchAuto,
		UseDampedTrend: models.SwitchOff,
		UseARMAErrors:  models.SwitchOff,
	}
	est := New(options, quietLogger())

	outcome, err := est.Fit(context.Background(), trendingSeries(150))
	require.NoError(t, err)
	require.NotNil(t, outcome.BestModel())

	assert.True(t, outcome.Best.Spec.UseTrend,
		"a strongly trending series must select the trend model")
	assert.Len(t, outcome.Candidates, 2)
	assert.NotEmpty(t, outcome.RunID)
}

func TestFitAllSwitchesFixedSingleCandidate(t *testing.T) {
	options := Options{
		UseBoxCox:      models.SwitchOff,
		UseTrend:       models.SwitchOn,
		UseDampedTrend: models.SwitchOff,
		UseARMAErrors:  models.SwitchOff,
	}
	est := New(options, quietLogger())

	outcome, err := est.Fit(context.Background(), trendingSeries(100))
	require.NoError(t, err)
	assert.Len(t, outcome.Candidates, 1)
	assert.True(t, outcome.Best.Spec.UseTrend)
}

func TestFitParallelAndSequentialAgree(t *testing.T) {
	series := trendingSeries(120)
	options := Options{
		UseBoxCox:     models.SwitchOff,
		UseTrend:      models.SwitchAuto,
		UseARMAErrors: models.SwitchOff,
	}

	seqOptions := options
	seqOptions.NJobs = 1
	sequential, err := New(seqOptions, quietLogger()).Fit(context.Background(), series)
	require.NoError(t, err)

	parOptions := options
	parOptions.NJobs = 4
	parallel, err := New(parOptions, quietLogger()).Fit(context.Background(), series)
	require.NoError(t, err)

	assert.True(t, sequential.Best.Spec.Equal(parallel.Best.Spec))
	assert.Equal(t, sequential.Best.Index, parallel.Best.Index)
	assert.InDelta(t, sequential.Best.AIC, parallel.Best.AIC, 1e-9)
}

func TestFitInvalidSeasonalPeriod(t *testing.T) {
	options := DefaultOptions()
	options.SeasonalPeriods = []int{0}
	est := New(options, quietLogger())

	_, err := est.Fit(context.Background(), trendingSeries(50))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidSeasonalPeriod)
}

func TestFitContradictorySwitches(t *testing.T) {
	options := Options{
		UseBoxCox:      models.SwitchOff,
		UseTrend:       models.SwitchOff,
		UseDampedTrend: models.SwitchOn,
		UseARMAErrors:  models.SwitchOff,
	}
	est := New(options, quietLogger())

	_, err := est.Fit(context.Background(), trendingSeries(50))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyGrid)
}

func TestFitCollectsWarningsFromFailedCandidates(t *testing.T) {
	// Negative values make every box-cox candidate fail while the
	// untransformed candidates still fit.
	values := make([]float64, 80)
	for i := range values {
		values[i] = float64(i%7) - 3
	}
	series := models.NewTimeSeries("mixed-sign", values, time.Unix(0, 0), time.Hour)

	options := Options{
		UseBoxCox:      models.SwitchAuto,
		UseTrend:       models.SwitchOff,
		UseDampedTrend: models.SwitchOff,
		UseARMAErrors:  models.SwitchOff,
		ShowWarnings:   false,
	}
	est := New(options, quietLogger())

	outcome, err := est.Fit(context.Background(), series)
	require.NoError(t, err)
	assert.False(t, outcome.Best.Spec.UseBoxCox)

	failed := 0
	for _, w := range outcome.Warnings {
		if w.Kind == models.WarningFitFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed, "the box-cox candidate should fail on non-positive data")
}

type countingFitter struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFitter) Fit(ctx context.Context, series *models.TimeSeries, spec models.ComponentSpec) (*models.FittedModel, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return &models.FittedModel{Spec: spec, AIC: 100}, nil
}

func TestWithFitterReplacesDefault(t *testing.T) {
	options := Options{
		UseBoxCox:      models.SwitchOff,
		UseTrend:       models.SwitchAuto,
		UseDampedTrend: models.SwitchOff,
		UseARMAErrors:  models.SwitchOff,
		NJobs:          1,
	}
	fitter := &countingFitter{}
	est := New(options, quietLogger()).WithFitter(fitter)

	outcome, err := est.Fit(context.Background(), trendingSeries(50))
	require.NoError(t, err)
	assert.Equal(t, 2, fitter.calls, "both grid candidates go through the injected fitter")
	assert.Len(t, outcome.Candidates, 2)
}
