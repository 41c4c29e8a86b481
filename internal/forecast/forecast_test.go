package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/bats/internal/statespace"
	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/models"
)

func fitSeries(t *testing.T, values []float64, spec models.ComponentSpec) *models.FittedModel {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	fitter := statespace.NewFitter(nil, logger)
	series := models.NewTimeSeries("test", values, time.Unix(0, 0), time.Hour)
	model, err := fitter.Fit(context.Background(), series, spec)
	require.NoError(t, err)
	require.True(t, model.IsViable())
	return model
}

func TestHorizonLevelSeries(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 42
	}
	model := fitSeries(t, values, models.ComponentSpec{})

	result, err := Horizon(model, 10, 0.95)
	require.NoError(t, err)
	require.Len(t, result.Points, 10)

	for _, p := range result.Points {
		assert.InDelta(t, 42, p.Value, 0.5)
		assert.LessOrEqual(t, p.Lower, p.Value)
		assert.GreaterOrEqual(t, p.Upper, p.Value)
	}
}

func TestHorizonSeasonalPatternRepeats(t *testing.T) {
	pattern := []float64{8, -3, -5, 0}
	values := make([]float64, 160)
	for i := range values {
		values[i] = 50 + pattern[i%4]
	}
	model := fitSeries(t, values, models.ComponentSpec{SeasonalPeriods: []int{4}})

	result, err := Horizon(model, 8, 0.95)
	require.NoError(t, err)

	for h := 0; h < 4; h++ {
		assert.InDelta(t, result.Points[h].Value, result.Points[h+4].Value, 1e-6,
			"forecast must repeat the seasonal cycle")
	}
	// The forecast should track the actual pattern closely
	for h, p := range result.Points {
		assert.InDelta(t, 50+pattern[(len(values)+h)%4], p.Value, 1.0, "step %d", h+1)
	}
}

func TestHorizonIntervalsWiden(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		values[i] = 10 + 0.5*float64(i%7) // mild variability
	}
	model := fitSeries(t, values, models.ComponentSpec{})

	result, err := Horizon(model, 20, 0.95)
	require.NoError(t, err)

	firstWidth := result.Points[0].Upper - result.Points[0].Lower
	lastWidth := result.Points[19].Upper - result.Points[19].Lower
	assert.GreaterOrEqual(t, lastWidth, firstWidth,
		"prediction intervals must not shrink with horizon")
}

func TestHorizonBoxCoxBackTransform(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = math.Exp(2 + float64(i)/50)
	}
	model := fitSeries(t, values, models.ComponentSpec{UseBoxCox: true, UseTrend: true})

	result, err := Horizon(model, 5, 0.95)
	require.NoError(t, err)

	last := values[len(values)-1]
	for _, p := range result.Points {
		assert.Greater(t, p.Value, 0.0, "back-transformed forecasts stay positive")
		assert.Greater(t, p.Value, last*0.5)
		assert.Less(t, p.Value, last*3)
	}
}

func TestHorizonArgumentValidation(t *testing.T) {
	model := fitSeries(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, models.ComponentSpec{})

	_, err := Horizon(nil, 5, 0.95)
	assert.ErrorIs(t, err, errors.ErrInvalidSpecification)

	_, err = Horizon(model, 0, 0.95)
	assert.ErrorIs(t, err, errors.ErrInvalidSpecification)

	_, err = Horizon(model, 5, 1.5)
	assert.ErrorIs(t, err, errors.ErrInvalidSpecification)
}
