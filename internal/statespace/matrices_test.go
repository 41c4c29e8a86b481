package statespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/bats/pkg/models"
)

func TestLayoutDimensions(t *testing.T) {
	tests := []struct {
		name  string
		spec  models.ComponentSpec
		order models.ARMAOrder
		dim   int
	}{
		{
			name: "level only",
			spec: models.ComponentSpec{},
			dim:  1,
		},
		{
			name: "level and trend",
			spec: models.ComponentSpec{UseTrend: true},
			dim:  2,
		},
		{
			name: "two seasonal periods",
			spec: models.ComponentSpec{UseTrend: true, SeasonalPeriods: []int{7, 12}},
			dim:  2 + 7 + 12,
		},
		{
			name:  "with arma lags",
			spec:  models.ComponentSpec{SeasonalPeriods: []int{4}},
			order: models.ARMAOrder{P: 2, Q: 1},
			dim:   1 + 4 + 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLayout(tt.spec, tt.order)
			assert.Equal(t, tt.dim, l.dim)
		})
	}
}

func TestFilterSimpleExponentialSmoothing(t *testing.T) {
	// Level-only model: the recursion must reproduce simple exponential
	// smoothing with smoothing constant alpha.
	spec := models.ComponentSpec{}
	alpha := 0.3
	matrices := buildMatrices(spec, parameters{alpha: alpha, phi: 1})

	observations := []float64{10, 12, 11, 13, 12}
	seed := []float64{10.0}
	residuals, fitted, finalState := matrices.filter(observations, seed)

	level := 10.0
	for i, y := range observations {
		assert.InDelta(t, level, fitted[i], 1e-12)
		e := y - level
		assert.InDelta(t, e, residuals[i], 1e-12)
		level += alpha * e
	}
	assert.InDelta(t, level, finalState[0], 1e-12)
}

func TestFilterDampedTrendRecursion(t *testing.T) {
	spec := models.ComponentSpec{UseTrend: true, UseDampedTrend: true}
	params := parameters{alpha: 0.4, beta: 0.1, phi: 0.9}
	matrices := buildMatrices(spec, params)

	observations := []float64{5, 7, 8}
	seed := []float64{5, 1}
	residuals, fitted, finalState := matrices.filter(observations, seed)

	level, trend := 5.0, 1.0
	for i, y := range observations {
		yhat := level + params.phi*trend
		assert.InDelta(t, yhat, fitted[i], 1e-12)
		e := y - yhat
		assert.InDelta(t, e, residuals[i], 1e-12)
		level, trend = level+params.phi*trend+params.alpha*e, params.phi*trend+params.beta*e
	}
	assert.InDelta(t, level, finalState[0], 1e-12)
	assert.InDelta(t, trend, finalState[1], 1e-12)
}

func TestFilterSeasonalRotation(t *testing.T) {
	// With gamma=0 a seasonal block only rotates, so predictions repeat
	// the seed pattern on top of the level.
	spec := models.ComponentSpec{SeasonalPeriods: []int{3}}
	matrices := buildMatrices(spec, parameters{alpha: 0, phi: 1, gammas: []float64{0}})

	// Seed: level 10, seasonal pattern consumed in order +1, -2, +1
	seed := []float64{10, 1, -2, 1}
	observations := []float64{11, 8, 11, 11, 8, 11}
	residuals, fitted, _ := matrices.filter(observations, seed)

	for i := range observations {
		assert.InDelta(t, observations[i], fitted[i], 1e-12, "index %d", i)
		assert.InDelta(t, 0, residuals[i], 1e-12)
	}
}

func TestForecastMeansContinuePattern(t *testing.T) {
	spec := models.ComponentSpec{SeasonalPeriods: []int{3}}
	matrices := buildMatrices(spec, parameters{alpha: 0, phi: 1, gammas: []float64{0}})

	seed := []float64{10, 1, -2, 1}
	means := matrices.forecastMeans(seed, 6)
	expected := []float64{11, 8, 11, 11, 8, 11}
	for i := range expected {
		assert.InDelta(t, expected[i], means[i], 1e-12, "step %d", i)
	}
}

func TestImpulseWeightsLevelOnly(t *testing.T) {
	// For simple exponential smoothing every moving-average weight
	// equals alpha.
	matrices := buildMatrices(models.ComponentSpec{}, parameters{alpha: 0.25, phi: 1})

	weights := matrices.impulseWeights(5)
	require.Len(t, weights, 4)
	for _, w := range weights {
		assert.InDelta(t, 0.25, w, 1e-12)
	}
}

func TestBuildMatricesARMAFeedback(t *testing.T) {
	// An AR(1) error model must feed the lagged d state back into the
	// observation and into every smoothed component.
	spec := models.ComponentSpec{}
	params := parameters{alpha: 0.5, phi: 1, ar: []float64{0.6}}
	matrices := buildMatrices(spec, params)

	l := matrices.layout
	require.Equal(t, 2, l.dim)
	assert.InDelta(t, 0.6, matrices.w.AtVec(l.dStart), 1e-12)
	assert.InDelta(t, 0.5*0.6, matrices.F.At(0, l.dStart), 1e-12)
	assert.InDelta(t, 0.6, matrices.F.At(l.dStart, l.dStart), 1e-12)
	assert.InDelta(t, 1.0, matrices.g.AtVec(l.dStart), 1e-12)
}
