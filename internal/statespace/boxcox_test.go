package statespace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/bats/pkg/errors"
)

func TestBoxCoxRoundTrip(t *testing.T) {
	values := []float64{0.5, 1, 2.5, 10, 100}

	for _, lambda := range []float64{0, 0.25, 0.5, 1} {
		transformed, err := BoxCox(values, lambda)
		require.NoError(t, err)
		restored := InverseBoxCox(transformed, lambda)
		for i := range values {
			assert.InDelta(t, values[i], restored[i], 1e-9,
				"lambda=%v index=%d", lambda, i)
		}
	}
}

func TestBoxCoxLogCase(t *testing.T) {
	transformed, err := BoxCox([]float64{math.E}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, transformed[0], 1e-12)
}

func TestBoxCoxIdentityCase(t *testing.T) {
	transformed, err := BoxCox([]float64{5}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, transformed[0], 1e-12, "lambda=1 shifts by one")
}

func TestBoxCoxRejectsNonPositive(t *testing.T) {
	_, err := BoxCox([]float64{1, 0, 2}, 0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBoxCoxDomain)

	_, err = EstimateLambda([]float64{1, -3})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBoxCoxDomain)
}

func TestEstimateLambdaExponentialGrowth(t *testing.T) {
	// Multiplicative growth wants a log-like transform
	values := make([]float64, 80)
	for i := range values {
		values[i] = math.Exp(float64(i) / 15)
	}

	lambda, err := EstimateLambda(values)
	require.NoError(t, err)
	assert.Less(t, lambda, 0.3)
}

func TestInverseBoxCoxClampsOutOfRange(t *testing.T) {
	// lambda*x + 1 <= 0 has no preimage; clamp to zero
	restored := InverseBoxCox([]float64{-10}, 0.5)
	assert.Zero(t, restored[0])
}
