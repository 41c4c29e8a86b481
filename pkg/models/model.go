package models

import "math"

// ARMAOrder is the (p, q) order of the residual ARMA correction
type ARMAOrder struct {
	P int `json:"p"`
	Q int `json:"q"`
}

// FittedModel contains the estimated parameters and state of a single
// BATS model configuration. The linear innovations form is fully
// reconstructible from these fields, so forecasting and persistence
// both work from a FittedModel alone.
type FittedModel struct {
	Spec ComponentSpec `json:"spec"`

	// Box-Cox lambda; only meaningful when Spec.UseBoxCox is true
	Lambda float64 `json:"lambda,omitempty"`

	// Smoothing parameters
	Alpha  float64   `json:"alpha"`
	Beta   float64   `json:"beta,omitempty"`
	Phi    float64   `json:"phi,omitempty"`
	Gammas []float64 `json:"gammas,omitempty"`

	// ARMA error coefficients
	ARMA     ARMAOrder `json:"arma_order"`
	ARCoeffs []float64 `json:"ar_coefficients,omitempty"`
	MACoeffs []float64 `json:"ma_coefficients,omitempty"`

	// Seed state used when the recursion started, and the state after
	// the last observation (the forecast origin)
	SeedState  []float64 `json:"seed_state"`
	FinalState []float64 `json:"final_state"`

	// Fit quality
	Variance      float64 `json:"variance"`
	LogLikelihood float64 `json:"log_likelihood"`
	AIC           float64 `json:"aic"`

	// Residuals on the transformed scale, one per observation
	Residuals []float64 `json:"residuals,omitempty"`

	// Number of observations the model was fitted on
	SampleSize int `json:"sample_size"`
}

// ParamCount returns the number of estimated parameters counted by AIC:
// smoothing parameters, ARMA coefficients, the innovation variance, the
// Box-Cox lambda when searched, and the seed states.
func (m *FittedModel) ParamCount() int {
	k := 1 // alpha
	if m.Spec.UseTrend {
		k++ // beta
	}
	if m.Spec.UseDampedTrend {
		k++ // phi
	}
	k += len(m.Gammas)
	k += len(m.ARCoeffs) + len(m.MACoeffs)
	k++ // variance
	if m.Spec.UseBoxCox {
		k++ // lambda
	}
	k += len(m.SeedState)
	return k
}

// IsViable reports whether the model produced a usable, finite AIC
func (m *FittedModel) IsViable() bool {
	return m != nil && !math.IsNaN(m.AIC) && !math.IsInf(m.AIC, 0)
}
