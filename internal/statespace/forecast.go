package statespace

import (
	"github.com/inferloop/bats/pkg/models"
)

// InverseBoxCoxValue undoes the Box-Cox transform for a single value
func InverseBoxCoxValue(v, lambda float64) float64 {
	return inverseBoxCoxValue(v, lambda)
}

// ForecastPath iterates the fitted model's state forward and returns
// the h-step-ahead means and forecast error variances, both on the
// transformed scale.
func ForecastPath(model *models.FittedModel, steps int) (means, variances []float64) {
	matrices := rebuild(model)

	means = matrices.forecastMeans(model.FinalState, steps)

	weights := matrices.impulseWeights(steps)
	variances = make([]float64, steps)
	cumulative := 1.0
	variances[0] = model.Variance
	for h := 1; h < steps; h++ {
		w := weights[h-1]
		cumulative += w * w
		variances[h] = model.Variance * cumulative
	}
	return means, variances
}

// rebuild reconstructs the system matrices from persisted parameters
func rebuild(model *models.FittedModel) *systemMatrices {
	phi := 1.0
	if model.Spec.UseDampedTrend {
		phi = model.Phi
	}
	return buildMatrices(model.Spec, parameters{
		alpha:  model.Alpha,
		beta:   model.Beta,
		phi:    phi,
		gammas: model.Gammas,
		ar:     model.ARCoeffs,
		ma:     model.MACoeffs,
	})
}
