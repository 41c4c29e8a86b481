// Package forecast produces point forecasts and prediction intervals
// from a fitted model.
package forecast

import (
	"math"

	"github.com/inferloop/bats/internal/statespace"
	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/models"
)

// Point is one forecast step with its prediction interval
type Point struct {
	Step  int     `json:"step"`
	Value float64 `json:"value"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Result holds the forecast path and the interval confidence level
type Result struct {
	Points []Point `json:"points"`
	Level  float64 `json:"level"`
}

// Horizon forecasts the given number of steps ahead of the fitted
// model's last observation. level is the prediction interval
// confidence, e.g. 0.95.
func Horizon(model *models.FittedModel, steps int, level float64) (*Result, error) {
	if model == nil {
		return nil, errors.WrapError(errors.ErrInvalidSpecification,
			errors.ErrorTypeValidation, errors.CodeInvalidSpec, "fitted model is required")
	}
	if steps <= 0 {
		return nil, errors.WrapError(errors.ErrInvalidSpecification,
			errors.ErrorTypeValidation, errors.CodeInvalidSpec, "forecast steps must be positive")
	}
	if level <= 0 || level >= 1 {
		return nil, errors.WrapError(errors.ErrInvalidSpecification,
			errors.ErrorTypeValidation, errors.CodeInvalidSpec, "confidence level must be in (0, 1)")
	}

	means, variances := statespace.ForecastPath(model, steps)

	z := normalQuantile(0.5 + level/2)
	points := make([]Point, steps)
	for h := 0; h < steps; h++ {
		sd := math.Sqrt(variances[h])
		value := means[h]
		lower := value - z*sd
		upper := value + z*sd
		if model.Spec.UseBoxCox {
			value = statespace.InverseBoxCoxValue(value, model.Lambda)
			lower = statespace.InverseBoxCoxValue(lower, model.Lambda)
			upper = statespace.InverseBoxCoxValue(upper, model.Lambda)
		}
		points[h] = Point{Step: h + 1, Value: value, Lower: lower, Upper: upper}
	}

	return &Result{Points: points, Level: level}, nil
}

// normalQuantile is the standard normal inverse CDF for the usual
// interval levels, with linear bisection refinement for the rest.
func normalQuantile(p float64) float64 {
	switch p {
	case 0.95:
		return 1.6449
	case 0.975:
		return 1.9600
	case 0.995:
		return 2.5758
	}
	// Bisection over the erfc-based CDF
	lo, hi := -10.0, 10.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if 0.5*math.Erfc(-mid/math.Sqrt2) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
