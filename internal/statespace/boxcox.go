package statespace

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/inferloop/bats/pkg/errors"
)

// BoxCox applies the Box-Cox power transform with the given lambda.
// All values must be strictly positive.
func BoxCox(values []float64, lambda float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return nil, errors.WrapError(errors.ErrBoxCoxDomain,
				errors.ErrorTypeFitting, errors.CodeBoxCoxDomain,
				"series contains non-positive values")
		}
		if lambda == 0 {
			out[i] = math.Log(v)
		} else {
			out[i] = (math.Pow(v, lambda) - 1) / lambda
		}
	}
	return out, nil
}

// InverseBoxCox undoes the transform. Values that would leave the
// transform's range (lambda*x + 1 <= 0) are clamped to zero.
func InverseBoxCox(values []float64, lambda float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = inverseBoxCoxValue(v, lambda)
	}
	return out
}

func inverseBoxCoxValue(v, lambda float64) float64 {
	if lambda == 0 {
		return math.Exp(v)
	}
	base := lambda*v + 1
	if base <= 0 {
		return 0
	}
	return math.Pow(base, 1/lambda)
}

// EstimateLambda profiles the Gaussian log-likelihood of the transformed
// series over a lambda grid on [0, 1] and returns the maximizer. The
// Jacobian term keeps likelihoods comparable across lambdas.
func EstimateLambda(values []float64) (float64, error) {
	sumLog := 0.0
	for _, v := range values {
		if v <= 0 {
			return 0, errors.WrapError(errors.ErrBoxCoxDomain,
				errors.ErrorTypeFitting, errors.CodeBoxCoxDomain,
				"series contains non-positive values")
		}
		sumLog += math.Log(v)
	}

	n := float64(len(values))
	bestLambda := 1.0
	bestLogLik := math.Inf(-1)

	for lambda := 0.0; lambda <= 1.0+1e-9; lambda += 0.05 {
		transformed, err := BoxCox(values, lambda)
		if err != nil {
			return 0, err
		}
		variance := stat.Variance(transformed, nil)
		if variance <= 0 {
			continue
		}
		logLik := -0.5*n*math.Log(variance) + (lambda-1)*sumLog
		if logLik > bestLogLik {
			bestLogLik = logLik
			bestLambda = lambda
		}
	}
	return bestLambda, nil
}
