package statespace

import (
	"gonum.org/v1/gonum/mat"

	"github.com/inferloop/bats/pkg/models"
)

// seedState estimates the initial state vector by regressing the
// transformed observations on an intercept, a linear time index when
// the spec has trend, and per-period seasonal phase dummies. The normal
// equations carry a small ridge term so nested or overlapping seasonal
// periods cannot make the system singular.
func seedState(observations []float64, spec models.ComponentSpec, order models.ARMAOrder) []float64 {
	l := newLayout(spec, order)
	n := len(observations)

	cols := 1
	if spec.UseTrend {
		cols++
	}
	for _, m := range spec.SeasonalPeriods {
		cols += m - 1
	}

	X := mat.NewDense(n, cols, nil)
	y := mat.NewVecDense(n, nil)
	for t := 0; t < n; t++ {
		y.SetVec(t, observations[t])
		col := 0
		X.Set(t, col, 1)
		col++
		if spec.UseTrend {
			X.Set(t, col, float64(t))
			col++
		}
		for _, m := range spec.SeasonalPeriods {
			phase := t % m
			// The last phase is the baseline, absorbed by the intercept
			if phase < m-1 {
				X.Set(t, col+phase, 1)
			}
			col += m - 1
		}
	}

	coeffs := solveRidge(X, y)

	seed := make([]float64, l.dim)
	col := 0
	seed[0] = coeffs[col]
	col++
	if spec.UseTrend {
		seed[l.trendIdx] = coeffs[col]
		col++
	}

	for i, m := range spec.SeasonalPeriods {
		// Recover per-phase effects, center them to sum to zero and
		// move the offset into the level.
		effects := make([]float64, m)
		sum := 0.0
		for phase := 0; phase < m-1; phase++ {
			effects[phase] = coeffs[col+phase]
			sum += effects[phase]
		}
		mean := sum / float64(m)
		for phase := range effects {
			effects[phase] -= mean
		}
		seed[0] += mean
		col += m - 1

		// The block holds (s_0, s_-1, ..., s_-(m-1)); element j is next
		// consumed at observation m-1-j, so it seeds that phase.
		start := l.seasonStart[i]
		for j := 0; j < m; j++ {
			seed[start+j] = effects[m-1-j]
		}
	}

	// d and e lags seed at zero
	return seed
}

// solveRidge solves the least squares problem through the normal
// equations with a small ridge penalty.
func solveRidge(X *mat.Dense, y *mat.VecDense) []float64 {
	_, cols := X.Dims()

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	for i := 0; i < cols; i++ {
		xtx.Set(i, i, xtx.At(i, i)+1e-8)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), y)

	var solution mat.VecDense
	if err := solution.SolveVec(&xtx, &xty); err != nil {
		// Degenerate design: fall back to a flat seed at the mean
		mean := 0.0
		n, _ := X.Dims()
		for i := 0; i < n; i++ {
			mean += y.AtVec(i)
		}
		mean /= float64(n)
		coeffs := make([]float64, cols)
		coeffs[0] = mean
		return coeffs
	}

	coeffs := make([]float64, cols)
	for i := range coeffs {
		coeffs[i] = solution.AtVec(i)
	}
	return coeffs
}
