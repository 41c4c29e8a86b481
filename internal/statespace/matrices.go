package statespace

import (
	"gonum.org/v1/gonum/mat"

	"github.com/inferloop/bats/pkg/models"
)

// parameters is the full parameter set of one BATS configuration on the
// transformed scale. Phi is 1 for an undamped trend and unused without
// trend.
type parameters struct {
	alpha  float64
	beta   float64
	phi    float64
	gammas []float64
	ar     []float64
	ma     []float64
}

// layout describes where each component lives inside the state vector:
// [level, trend?, seasonal blocks..., d lags..., e lags...]
type layout struct {
	trend       bool
	periods     []int
	p, q        int
	trendIdx    int
	seasonStart []int
	dStart      int
	eStart      int
	dim         int
}

func newLayout(spec models.ComponentSpec, order models.ARMAOrder) layout {
	l := layout{
		trend:   spec.UseTrend,
		periods: spec.SeasonalPeriods,
		p:       order.P,
		q:       order.Q,
	}

	idx := 1
	if l.trend {
		l.trendIdx = idx
		idx++
	}
	l.seasonStart = make([]int, len(l.periods))
	for i, m := range l.periods {
		l.seasonStart[i] = idx
		idx += m
	}
	l.dStart = idx
	idx += l.p
	l.eStart = idx
	idx += l.q
	l.dim = idx
	return l
}

// systemMatrices is the linear innovations form of the model:
//
//	y_t = w'x_{t-1} + e_t
//	x_t = F x_{t-1} + g e_t
type systemMatrices struct {
	layout layout
	w      *mat.VecDense
	F      *mat.Dense
	g      *mat.VecDense
}

// buildMatrices assembles w, F and g for the given spec and parameters,
// following the innovations state-space form of De Livera, Hyndman and
// Snyder (2011).
func buildMatrices(spec models.ComponentSpec, params parameters) *systemMatrices {
	order := models.ARMAOrder{P: len(params.ar), Q: len(params.ma)}
	l := newLayout(spec, order)

	w := mat.NewVecDense(l.dim, nil)
	F := mat.NewDense(l.dim, l.dim, nil)
	g := mat.NewVecDense(l.dim, nil)

	phi := 1.0
	if l.trend {
		phi = params.phi
	}

	// Observation vector: level, damped trend, the oldest element of
	// each seasonal block, and the ARMA coefficient weights on the
	// lagged d and e states.
	w.SetVec(0, 1)
	if l.trend {
		w.SetVec(l.trendIdx, phi)
	}
	for i, m := range l.periods {
		w.SetVec(l.seasonStart[i]+m-1, 1)
	}
	for j, coeff := range params.ar {
		w.SetVec(l.dStart+j, coeff)
	}
	for j, coeff := range params.ma {
		w.SetVec(l.eStart+j, coeff)
	}

	// armaRow spreads the ARMA feedback scaled by a smoothing weight
	// into an F row; the d_t innovation reaches every smoothed state.
	armaRow := func(row int, weight float64) {
		for j, coeff := range params.ar {
			F.Set(row, l.dStart+j, weight*coeff)
		}
		for j, coeff := range params.ma {
			F.Set(row, l.eStart+j, weight*coeff)
		}
	}

	// Level
	F.Set(0, 0, 1)
	if l.trend {
		F.Set(0, l.trendIdx, phi)
	}
	armaRow(0, params.alpha)
	g.SetVec(0, params.alpha)

	// Trend
	if l.trend {
		F.Set(l.trendIdx, l.trendIdx, phi)
		armaRow(l.trendIdx, params.beta)
		g.SetVec(l.trendIdx, params.beta)
	}

	// Seasonal blocks rotate: the refreshed s_t value takes the block's
	// oldest element plus the smoothed innovation, and the remaining
	// rows shift down by one.
	for i, m := range l.periods {
		start := l.seasonStart[i]
		F.Set(start, start+m-1, 1)
		armaRow(start, params.gammas[i])
		g.SetVec(start, params.gammas[i])
		for row := 1; row < m; row++ {
			F.Set(start+row, start+row-1, 1)
		}
	}

	// ARMA d lags
	if l.p > 0 {
		armaRow(l.dStart, 1)
		g.SetVec(l.dStart, 1)
		for row := 1; row < l.p; row++ {
			F.Set(l.dStart+row, l.dStart+row-1, 1)
		}
	}

	// ARMA e lags
	if l.q > 0 {
		g.SetVec(l.eStart, 1)
		for row := 1; row < l.q; row++ {
			F.Set(l.eStart+row, l.eStart+row-1, 1)
		}
	}

	return &systemMatrices{layout: l, w: w, F: F, g: g}
}

// filter runs the innovations recursion over the observations starting
// from the seed state. It returns the residuals, the fitted one-step
// predictions and the state after the last observation.
func (m *systemMatrices) filter(observations []float64, seed []float64) (residuals, fitted []float64, finalState []float64) {
	x := mat.NewVecDense(m.layout.dim, nil)
	copy(x.RawVector().Data, seed)

	next := mat.NewVecDense(m.layout.dim, nil)
	scaled := mat.NewVecDense(m.layout.dim, nil)

	residuals = make([]float64, len(observations))
	fitted = make([]float64, len(observations))

	for t, y := range observations {
		yhat := mat.Dot(m.w, x)
		e := y - yhat
		fitted[t] = yhat
		residuals[t] = e

		next.MulVec(m.F, x)
		scaled.ScaleVec(e, m.g)
		next.AddVec(next, scaled)
		x.CopyVec(next)
	}

	finalState = make([]float64, m.layout.dim)
	copy(finalState, x.RawVector().Data)
	return residuals, fitted, finalState
}

// forecastMeans iterates the transition with zero innovations to obtain
// h-step-ahead means on the transformed scale.
func (m *systemMatrices) forecastMeans(state []float64, steps int) []float64 {
	x := mat.NewVecDense(m.layout.dim, nil)
	copy(x.RawVector().Data, state)

	next := mat.NewVecDense(m.layout.dim, nil)
	means := make([]float64, steps)
	for h := 0; h < steps; h++ {
		means[h] = mat.Dot(m.w, x)
		next.MulVec(m.F, x)
		x.CopyVec(next)
	}
	return means
}

// impulseWeights returns psi_1..psi_{steps-1}, the moving-average
// weights w'F^{j-1}g used to accumulate forecast error variance.
func (m *systemMatrices) impulseWeights(steps int) []float64 {
	if steps <= 1 {
		return nil
	}
	v := mat.NewVecDense(m.layout.dim, nil)
	v.CopyVec(m.g)
	next := mat.NewVecDense(m.layout.dim, nil)

	weights := make([]float64, steps-1)
	for j := 0; j < steps-1; j++ {
		weights[j] = mat.Dot(m.w, v)
		next.MulVec(m.F, v)
		v.CopyVec(next)
	}
	return weights
}
