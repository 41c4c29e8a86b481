package statespace

import (
	"github.com/inferloop/bats/pkg/models"
)

// Admissible parameter bounds. These are box constraints enforced by
// penalty inside the objective; the traditional BATS admissibility
// region is tighter but the box keeps Nelder-Mead well-behaved.
const (
	minSmoothing = 1e-5
	maxSmoothing = 0.9999
	minDamping   = 0.8
	maxDamping   = 0.9999
	maxARMACoeff = 0.99
)

// encoding maps between the optimizer's flat vector and the structured
// parameter set of one spec + ARMA order.
type encoding struct {
	spec  models.ComponentSpec
	order models.ARMAOrder
}

func newEncoding(spec models.ComponentSpec, order models.ARMAOrder) encoding {
	return encoding{spec: spec, order: order}
}

// size is the optimizer dimension
func (e encoding) size() int {
	n := 1 // alpha
	if e.spec.UseTrend {
		n++ // beta
	}
	if e.spec.UseDampedTrend {
		n++ // phi
	}
	n += len(e.spec.SeasonalPeriods)
	n += e.order.P + e.order.Q
	return n
}

// initial returns the optimizer starting point
func (e encoding) initial() []float64 {
	x := make([]float64, 0, e.size())
	x = append(x, 0.09) // alpha
	if e.spec.UseTrend {
		x = append(x, 0.05) // beta
	}
	if e.spec.UseDampedTrend {
		x = append(x, 0.98) // phi
	}
	for range e.spec.SeasonalPeriods {
		x = append(x, 0.001) // gamma
	}
	for i := 0; i < e.order.P+e.order.Q; i++ {
		x = append(x, 0.05)
	}
	return x
}

// decode unpacks the optimizer vector, reporting false when any value
// leaves the admissible region.
func (e encoding) decode(x []float64) (parameters, bool) {
	var p parameters
	idx := 0

	p.alpha = x[idx]
	idx++
	if p.alpha < minSmoothing || p.alpha > maxSmoothing {
		return p, false
	}

	p.phi = 1.0
	if e.spec.UseTrend {
		p.beta = x[idx]
		idx++
		if p.beta < minSmoothing || p.beta > p.alpha {
			return p, false
		}
	}
	if e.spec.UseDampedTrend {
		p.phi = x[idx]
		idx++
		if p.phi < minDamping || p.phi > maxDamping {
			return p, false
		}
	}

	p.gammas = make([]float64, len(e.spec.SeasonalPeriods))
	for i := range p.gammas {
		p.gammas[i] = x[idx]
		idx++
		if p.gammas[i] < 0 || p.gammas[i] > maxSmoothing {
			return p, false
		}
	}

	p.ar = make([]float64, e.order.P)
	for i := range p.ar {
		p.ar[i] = x[idx]
		idx++
		if p.ar[i] < -maxARMACoeff || p.ar[i] > maxARMACoeff {
			return p, false
		}
	}
	p.ma = make([]float64, e.order.Q)
	for i := range p.ma {
		p.ma[i] = x[idx]
		idx++
		if p.ma[i] < -maxARMACoeff || p.ma[i] > maxARMACoeff {
			return p, false
		}
	}
	return p, true
}
