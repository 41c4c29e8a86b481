// Package diagnostics provides residual autocorrelation checks used to
// decide whether ARMA error modeling is worth attempting.
package diagnostics

import (
	"errors"
	"math"
)

// ErrTooFewObservations is returned when a test has too little data
var ErrTooFewObservations = errors.New("autocorrelation analysis requires at least 10 observations")

// LjungBoxResult contains the outcome of a Ljung-Box portmanteau test
type LjungBoxResult struct {
	Statistic        float64   `json:"statistic"`
	PValue           float64   `json:"p_value"`
	CriticalValue    float64   `json:"critical_value"`
	Lags             int       `json:"lags"`
	SampleSize       int       `json:"sample_size"`
	Autocorrelations []float64 `json:"autocorrelations"`

	// Significant is true when the null hypothesis of no
	// autocorrelation is rejected at the given alpha level.
	Significant bool `json:"significant"`
}

// LjungBox tests a residual series for autocorrelation up to the given
// number of lags. lags <= 0 picks a default of min(log n, n/4).
func LjungBox(data []float64, lags int, alpha float64) (*LjungBoxResult, error) {
	n := len(data)
	if n < 10 {
		return nil, ErrTooFewObservations
	}

	if lags <= 0 {
		lags = defaultLags(n)
	}
	if lags >= n {
		return nil, errors.New("number of lags must be less than sample size")
	}

	autocorr, err := Autocorrelations(data, lags)
	if err != nil {
		return nil, err
	}

	var q float64
	for k := 1; k <= lags; k++ {
		rk := autocorr[k-1]
		q += (rk * rk) / float64(n-k)
	}
	q *= float64(n) * (float64(n) + 2)

	df := float64(lags)
	pValue := 1 - chiSquareCDF(q, df)
	critical := chiSquareQuantile(1-alpha, df)

	return &LjungBoxResult{
		Statistic:        q,
		PValue:           pValue,
		CriticalValue:    critical,
		Lags:             lags,
		SampleSize:       n,
		Autocorrelations: autocorr,
		Significant:      q > critical,
	}, nil
}

// Autocorrelations calculates sample autocorrelations for lags 1..maxLag
func Autocorrelations(data []float64, maxLag int) ([]float64, error) {
	n := len(data)
	if maxLag >= n {
		return nil, errors.New("maximum lag must be less than sample size")
	}

	mean := 0.0
	for _, x := range data {
		mean += x
	}
	mean /= float64(n)

	autocovar := make([]float64, maxLag+1)
	for i := 0; i < n; i++ {
		diff := data[i] - mean
		autocovar[0] += diff * diff
	}
	autocovar[0] /= float64(n)

	// A constant series leaves floating-point dust in autocovar[0]; a
	// variance that small relative to the data scale is zero, and all
	// autocorrelations with it.
	autocorr := make([]float64, maxLag)
	if autocovar[0] <= 1e-12*math.Max(1, mean*mean) {
		return autocorr, nil
	}

	for lag := 1; lag <= maxLag; lag++ {
		for i := lag; i < n; i++ {
			autocovar[lag] += (data[i] - mean) * (data[i-lag] - mean)
		}
		autocovar[lag] /= float64(n)
	}

	for lag := 1; lag <= maxLag; lag++ {
		autocorr[lag-1] = autocovar[lag] / autocovar[0]
	}
	return autocorr, nil
}

func defaultLags(n int) int {
	lags := int(math.Log(float64(n)))
	if n/4 < lags {
		lags = n / 4
	}
	if lags < 1 {
		lags = 1
	}
	return lags
}

// chiSquareCDF evaluates the chi-square CDF via the Wilson-Hilferty
// normal approximation, which is accurate enough for a yes/no
// autocorrelation decision.
func chiSquareCDF(x, df float64) float64 {
	if x <= 0 || df <= 0 {
		return 0
	}
	h := 2.0 / (9.0 * df)
	z := (math.Pow(x/df, 1.0/3.0) - 1 + h) / math.Sqrt(h)
	return normalCDF(z)
}

func chiSquareQuantile(p, df float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.Inf(1)
	}
	h := 2.0 / (9.0 * df)
	z := normalQuantile(p)
	x := df * math.Pow(1-h+z*math.Sqrt(h), 3)
	return math.Max(0, x)
}

func normalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

// normalQuantile is Acklam's rational approximation of the standard
// normal inverse CDF.
func normalQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	if p == 0.5 {
		return 0
	}

	a := []float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02, 1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := []float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02, 6.680131188771972e+01, -1.328068155288572e+01}
	c := []float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00, -2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := []float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00, 3.754408661907416e+00}

	var x float64
	switch {
	case p < 0.02425:
		q := math.Sqrt(-2 * math.Log(p))
		x = (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) / ((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= 0.97575:
		q := p - 0.5
		r := q * q
		x = (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q / (((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1 - p))
		x = -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) / ((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
	return x
}
