// Package statespace fits a single BATS configuration: Box-Cox
// transform, exponential smoothing state-space recursion, ARMA residual
// correction and AIC scoring.
package statespace

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"

	"github.com/inferloop/bats/internal/diagnostics"
	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/interfaces"
	"github.com/inferloop/bats/pkg/models"
)

// minimum seasonal cycles the series must cover for a seasonal fit
const minSeasonalCycles = 2

// penalty returned by the objective outside the admissible region
const boundPenalty = 1e100

// Config tunes the numeric optimization
type Config struct {
	// MaxIterations bounds the Nelder-Mead iterations per model
	MaxIterations int `mapstructure:"max_iterations" json:"max_iterations"`

	// ConvergenceTol is the absolute function convergence tolerance
	ConvergenceTol float64 `mapstructure:"convergence_tol" json:"convergence_tol"`

	// ResidualAlpha is the significance level of the Ljung-Box check
	// gating the ARMA residual search
	ResidualAlpha float64 `mapstructure:"residual_alpha" json:"residual_alpha"`
}

// DefaultConfig returns the default fitter configuration
func DefaultConfig() *Config {
	return &Config{
		MaxIterations:  2000,
		ConvergenceTol: 1e-8,
		ResidualAlpha:  0.05,
	}
}

// Fitter estimates one BATS model per component spec. It is stateless
// across Fit calls and safe for concurrent use.
type Fitter struct {
	config *Config
	logger *logrus.Logger
	sink   interfaces.WarningSink
}

// NewFitter creates a fitter with the given configuration
func NewFitter(config *Config, logger *logrus.Logger) *Fitter {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Fitter{config: config, logger: logger}
}

// WithSink returns a fitter that reports residual diagnostics to the
// given sink. The receiver is unchanged.
func (f *Fitter) WithSink(sink interfaces.WarningSink) *Fitter {
	copied := *f
	copied.sink = sink
	return &copied
}

// Fit implements interfaces.Fitter. It validates the series against the
// spec, estimates the Box-Cox lambda when requested, optimizes the
// smoothing parameters, and, for specs with ARMA errors enabled, tries
// small ARMA orders on the residuals keeping the best AIC.
func (f *Fitter) Fit(ctx context.Context, series *models.TimeSeries, spec models.ComponentSpec) (*models.FittedModel, error) {
	if err := f.validate(series, spec); err != nil {
		return nil, err
	}

	values := series.Values()
	lambda := 1.0
	sumLogY := 0.0
	observations := values
	if spec.UseBoxCox {
		var err error
		lambda, err = EstimateLambda(values)
		if err != nil {
			return nil, err
		}
		observations, err = BoxCox(values, lambda)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			sumLogY += math.Log(v)
		}
	}

	// Base model without ARMA correction
	model, err := f.fitOrder(ctx, observations, spec, models.ARMAOrder{})
	if err != nil {
		return nil, err
	}

	if spec.UseARMAErrors {
		model = f.searchARMAOrders(ctx, observations, spec, model)
	}

	// A non-finite AIC is left on the model; the selector treats it as
	// a soft failure rather than an error.
	finalizeModel(model, spec, lambda, sumLogY, len(values))
	return model, nil
}

// validate checks the series preconditions the fitter owns
func (f *Fitter) validate(series *models.TimeSeries, spec models.ComponentSpec) error {
	if series == nil || series.Len() == 0 {
		return errors.WrapError(errors.ErrEmptySeries,
			errors.ErrorTypeValidation, errors.CodeEmptySeries,
			"cannot fit an empty series")
	}
	if series.HasMissing() {
		return errors.WrapError(errors.ErrMissingValues,
			errors.ErrorTypeValidation, errors.CodeMissingValues,
			"series contains NaN or infinite observations")
	}
	if maxPeriod := spec.MaxSeasonalPeriod(); maxPeriod > 0 {
		if series.Len() < minSeasonalCycles*maxPeriod {
			return errors.WrapError(errors.ErrSeriesTooShort,
				errors.ErrorTypeValidation, errors.CodeSeriesTooShort,
				fmt.Sprintf("%d observations cover fewer than %d cycles of period %d",
					series.Len(), minSeasonalCycles, maxPeriod))
		}
	}
	if spec.UseBoxCox && !series.AllPositive() {
		return errors.WrapError(errors.ErrBoxCoxDomain,
			errors.ErrorTypeFitting, errors.CodeBoxCoxDomain,
			"box-cox requires strictly positive observations")
	}
	return nil
}

// fitOrder optimizes the smoothing and ARMA parameters for one concrete
// ARMA order and returns the model scored on the transformed scale.
func (f *Fitter) fitOrder(ctx context.Context, observations []float64, spec models.ComponentSpec, order models.ARMAOrder) (*models.FittedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(errors.ErrFittingCancelled,
			errors.ErrorTypeFitting, errors.CodeFitCancelled, err.Error())
	}

	seed := seedState(observations, spec, order)
	enc := newEncoding(spec, order)

	objective := func(x []float64) float64 {
		params, ok := enc.decode(x)
		if !ok {
			return boundPenalty
		}
		matrices := buildMatrices(spec, params)
		residuals, _, _ := matrices.filter(observations, seed)
		sse := 0.0
		for _, e := range residuals {
			sse += e * e
		}
		if math.IsNaN(sse) || math.IsInf(sse, 0) || sse <= 0 {
			return boundPenalty
		}
		return float64(len(observations)) * math.Log(sse)
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		MajorIterations: f.config.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   f.config.ConvergenceTol,
			Iterations: 100,
		},
	}

	result, err := optimize.Minimize(problem, enc.initial(), settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return nil, errors.WrapError(errors.ErrFitNotConverged,
			errors.ErrorTypeFitting, errors.CodeNotConverged, err.Error())
	}
	if math.IsNaN(result.F) || result.F >= boundPenalty {
		return nil, errors.WrapError(errors.ErrFitNotConverged,
			errors.ErrorTypeFitting, errors.CodeNotConverged,
			"objective did not reach an admissible optimum")
	}

	params, ok := enc.decode(result.X)
	if !ok {
		return nil, errors.WrapError(errors.ErrFitNotConverged,
			errors.ErrorTypeFitting, errors.CodeNotConverged,
			"optimum left the admissible parameter region")
	}

	matrices := buildMatrices(spec, params)
	residuals, _, finalState := matrices.filter(observations, seed)

	sse := 0.0
	for _, e := range residuals {
		sse += e * e
	}
	n := float64(len(observations))
	variance := sse / n

	model := &models.FittedModel{
		Spec:       spec,
		Alpha:      params.alpha,
		Gammas:     params.gammas,
		ARMA:       order,
		ARCoeffs:   params.ar,
		MACoeffs:   params.ma,
		SeedState:  seed,
		FinalState: finalState,
		Variance:   variance,
		Residuals:  residuals,
	}
	if spec.UseTrend {
		model.Beta = params.beta
		model.Phi = params.phi
	}
	return model, nil
}

// searchARMAOrders tries small ARMA orders on top of the base model and
// keeps whichever AIC wins. The search is skipped when the base
// residuals already look like white noise.
func (f *Fitter) searchARMAOrders(ctx context.Context, observations []float64, spec models.ComponentSpec, base *models.FittedModel) *models.FittedModel {
	check, err := diagnostics.LjungBox(base.Residuals, 0, f.config.ResidualAlpha)
	if err == nil && !check.Significant {
		f.logger.WithField("spec", spec.String()).
			Debug("Residuals show no autocorrelation, skipping ARMA search")
		return base
	}
	if err == nil && f.sink != nil {
		f.sink.Record(models.Warning{
			Kind: models.WarningResidualCheck,
			Spec: spec,
			Detail: fmt.Sprintf("residual autocorrelation Q=%.2f exceeds %.2f at %d lags, searching ARMA orders",
				check.Statistic, check.CriticalValue, check.Lags),
		})
	}

	candidates := []models.ARMAOrder{
		{P: 1, Q: 0}, {P: 0, Q: 1}, {P: 1, Q: 1},
		{P: 2, Q: 1}, {P: 1, Q: 2}, {P: 2, Q: 2},
	}

	best := base
	bestScore := transformedAIC(base, len(observations))
	for _, order := range candidates {
		if ctx.Err() != nil {
			break
		}
		candidate, err := f.fitOrder(ctx, observations, spec, order)
		if err != nil {
			f.logger.WithFields(logrus.Fields{
				"spec":  spec.String(),
				"order": fmt.Sprintf("ARMA(%d,%d)", order.P, order.Q),
				"error": err,
			}).Debug("ARMA order failed to fit")
			continue
		}
		if score := transformedAIC(candidate, len(observations)); score < bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

// transformedAIC scores a model before the Box-Cox Jacobian is applied.
// The Jacobian term is identical across ARMA orders of the same spec,
// so comparing without it picks the same winner.
func transformedAIC(m *models.FittedModel, n int) float64 {
	if m.Variance <= 0 {
		return math.Inf(1)
	}
	logLik := -0.5 * float64(n) * (math.Log(2*math.Pi) + math.Log(m.Variance) + 1)
	return -2*logLik + 2*float64(m.ParamCount())
}

// finalizeModel attaches the Box-Cox lambda and computes the final
// likelihood and AIC, including the Jacobian adjustment that keeps
// transformed and untransformed models comparable.
func finalizeModel(m *models.FittedModel, spec models.ComponentSpec, lambda, sumLogY float64, n int) {
	m.SampleSize = n
	if spec.UseBoxCox {
		m.Lambda = lambda
	}

	if m.Variance <= 0 {
		m.LogLikelihood = math.Inf(-1)
		m.AIC = math.Inf(1)
		return
	}

	logLik := -0.5 * float64(n) * (math.Log(2*math.Pi) + math.Log(m.Variance) + 1)
	if spec.UseBoxCox {
		logLik += (lambda - 1) * sumLogY
	}
	m.LogLikelihood = logLik
	m.AIC = -2*logLik + 2*float64(m.ParamCount())
}
