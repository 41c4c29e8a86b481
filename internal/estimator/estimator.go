// Package estimator wires grid building, fitting and selection into the
// user-facing model search.
package estimator

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/bats/internal/components"
	"github.com/inferloop/bats/internal/selection"
	"github.com/inferloop/bats/internal/statespace"
	"github.com/inferloop/bats/pkg/interfaces"
	"github.com/inferloop/bats/pkg/models"
)

// Options configures an estimator run. The zero value searches every
// component axis except ARMA errors, which default to enabled the way
// the BATS literature suggests.
type Options struct {
	UseBoxCox       models.Switch
	UseTrend        models.Switch
	UseDampedTrend  models.Switch
	UseARMAErrors   models.Switch
	SeasonalPeriods []int

	// NJobs bounds parallel fit workers; <= 0 uses all CPU cores
	NJobs int

	// ShowWarnings forwards collected warnings to the logger after the
	// search finishes
	ShowWarnings bool

	// Fitting tunes the numeric optimization; nil uses defaults
	Fitting *statespace.Config
}

// DefaultOptions mirrors the canonical BATS constructor defaults:
// box-cox, trend and damping searched, ARMA error correction enabled.
func DefaultOptions() Options {
	return Options{
		UseBoxCox:      models.SwitchAuto,
		UseTrend:       models.SwitchAuto,
		UseDampedTrend: models.SwitchAuto,
		UseARMAErrors:  models.SwitchOn,
		ShowWarnings:   true,
	}
}

// Estimator fits and selects the best BATS model for a series
type Estimator struct {
	options Options

	// fitter overrides the default statespace fitter when set
	fitter interfaces.Fitter
	logger *logrus.Logger
}

// New creates an estimator. A nil logger falls back to a default one.
func New(options Options, logger *logrus.Logger) *Estimator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Estimator{
		options: options,
		logger:  logger,
	}
}

// WithFitter swaps the fitting collaborator, mainly for tests
func (e *Estimator) WithFitter(fitter interfaces.Fitter) *Estimator {
	e.fitter = fitter
	return e
}

// Fit expands the component grid, evaluates every configuration and
// returns the outcome holding the lowest-AIC model plus all candidates
// and accumulated warnings.
func (e *Estimator) Fit(ctx context.Context, series *models.TimeSeries) (*models.SelectionOutcome, error) {
	switches := models.ComponentSwitches{
		UseBoxCox:      e.options.UseBoxCox,
		UseTrend:       e.options.UseTrend,
		UseDampedTrend: e.options.UseDampedTrend,
		UseARMAErrors:  e.options.UseARMAErrors,
	}

	grid, err := components.BuildGrid(switches, e.options.SeasonalPeriods)
	if err != nil {
		return nil, err
	}

	sink := selection.NewCollectorSink()
	fitter := e.fitter
	if fitter == nil {
		fitter = statespace.NewFitter(e.options.Fitting, e.logger).WithSink(sink)
	}
	selector := selection.NewSelector(fitter, sink, e.logger)

	outcome, err := selector.Select(ctx, series, grid, e.options.NJobs)
	if err != nil {
		return nil, err
	}

	outcome.Warnings = sink.Warnings()
	if e.options.ShowWarnings {
		for _, w := range outcome.Warnings {
			if w.Kind == models.WarningModelChosen {
				continue // already logged by the selector
			}
			e.logger.WithFields(logrus.Fields{
				"kind": w.Kind,
				"spec": w.Spec.String(),
			}).Warn(w.Detail)
		}
	}
	return outcome, nil
}
