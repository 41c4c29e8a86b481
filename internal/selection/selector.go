// Package selection evaluates every configuration in a component grid
// and picks the best fitted model by AIC.
package selection

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/interfaces"
	"github.com/inferloop/bats/pkg/models"
)

// Selector fans fitting calls out over a component grid and reduces the
// results to the single lowest-AIC model.
type Selector struct {
	fitter interfaces.Fitter
	sink   interfaces.WarningSink
	logger *logrus.Logger
}

// NewSelector creates a selector. A nil sink discards warnings; a nil
// logger falls back to a default logrus logger.
func NewSelector(fitter interfaces.Fitter, sink interfaces.WarningSink, logger *logrus.Logger) *Selector {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Selector{
		fitter: fitter,
		sink:   sink,
		logger: logger,
	}
}

// Select fits every spec in the grid against the series and returns the
// outcome with the minimum-AIC candidate. nJobs bounds the number of
// concurrent fits; zero or negative means all available CPU cores.
//
// The reduction is independent of completion order: candidates keep
// their grid index and ties on AIC are broken by the lowest index.
func (s *Selector) Select(ctx context.Context, series *models.TimeSeries, grid []models.ComponentSpec, nJobs int) (*models.SelectionOutcome, error) {
	if len(grid) == 0 {
		return nil, errors.WrapError(errors.ErrEmptyGrid,
			errors.ErrorTypeValidation, errors.CodeEmptyGrid,
			"no model configurations to evaluate")
	}

	if nJobs <= 0 {
		nJobs = runtime.NumCPU()
	}
	if nJobs > len(grid) {
		nJobs = len(grid)
	}

	s.logger.WithFields(logrus.Fields{
		"candidates": len(grid),
		"n_jobs":     nJobs,
		"length":     series.Len(),
	}).Info("Evaluating model configuration grid")

	results := make([]models.CandidateResult, len(grid))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(nJobs)
	for i, spec := range grid {
		i, spec := i, spec
		group.Go(func() error {
			results[i] = s.fitOne(groupCtx, series, i, spec)
			return nil
		})
	}
	// Workers never return errors; failures live in the results slice.
	_ = group.Wait()

	return s.reduce(results)
}

// fitOne runs a single fit attempt, converting errors and panics into a
// failed CandidateResult so sibling fits are never aborted.
func (s *Selector) fitOne(ctx context.Context, series *models.TimeSeries, index int, spec models.ComponentSpec) (result models.CandidateResult) {
	result = models.CandidateResult{
		Index: index,
		Spec:  spec,
		AIC:   math.Inf(1),
	}

	defer func() {
		if r := recover(); r != nil {
			result.Model = nil
			result.AIC = math.Inf(1)
			result.FailureReason = errors.NewFittingError(errors.CodeFitPanic,
				fmt.Sprintf("fit panicked: %v", r)).Error()
			s.logger.WithField("spec", spec.String()).Errorf("Fit panicked: %v", r)
			s.sink.Record(models.Warning{
				Kind:   models.WarningFitFailed,
				Spec:   spec,
				Detail: result.FailureReason,
			})
		}
	}()

	if err := ctx.Err(); err != nil {
		result.FailureReason = errors.ErrFittingCancelled.Error()
		return result
	}

	model, err := s.fitter.Fit(ctx, series, spec)
	if err != nil {
		result.FailureReason = err.Error()
		s.logger.WithFields(logrus.Fields{
			"spec":  spec.String(),
			"error": err,
		}).Warn("Model configuration failed to fit")
		s.sink.Record(models.Warning{
			Kind:   models.WarningFitFailed,
			Spec:   spec,
			Detail: err.Error(),
		})
		return result
	}

	result.Model = model
	result.AIC = model.AIC

	if !model.IsViable() {
		// Soft failure: keep the model for diagnostics but exclude it
		// from the minimum reduction.
		result.AIC = math.Inf(1)
		result.FailureReason = errors.ErrNonFiniteScore.Error()
		s.sink.Record(models.Warning{
			Kind:   models.WarningNonFiniteAIC,
			Spec:   spec,
			Detail: fmt.Sprintf("AIC=%v", model.AIC),
		})
		return result
	}

	s.logger.WithFields(logrus.Fields{
		"spec": spec.String(),
		"aic":  model.AIC,
	}).Debug("Model configuration fitted")
	return result
}

// reduce picks the minimum-AIC viable candidate. Iterating in grid order
// with a strict comparison implements the first-discovered tie-break.
func (s *Selector) reduce(results []models.CandidateResult) (*models.SelectionOutcome, error) {
	bestIdx := -1
	for i, r := range results {
		if !r.Viable() {
			continue
		}
		if bestIdx < 0 || r.AIC < results[bestIdx].AIC {
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		failures := make([]errors.FitFailure, len(results))
		for i, r := range results {
			reason := r.FailureReason
			if reason == "" {
				reason = "unknown failure"
			}
			failures[i] = errors.FitFailure{
				Index:  r.Index,
				Spec:   r.Spec.String(),
				Reason: reason,
			}
		}
		return nil, errors.NewExhaustedError(failures)
	}

	best := results[bestIdx]
	s.sink.Record(models.Warning{
		Kind:   models.WarningModelChosen,
		Spec:   best.Spec,
		Detail: fmt.Sprintf("lowest AIC %.4f among %d candidates", best.AIC, len(results)),
	})
	s.logger.WithFields(logrus.Fields{
		"spec": best.Spec.String(),
		"aic":  best.AIC,
	}).Info("Best model configuration selected")

	return &models.SelectionOutcome{
		RunID:      uuid.New().String(),
		Best:       best,
		Candidates: results,
	}, nil
}
