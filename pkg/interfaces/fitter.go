package interfaces

import (
	"context"

	"github.com/inferloop/bats/pkg/models"
)

// Fitter fits a single model configuration to a series. Implementations
// must be safe for concurrent use: Fit may be called from multiple
// goroutines with the same read-only series and distinct specs, and one
// call must never observe another call's state.
type Fitter interface {
	// Fit estimates one model for the given spec and returns it with a
	// finite AIC, or an error when the configuration cannot be fitted.
	Fit(ctx context.Context, series *models.TimeSeries, spec models.ComponentSpec) (*models.FittedModel, error)
}

// WarningSink collects non-fatal diagnostics raised during selection.
// Record is fire-and-forget: it must never block or fail the caller.
type WarningSink interface {
	Record(warning models.Warning)
}

// SeriesReader loads a time series from some input source
type SeriesReader interface {
	Read(ctx context.Context) (*models.TimeSeries, error)
}
