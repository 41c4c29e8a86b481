// Package components expands partially-specified model switches into the
// exhaustive grid of concrete configurations to evaluate.
package components

import (
	"fmt"
	"sort"

	"github.com/inferloop/bats/pkg/errors"
	"github.com/inferloop/bats/pkg/models"
)

// NormalizeSeasonalPeriods validates and canonicalizes the seasonal
// periods: strictly positive, deduplicated, ascending. A nil or empty
// input means a non-seasonal model.
func NormalizeSeasonalPeriods(periods []int) ([]int, error) {
	if len(periods) == 0 {
		return nil, nil
	}

	seen := make(map[int]bool, len(periods))
	normalized := make([]int, 0, len(periods))
	for _, p := range periods {
		if p <= 0 {
			return nil, errors.WrapError(errors.ErrInvalidSeasonalPeriod,
				errors.ErrorTypeValidation, errors.CodeInvalidPeriod,
				fmt.Sprintf("seasonal period %d is not positive", p))
		}
		if p == 1 {
			// A period of one observation carries no seasonal signal
			continue
		}
		if !seen[p] {
			seen[p] = true
			normalized = append(normalized, p)
		}
	}
	sort.Ints(normalized)

	if len(normalized) == 0 {
		return nil, nil
	}
	return normalized, nil
}

// BuildGrid expands the switches into every admissible ComponentSpec.
//
// Each switch left on auto contributes both its variants; fixed switches
// are held constant. The expansion order is fixed (box-cox outermost,
// then trend, then damping, then ARMA) so repeated calls produce
// identical sequences. The damping axis only exists under trend: when a
// spec has trend disabled, only the undamped variant is produced, and a
// caller that forces damping on together with trend off gets an error
// because no valid configuration exists.
//
// Seasonal periods are not searched over; the normalized list is
// attached to every spec as-is.
func BuildGrid(switches models.ComponentSwitches, seasonalPeriods []int) ([]models.ComponentSpec, error) {
	periods, err := NormalizeSeasonalPeriods(seasonalPeriods)
	if err != nil {
		return nil, err
	}

	var grid []models.ComponentSpec
	for _, boxCox := range switches.UseBoxCox.Candidates() {
		for _, trend := range switches.UseTrend.Candidates() {
			for _, damped := range dampingCandidates(switches.UseDampedTrend, trend) {
				for _, arma := range switches.UseARMAErrors.Candidates() {
					grid = append(grid, models.ComponentSpec{
						UseBoxCox:       boxCox,
						UseTrend:        trend,
						UseDampedTrend:  damped,
						UseARMAErrors:   arma,
						SeasonalPeriods: periods,
					})
				}
			}
		}
	}

	if len(grid) == 0 {
		return nil, errors.WrapError(errors.ErrEmptyGrid,
			errors.ErrorTypeValidation, errors.CodeEmptyGrid,
			"fixed switches are contradictory: damped trend requires trend")
	}
	return grid, nil
}

// dampingCandidates resolves the damping axis under a concrete trend
// value. Without trend there is nothing to damp, so the axis collapses
// to the single undamped variant; a user-forced damped trend without
// trend yields no candidates at all.
func dampingCandidates(damped models.Switch, trend bool) []bool {
	if trend {
		return damped.Candidates()
	}
	if damped == models.SwitchOn {
		return nil
	}
	return []bool{false}
}
