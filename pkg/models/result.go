package models

import "math"

// CandidateResult pairs one attempted ComponentSpec with its outcome.
// Exactly one of Model or FailureReason is meaningful: a failed fit has
// a nil Model, an empty reason means the fit succeeded.
type CandidateResult struct {
	// Index is the spec's position in the deterministic grid order.
	// It is the tie-breaker when two candidates share the same AIC.
	Index int `json:"index"`

	Spec  ComponentSpec `json:"spec"`
	Model *FittedModel  `json:"model,omitempty"`

	// AIC of the fitted model; +Inf when the fit failed or produced a
	// non-finite score
	AIC float64 `json:"aic"`

	FailureReason string `json:"failure_reason,omitempty"`
}

// Viable reports whether this candidate may participate in selection
func (r CandidateResult) Viable() bool {
	return r.FailureReason == "" && r.Model != nil &&
		!math.IsNaN(r.AIC) && !math.IsInf(r.AIC, 0)
}

// SelectionOutcome is the result of evaluating a full component grid:
// the winning candidate plus every attempted candidate for diagnostics.
// The caller owns the outcome exclusively once returned.
type SelectionOutcome struct {
	RunID      string            `json:"run_id"`
	Best       CandidateResult   `json:"best"`
	Candidates []CandidateResult `json:"candidates"`
	Warnings   []Warning         `json:"warnings,omitempty"`
}

// BestModel is a convenience accessor for the winning fitted model
func (o *SelectionOutcome) BestModel() *FittedModel {
	return o.Best.Model
}
