package models

// WarningKind classifies selection warnings
type WarningKind string

const (
	WarningFitFailed     WarningKind = "fit_failed"
	WarningNonFiniteAIC  WarningKind = "non_finite_aic"
	WarningModelChosen   WarningKind = "model_chosen"
	WarningResidualCheck WarningKind = "residual_check"
)

// Warning is a non-fatal diagnostic emitted during model selection.
// Warnings are collected through a sink, never printed directly.
type Warning struct {
	Kind   WarningKind   `json:"kind"`
	Spec   ComponentSpec `json:"spec"`
	Detail string        `json:"detail"`
}
