package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors
var (
	// Specification errors
	ErrInvalidSpecification  = errors.New("invalid model specification")
	ErrInvalidSeasonalPeriod = errors.New("seasonal periods must be positive integers")
	ErrEmptyGrid             = errors.New("component grid expanded to zero entries")
	ErrEmptySeries           = errors.New("time series has no observations")
	ErrSeriesTooShort        = errors.New("time series too short for requested seasonal periods")
	ErrMissingValues         = errors.New("time series contains missing or non-finite values")

	// Fitting errors
	ErrFitNotConverged  = errors.New("parameter optimization did not converge")
	ErrBoxCoxDomain     = errors.New("box-cox transform requires strictly positive data")
	ErrNonFiniteScore   = errors.New("fitted model produced a non-finite AIC")
	ErrFittingExhausted = errors.New("no model configuration could be fitted")
	ErrFittingCancelled = errors.New("fitting cancelled")

	// Ingest errors
	ErrInputNotFound  = errors.New("input data not found")
	ErrInvalidInput   = errors.New("invalid input data")
	ErrSourceNotReady = errors.New("series source not connected")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing configuration")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeFitting       ErrorType = "fitting"
	ErrorTypeSelection     ErrorType = "selection"
	ErrorTypeIngest        ErrorType = "ingest"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewFittingError creates a fitting error
func NewFittingError(code, message string) *AppError {
	return NewAppError(ErrorTypeFitting, code, message)
}

// NewIngestError creates a series ingest error
func NewIngestError(code, message string) *AppError {
	return NewAppError(ErrorTypeIngest, code, message)
}

// FitFailure records why one grid entry could not be fitted
type FitFailure struct {
	Index  int    `json:"index"`
	Spec   string `json:"spec"`
	Reason string `json:"reason"`
}

// ExhaustedError is raised when every configuration in the grid failed
// to fit. It carries every per-spec failure so the caller can see why.
type ExhaustedError struct {
	Failures []FitFailure `json:"failures"`
}

// Error implements the error interface
func (e *ExhaustedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "all %d model configurations failed to fit:", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, "\n  [%d] %s: %s", f.Index, f.Spec, f.Reason)
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrFittingExhausted
func (e *ExhaustedError) Unwrap() error {
	return ErrFittingExhausted
}

// NewExhaustedError creates an ExhaustedError from per-spec failures
func NewExhaustedError(failures []FitFailure) *ExhaustedError {
	return &ExhaustedError{Failures: failures}
}

// Error codes for different error scenarios
const (
	// Specification error codes
	CodeInvalidSpec    = "INVALID_SPECIFICATION"
	CodeInvalidPeriod  = "INVALID_SEASONAL_PERIOD"
	CodeEmptyGrid      = "EMPTY_GRID"
	CodeEmptySeries    = "EMPTY_SERIES"
	CodeSeriesTooShort = "SERIES_TOO_SHORT"
	CodeMissingValues  = "MISSING_VALUES"

	// Fitting error codes
	CodeNotConverged   = "NOT_CONVERGED"
	CodeBoxCoxDomain   = "BOXCOX_DOMAIN"
	CodeNonFiniteScore = "NON_FINITE_SCORE"
	CodeFitPanic       = "FIT_PANIC"
	CodeFitCancelled   = "FIT_CANCELLED"
	CodeExhausted      = "FITTING_EXHAUSTED"

	// Ingest error codes
	CodeInputNotFound = "INPUT_NOT_FOUND"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeReadFailed    = "READ_FAILED"

	// Configuration error codes
	CodeInvalidConfig = "INVALID_CONFIGURATION"
	CodeMissingConfig = "MISSING_CONFIGURATION"
)
