// Package errs defines the typed failures raised by the credit scoring engine.
// Each failure names the component that produced it so callers can report
// which stage of an assessment failed.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind string

const (
	KindValidation           Kind = "VALIDATION_ERROR"
	KindEstimatorUnavailable Kind = "ESTIMATOR_UNAVAILABLE"
	KindConfiguration        Kind = "CONFIGURATION_ERROR"
)

// Component names used in Error.Component.
const (
	ComponentRequest     = "request"
	ComponentRuleScorer  = "rule_scorer"
	ComponentNetwork     = "network_trust"
	ComponentStability   = "behavioral_stability"
	ComponentEstimator   = "probability_estimator"
	ComponentFusion      = "fusion_engine"
	ComponentPolicy      = "engine_policy"
	ComponentExplanation = "explainability"
)

// Error is a typed engine failure.
type Error struct {
	Kind      Kind   `json:"kind"`
	Component string `json:"component"`
	Field     string `json:"field,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrEstimatorUnavailable = &Error{Kind: KindEstimatorUnavailable}
	ErrConfiguration        = &Error{Kind: KindConfiguration}
)

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s[%s]", e.Kind, e.Component)
	if e.Field != "" {
		msg += fmt.Sprintf(" %s:", e.Field)
	}
	if e.Message != "" {
		msg += " " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation reports a missing or out-of-domain input field.
func Validation(field, format string, args ...any) *Error {
	return &Error{
		Kind:      KindValidation,
		Component: ComponentRequest,
		Field:     field,
		Message:   fmt.Sprintf(format, args...),
	}
}

// EstimatorUnavailable reports a failed, timed out or out-of-range estimator call.
func EstimatorUnavailable(cause error, format string, args ...any) *Error {
	return &Error{
		Kind:      KindEstimatorUnavailable,
		Component: ComponentEstimator,
		Message:   fmt.Sprintf(format, args...),
		Err:       cause,
	}
}

// Configuration reports an inconsistent engine policy.
func Configuration(field, format string, args ...any) *Error {
	return &Error{
		Kind:      KindConfiguration,
		Component: ComponentPolicy,
		Field:     field,
		Message:   fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
