package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by every layer. Callers match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports a field outside its declared bound or an
// enumerated value outside its allowed set.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError.
func NewValidationError(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NotFoundError reports an identifier that did not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConditionKind names a non-fatal data-quality condition.
type ConditionKind string

const (
	ConditionOrphanSession    ConditionKind = "orphan_session"
	ConditionEmptyFeatures    ConditionKind = "empty_feature_vector"
	ConditionDuplicateSession ConditionKind = "duplicate_session"
)

// Condition is a reportable data-quality flag. It accompanies a zero or
// absent result instead of failing the computation.
type Condition struct {
	Kind    ConditionKind `json:"kind"`
	Subject string        `json:"subject"`
	Detail  string        `json:"detail,omitempty"`
}
