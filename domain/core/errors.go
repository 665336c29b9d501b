package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrTrialNotFound = fmt.Errorf("%w: trial", ErrNotFound)
	ErrRunNotFound   = fmt.Errorf("%w: run", ErrNotFound)

	// Data sufficiency errors
	// ErrEmptyCohort: stability checking needs at least two distinct cohorts.
	ErrEmptyCohort = errors.New("insufficient cohort variation")
	// ErrInsufficientData: a bin with zero total population makes rates undefined.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Constraint errors
	// ErrUnsatisfiableConstraint: hard constraints contradict each other and no
	// sequence of merges can produce a valid bin set.
	ErrUnsatisfiableConstraint = errors.New("unsatisfiable binning constraint")

	// Validation errors
	ErrInvalidPartition = errors.New("invalid initial partition")
	ErrInvalidConfig    = errors.New("invalid binning configuration")
)

// Error constructors with context
func NewEmptyCohortError(feature string, distinct int) error {
	return fmt.Errorf("%w: feature %s has %d distinct cohort(s), need at least 2", ErrEmptyCohort, feature, distinct)
}

func NewInsufficientDataError(feature string, binIndex int) error {
	return fmt.Errorf("%w: feature %s bin %d has zero population", ErrInsufficientData, feature, binIndex)
}

func NewUnsatisfiableConstraintError(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnsatisfiableConstraint, reason)
}

func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrEmptyCohort) || errors.Is(err, ErrInsufficientData)
}

// IsTrialRecoverable reports whether the search adapter may record the error as
// a failed trial and keep exploring, rather than aborting the whole search.
func IsTrialRecoverable(err error) bool {
	return errors.Is(err, ErrEmptyCohort) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUnsatisfiableConstraint)
}
