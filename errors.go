package codebook

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTrainingData is returned when the training set is empty.
	ErrNoTrainingData = errors.New("no training vectors")

	// ErrSeedRequired is returned by Design when the initial codebook size
	// is larger than one. Use DesignFrom with an explicit seed instead.
	ErrSeedRequired = errors.New("initial codebook size > 1 requires an explicit seed codebook")
)

// ErrDimensionMismatch indicates a vector/codebook dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }
