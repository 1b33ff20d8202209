package vecidx

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecidx/index"
)

var (
	// ErrNotFound is returned when a key does not exist in the index.
	ErrNotFound = errors.New("not found")

	// ErrNoEmbedder is returned by text operations on an index built
	// without an embedder.
	ErrNoEmbedder = errors.New("no embedder configured")

	// ErrUnknownIndexKind is returned when a snapshot names an index
	// implementation this build does not know.
	ErrUnknownIndexKind = errors.New("unknown index kind")

	// ErrZeroKey is returned when an operation is given the zero pk.Key.
	ErrZeroKey = errors.New("zero key")
)

// ErrDimensionMismatch indicates a vector or query whose dimensionality
// does not match the index.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidDimension indicates an invalid configured dimension.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// translateError normalizes index-layer errors into the package's
// exported error types.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var snf *index.ErrSlotNotFound
	if errors.As(err, &snf) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	var id *index.ErrInvalidDimension
	if errors.As(err, &id) {
		return &ErrInvalidDimension{Dimension: id.Dimension, cause: err}
	}

	return err
}
