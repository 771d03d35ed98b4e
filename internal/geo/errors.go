package geo

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCollection is returned by the Selector when it has nothing to choose from.
	ErrEmptyCollection = errors.New("geo: empty polygon collection")

	// ErrMissingCRS is returned when a raster or geometry carries no spatial reference.
	ErrMissingCRS = errors.New("geo: missing spatial reference")

	errEmptyResult = errors.New("empty result")
)

// OpError reports a failed geometric operation (difference, buffer, simplify,
// polygonize, ...). GEOS signals failures by panicking; those panics are
// recovered and surfaced as an OpError.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("geo: %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
