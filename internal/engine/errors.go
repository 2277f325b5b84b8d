package engine

import (
	"errors"
	"fmt"
)

// ErrInsufficientCoverage is wrapped by CoverageError
var ErrInsufficientCoverage = errors.New("insufficient data coverage")

// CoverageError reports a run aborted because too few tickers had usable data
type CoverageError struct {
	Valid    int
	Total    int
	Required float64
}

// Error implements the error interface
func (e *CoverageError) Error() string {
	ratio := 0.0
	if e.Total > 0 {
		ratio = float64(e.Valid) / float64(e.Total)
	}
	return fmt.Sprintf("%v: %d of %d tickers usable (%.0f%%), need %.0f%%",
		ErrInsufficientCoverage, e.Valid, e.Total, ratio*100, e.Required*100)
}

// Unwrap lets errors.Is match ErrInsufficientCoverage
func (e *CoverageError) Unwrap() error {
	return ErrInsufficientCoverage
}
