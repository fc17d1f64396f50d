// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	// ErrInvalidGeometry indicates the curve sizes are inconsistent.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidOption indicates a session option is out of range.
	ErrInvalidOption = errors.New("invalid option")

	// ErrInvalidCycles indicates a measurement was requested with fewer than
	// one cycle.
	ErrInvalidCycles = errors.New("cycles must be at least 1")

	// ErrNonMonotonicInput indicates a curve decreases somewhere.
	ErrNonMonotonicInput = errors.New("non-monotonic input")

	// ErrSearchFailed indicates the fine curve could not be searched, as it is
	// empty or contains NaN values.
	ErrSearchFailed = errors.New("search failed")

	// ErrNoLUT indicates an operation requires a LUT that has not been built.
	ErrNoLUT = errors.New("no LUT has been built")
)

// NonMonotonicError identifies the first point at which a curve decreases.
type NonMonotonicError struct {
	// Index of the point that is less than its predecessor.
	Index int

	// Prev is the value at Index-1.
	Prev float64

	// Value is the value at Index.
	Value float64
}

func (e NonMonotonicError) Error() string {
	return fmt.Sprintf("non-monotonic input at index %d: %g follows %g", e.Index, e.Value, e.Prev)
}

// Unwrap returns ErrNonMonotonicInput.
func (e NonMonotonicError) Unwrap() error {
	return ErrNonMonotonicInput
}

// MeasureError identifies where a measurement pass was aborted by a
// collaborator fault.
type MeasureError struct {
	Cycle int
	Code  int
	Err   error
}

func (e MeasureError) Error() string {
	return fmt.Sprintf("measure cycle %d code %d: %s", e.Cycle, e.Code, e.Err)
}

// Unwrap returns the underlying collaborator error.
func (e MeasureError) Unwrap() error {
	return e.Err
}

// IsDiagnostic returns true if err only reports suspect data.
//
// Diagnostic errors are returned alongside a fully populated result that
// callers may choose to use anyway.
func IsDiagnostic(err error) bool {
	return errors.Is(err, ErrNonMonotonicInput) || errors.Is(err, ErrSearchFailed)
}

// CheckMonotonic returns a NonMonotonicError identifying the first value that
// is less than its predecessor, or nil if the values are non-decreasing.
//
// NaN values compare false and so are not reported.
func CheckMonotonic[T constraints.Integer | constraints.Float](values []T) error {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return NonMonotonicError{
				Index: i,
				Prev:  float64(values[i-1]),
				Value: float64(values[i]),
			}
		}
	}
	return nil
}
