// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package daclut characterises the transfer function of a DAC output as
// measured through an ADC input, and builds a lookup table that maps ADC
// codes back to the DAC position that produced them.
//
// The calibration pipeline runs four stages strictly in sequence:
//   - Measure drives the DAC through its full code range and records the
//     averaged and smoothed ADC response for each code (the raw curve).
//   - Interpolate linearly expands the raw curve to ADC code resolution
//     (the coarse curve).
//   - Refine further subdivides the coarse curve (the fine curve).
//   - BuildLUT inverts the fine curve into a table indexed by ADC code.
//
// Example of use:
//
//	s, err := daclut.NewSession(dac, adc)
//	if err != nil {
//		panic(err)
//	}
//	lut, err := s.Run(100)
//	if err != nil && !daclut.IsDiagnostic(err) {
//		panic(err)
//	}
//	fmt.Println(lut.Round())
package daclut

import (
	"fmt"
	"time"
)

// DAC sets the output code of a digital to analog converter.
//
// Errors are reserved for transport faults, such as a closed device.
type DAC interface {
	SetCode(code int) error
}

// ADC takes a single raw sample from an analog to digital converter.
//
// Errors are reserved for transport faults. A failed conversion that returns
// a plausible code is indistinguishable from a valid reading.
type ADC interface {
	Sample() (int, error)
}

// Delayer blocks for at least the requested duration.
type Delayer interface {
	Delay(d time.Duration)
}

// DelayFunc adapts a function to the Delayer interface.
type DelayFunc func(time.Duration)

// Delay calls f(d).
func (f DelayFunc) Delay(d time.Duration) {
	f(d)
}

const (
	// DefaultDACRange is the number of codes of an 8-bit DAC.
	DefaultDACRange = 256

	// DefaultADCRange is the number of codes of a 12-bit ADC.
	DefaultADCRange = 4096

	// DefaultFineSteps is the default subdivision of each coarse interval.
	DefaultFineSteps = 5

	// DefaultAveraging is the default number of ADC samples averaged per
	// DAC code per cycle.
	DefaultAveraging = 2

	// DefaultAlpha is the default weight given to the accumulated value when
	// smoothing in a new measurement.
	DefaultAlpha = 0.9

	// DefaultSettle is the default time allowed for the analog output to
	// settle after the DAC code is changed.
	DefaultSettle = 100 * time.Microsecond

	// DefaultSampleSpacing is the default delay following each ADC sample.
	DefaultSampleSpacing = 10 * time.Microsecond

	// VerifySettle is the settling time used by verification sweeps.
	VerifySettle = 10 * time.Millisecond
)

// Geometry describes the sizes of the curves and table of a calibration.
type Geometry struct {
	// DACRange is the number of DAC codes, and the length of the raw curve.
	DACRange int `json:"dac_range"`

	// ADCRange is the number of ADC codes, and the length of the coarse
	// curve and the LUT.
	ADCRange int `json:"adc_range"`

	// FineSteps is the number of fine points per coarse interval.
	FineSteps int `json:"fine_steps"`
}

// DefaultGeometry returns the geometry of an 8-bit DAC read by a 12-bit ADC.
func DefaultGeometry() Geometry {
	return Geometry{
		DACRange:  DefaultDACRange,
		ADCRange:  DefaultADCRange,
		FineSteps: DefaultFineSteps,
	}
}

// Steps returns the number of coarse points per raw interval.
func (g Geometry) Steps() int {
	return g.ADCRange / g.DACRange
}

// FineLen returns the length of the fine curve.
func (g Geometry) FineLen() int {
	return g.ADCRange * g.FineSteps
}

// FineSpan returns the number of meaningful points in the fine curve.
//
// Only the interior coarse intervals are subdivided so the span is one
// interval short of the fine curve length.
func (g Geometry) FineSpan() int {
	return (g.ADCRange - 1) * g.FineSteps
}

// Validate checks the geometry describes a usable calibration.
func (g Geometry) Validate() error {
	if g.DACRange < 2 {
		return fmt.Errorf("%w: dac range %d less than 2", ErrInvalidGeometry, g.DACRange)
	}
	if g.FineSteps < 1 {
		return fmt.Errorf("%w: fine steps %d less than 1", ErrInvalidGeometry, g.FineSteps)
	}
	if g.ADCRange < g.DACRange || g.ADCRange%g.DACRange != 0 {
		return fmt.Errorf("%w: adc range %d is not a multiple of dac range %d",
			ErrInvalidGeometry, g.ADCRange, g.DACRange)
	}
	return nil
}
