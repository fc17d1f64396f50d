// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/warthog618/daclut/clock"
)

// Session owns the collaborators and curves of a calibration.
//
// The curves are allocated once, when the session is created, and are
// overwritten by each run. Slices returned by the accessors alias the
// session curves and must be treated as read-only.
type Session struct {
	dac       DAC
	adc       ADC
	delayer   Delayer
	logger    *slog.Logger
	g         Geometry
	settle    time.Duration
	spacing   time.Duration
	averaging int
	alpha     float64
	monotonic bool

	// mutex serialises passes and covers the fields below.
	mu     sync.Mutex
	slots  []SlotState
	raw    RawCurve
	coarse CoarseCurve
	fine   FineCurve
	lut    LUT
	built  bool
}

// NewSession creates a Session that drives dac and reads adc.
func NewSession(dac DAC, adc ADC, options ...SessionOption) (*Session, error) {
	if dac == nil || adc == nil {
		return nil, fmt.Errorf("%w: nil collaborator", ErrInvalidOption)
	}
	so := sessionOptions{
		geometry:  DefaultGeometry(),
		settle:    DefaultSettle,
		spacing:   DefaultSampleSpacing,
		averaging: DefaultAveraging,
		alpha:     DefaultAlpha,
	}
	for _, option := range options {
		option.applySessionOption(&so)
	}
	g := so.geometry
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if so.averaging < 1 {
		return nil, fmt.Errorf("%w: averaging %d less than 1", ErrInvalidOption, so.averaging)
	}
	if so.alpha < 0 || so.alpha > 1 {
		return nil, fmt.Errorf("%w: alpha %g outside [0,1]", ErrInvalidOption, so.alpha)
	}
	if so.delayer == nil {
		so.delayer = clock.Default
	}
	if so.logger == nil {
		so.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := Session{
		dac:       dac,
		adc:       adc,
		delayer:   so.delayer,
		logger:    so.logger,
		g:         g,
		settle:    so.settle,
		spacing:   so.spacing,
		averaging: so.averaging,
		alpha:     so.alpha,
		monotonic: so.monotonic,
		slots:     make([]SlotState, g.DACRange),
		raw:       make(RawCurve, g.DACRange),
		coarse:    make(CoarseCurve, g.ADCRange),
		fine:      make(FineCurve, g.FineLen()),
		lut:       make(LUT, g.ADCRange),
	}
	return &s, nil
}

// Geometry returns the sizes of the session curves.
func (s *Session) Geometry() Geometry {
	return s.g
}

// Raw returns the raw curve.
func (s *Session) Raw() RawCurve {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw
}

// Coarse returns the coarse curve.
func (s *Session) Coarse() CoarseCurve {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coarse
}

// Fine returns the fine curve.
func (s *Session) Fine() FineCurve {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fine
}

// LUT returns the table built by the most recent run, or nil if the table
// has not been built since the last measurement.
func (s *Session) LUT() LUT {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		return nil
	}
	return s.lut
}

// Slots returns a copy of the smoothing state of each raw curve point.
func (s *Session) Slots() []SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss := make([]SlotState, len(s.slots))
	copy(ss, s.slots)
	return ss
}

// Run performs a complete calibration: a measurement of cycles passes
// followed by interpolation, refinement and inversion.
//
// The returned table aliases the session LUT. If the error is diagnostic,
// as reported by IsDiagnostic, the table is still fully populated.
func (s *Session) Run(cycles int) (LUT, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.measure(cycles); err != nil {
		return nil, err
	}
	InterpolateInto(s.coarse, s.raw, s.g)
	s.logger.Debug("interpolated", "module", "interpolator", "points", len(s.coarse))
	RefineInto(s.fine, s.coarse, s.g)
	s.logger.Debug("refined", "module", "interpolator", "points", s.g.FineSpan())
	err := s.build()
	s.built = true
	if err != nil {
		s.logger.Warn("LUT built from suspect data", "module", "builder", "error", err)
	} else {
		s.logger.Info("LUT built", "module", "builder", "entries", len(s.lut))
	}
	return s.lut, err
}

func (s *Session) build() error {
	if !s.monotonic {
		return BuildLUTInto(s.lut, s.fine, s.g)
	}
	err := BuildLUTMonotonicInto(s.lut, s.fine, s.g)
	if err == nil {
		return nil
	}
	// the monotonic search leaves the table untouched on error
	s.logger.Debug("falling back to linear search", "module", "builder")
	if lerr := BuildLUTInto(s.lut, s.fine, s.g); lerr != nil {
		return lerr
	}
	return err
}

// VerifyPoint is the corrected reading of one DAC code.
type VerifyPoint struct {
	// Code is the DAC code driven.
	Code int

	// Position is the code at coarse resolution, i.e. the ideal corrected
	// value.
	Position int

	// Raw is the ADC code read.
	Raw int

	// Corrected is the LUT entry for Raw.
	Corrected float64
}

// Verify sweeps the DAC through its full code range, reading the ADC once
// per code, and reports the corrected reading for each code.
//
// Each code is allowed VerifySettle to settle.
// Verify requires a LUT built by Run, else ErrNoLUT is returned.
func (s *Session) Verify() ([]VerifyPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		return nil, ErrNoLUT
	}
	steps := s.g.Steps()
	pp := make([]VerifyPoint, s.g.DACRange)
	for code := range pp {
		if err := s.dac.SetCode(code); err != nil {
			return nil, fmt.Errorf("verify code %d: %w", code, err)
		}
		s.delayer.Delay(VerifySettle)
		raw, err := s.adc.Sample()
		if err != nil {
			return nil, fmt.Errorf("verify code %d: %w", code, err)
		}
		pp[code] = VerifyPoint{
			Code:      code,
			Position:  code * steps,
			Raw:       raw,
			Corrected: s.lut.Lookup(raw),
		}
	}
	return pp, nil
}
