// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut

import (
	"log/slog"
	"time"
)

// SessionOption defines the interface required to provide a Session option.
type SessionOption interface {
	applySessionOption(*sessionOptions)
}

// sessionOptions contains the options for a Session.
type sessionOptions struct {
	geometry  Geometry
	settle    time.Duration
	spacing   time.Duration
	averaging int
	alpha     float64
	delayer   Delayer
	logger    *slog.Logger
	monotonic bool
}

// GeometryOption sets the sizes of the session curves.
type GeometryOption Geometry

// WithGeometry sets the sizes of the session curves.
//
// The default is DefaultGeometry().
func WithGeometry(g Geometry) GeometryOption {
	return GeometryOption(g)
}

func (o GeometryOption) applySessionOption(so *sessionOptions) {
	so.geometry = Geometry(o)
}

// SettleOption sets the time allowed for the output to settle after the DAC
// code is changed.
type SettleOption time.Duration

// WithSettle sets the settling time following each DAC code change.
func WithSettle(d time.Duration) SettleOption {
	return SettleOption(d)
}

func (o SettleOption) applySessionOption(so *sessionOptions) {
	so.settle = time.Duration(o)
}

// SampleSpacingOption sets the delay following each ADC sample.
type SampleSpacingOption time.Duration

// WithSampleSpacing sets the delay following each ADC sample.
func WithSampleSpacing(d time.Duration) SampleSpacingOption {
	return SampleSpacingOption(d)
}

func (o SampleSpacingOption) applySessionOption(so *sessionOptions) {
	so.spacing = time.Duration(o)
}

// AveragingOption sets the number of ADC samples averaged for each DAC code
// in each cycle.
type AveragingOption int

// WithAveraging sets the number of ADC samples averaged per DAC code.
//
// The count must be at least 1.
func WithAveraging(count int) AveragingOption {
	return AveragingOption(count)
}

func (o AveragingOption) applySessionOption(so *sessionOptions) {
	so.averaging = int(o)
}

// AlphaOption sets the smoothing weight.
type AlphaOption float64

// WithAlpha sets the weight given to the accumulated value when a new
// measurement is smoothed in.
//
// Alpha must be within [0,1]. Values close to 1 favour history and damp
// noise.
func WithAlpha(alpha float64) AlphaOption {
	return AlphaOption(alpha)
}

func (o AlphaOption) applySessionOption(so *sessionOptions) {
	so.alpha = float64(o)
}

// DelayerOption sets the delay primitive used for settling and sample
// spacing.
type DelayerOption struct {
	d Delayer
}

// WithDelayer sets the delay primitive.
//
// The default busy-waits for short delays and sleeps for longer ones.
func WithDelayer(d Delayer) DelayerOption {
	return DelayerOption{d}
}

func (o DelayerOption) applySessionOption(so *sessionOptions) {
	so.delayer = o.d
}

// LoggerOption sets the logger for the session.
type LoggerOption struct {
	l *slog.Logger
}

// WithLogger sets the logger that receives session progress.
//
// By default progress is discarded.
func WithLogger(l *slog.Logger) LoggerOption {
	return LoggerOption{l}
}

func (o LoggerOption) applySessionOption(so *sessionOptions) {
	so.logger = o.l
}

// SearchOption selects the search used to build the LUT.
type SearchOption bool

const (
	// WithLinearSearch builds the LUT by scanning the whole fine curve for
	// each ADC code.
	//
	// This is the default.
	WithLinearSearch = SearchOption(false)

	// WithMonotonicSearch builds the LUT using a binary search of the fine
	// curve.
	//
	// If the fine curve is found to decrease the session falls back to the
	// linear search and reports the NonMonotonicError.
	WithMonotonicSearch = SearchOption(true)
)

func (o SearchOption) applySessionOption(so *sessionOptions) {
	so.monotonic = bool(o)
}
