// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package sim provides a simulated DAC to ADC loop.
//
// The loop applies a configurable non-linear transfer and Gaussian noise,
// and advances a virtual clock rather than blocking, so it can stand in for
// hardware in tests and dry runs.
package sim

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Loop is a DAC whose output is read back by an ADC.
//
// Loop satisfies the DAC, ADC and Delayer interfaces of package daclut.
type Loop struct {
	mu       sync.Mutex
	dacRange int
	adcRange int
	gain     float64
	offset   float64
	bow      float64
	noise    float64
	rng      *rand.Rand
	code     int
	elapsed  time.Duration
	writes   int
	samples  int
	faultAt  int
}

// ErrInvalidCode indicates a DAC code outside the DAC range.
var ErrInvalidCode = errors.New("invalid code")

// ErrFault is returned by a Loop configured to fail.
var ErrFault = errors.New("simulated fault")

// New creates a Loop.
//
// By default the loop is an ideal, noiseless 8-bit DAC read by a 12-bit ADC.
func New(options ...Option) *Loop {
	l := Loop{
		dacRange: 256,
		adcRange: 4096,
		gain:     1,
		faultAt:  -1,
	}
	seed := int64(1)
	for _, option := range options {
		option(&l, &seed)
	}
	l.rng = rand.New(rand.NewSource(seed))
	return &l
}

// SetCode sets the simulated DAC output.
func (l *Loop) SetCode(code int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if code < 0 || code >= l.dacRange {
		return ErrInvalidCode
	}
	l.writes++
	l.code = code
	return nil
}

// Sample returns a noisy reading of the simulated output.
func (l *Loop) Sample() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.faultAt >= 0 && l.samples >= l.faultAt {
		return 0, ErrFault
	}
	l.samples++
	v := l.transfer(l.code)
	if l.noise != 0 {
		v += l.noise * l.rng.NormFloat64()
	}
	return l.clamp(math.Round(v)), nil
}

// Delay advances the virtual clock by d.
func (l *Loop) Delay(d time.Duration) {
	l.mu.Lock()
	l.elapsed += d
	l.mu.Unlock()
}

// Elapsed returns the total virtual time delayed.
func (l *Loop) Elapsed() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.elapsed
}

// Counts returns the number of DAC writes and ADC samples performed.
func (l *Loop) Counts() (writes, samples int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes, l.samples
}

// Transfer returns the noiseless, unquantised ADC reading for a DAC code.
func (l *Loop) Transfer(code int) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfer(code)
}

func (l *Loop) transfer(code int) float64 {
	x := float64(code) / float64(l.dacRange-1)
	y := l.offset + l.gain*(x+l.bow*x*(1-x))*float64(l.adcRange-1)
	return math.Max(0, math.Min(y, float64(l.adcRange-1)))
}

func (l *Loop) clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > float64(l.adcRange-1) {
		return l.adcRange - 1
	}
	return int(v)
}

// Option specifies a construction option for the Loop.
type Option func(l *Loop, seed *int64)

// WithRanges sets the number of DAC and ADC codes.
func WithRanges(dac, adc int) Option {
	return func(l *Loop, _ *int64) {
		l.dacRange = dac
		l.adcRange = adc
	}
}

// WithGain sets the full scale gain of the analog path.
//
// A gain of 1 maps the full DAC range onto the full ADC range.
func WithGain(gain float64) Option {
	return func(l *Loop, _ *int64) {
		l.gain = gain
	}
}

// WithOffset sets the offset of the analog path, in ADC codes.
func WithOffset(offset float64) Option {
	return func(l *Loop, _ *int64) {
		l.offset = offset
	}
}

// WithBow sets the curvature of the analog path.
//
// The transfer is bowed by bow*x*(1-x) of full scale, where x is the
// normalised DAC code. The transfer remains monotonic for bow within [-1,1].
func WithBow(bow float64) Option {
	return func(l *Loop, _ *int64) {
		l.bow = bow
	}
}

// WithNoise sets the standard deviation of the ADC noise, in ADC codes.
func WithNoise(stddev float64) Option {
	return func(l *Loop, _ *int64) {
		l.noise = stddev
	}
}

// WithSeed seeds the noise source.
func WithSeed(seed int64) Option {
	return func(_ *Loop, s *int64) {
		*s = seed
	}
}

// WithFaultAfter causes Sample to fail once n samples have been taken.
func WithFaultAfter(n int) Option {
	return func(l *Loop, _ *int64) {
		l.faultAt = n
	}
}
