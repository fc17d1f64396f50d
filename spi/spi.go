// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package spi provides a bit bashed SPI bus on GPIO lines.
//
// This is the basis for the bit bashed DAC and ADC drivers. It is not related
// to the SPI device drivers provided by Linux.
package spi

import (
	"errors"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Line is the subset of a GPIO line used by the bus.
//
// It is satisfied by *gpiocdev.Line.
type Line interface {
	Value() (int, error)
	SetValue(value int) error
	Reconfigure(options ...gpiocdev.LineConfigOption) error
	Close() error
}

// SPI represents a device connected to an SPI bus using up to 4 GPIO lines.
//
// Write-only devices have no Miso and read-only devices may have no Mosi.
// If Mosi and Miso are the same line it is switched to an input by
// Turnaround and back to an output by Select.
type SPI struct {
	// time between clock edges (i.e. half the cycle time)
	Tclk time.Duration
	Sclk Line
	Ssz  Line
	Mosi Line
	Miso Line
	cpol int
	cpha int
}

// NoLine indicates a data line is not connected.
const NoLine = -1

// ErrNoLine indicates an operation requires a data line that is not
// connected.
var ErrNoLine = errors.New("line not connected")

// New creates a SPI.
//
// Either mosi or miso may be NoLine.
func New(c *gpiocdev.Chip, sclk, ssz, mosi, miso int, options ...Option) (*SPI, error) {
	s := SPI{}
	for _, option := range options {
		option(&s)
	}
	var err error
	defer func() {
		if err != nil {
			s.Close()
		}
	}()
	// hold SPI reset until needed...
	s.Ssz, err = requestLine(c, ssz, gpiocdev.AsOutput(1))
	if err != nil {
		return nil, err
	}
	s.Sclk, err = requestLine(c, sclk, gpiocdev.AsOutput(s.cpol))
	if err != nil {
		return nil, err
	}
	if mosi != NoLine {
		s.Mosi, err = requestLine(c, mosi, gpiocdev.AsOutput(0))
		if err != nil {
			return nil, err
		}
	}
	switch {
	case miso == NoLine:
	case miso == mosi:
		s.Miso = s.Mosi
	default:
		s.Miso, err = requestLine(c, miso, gpiocdev.AsInput)
		if err != nil {
			return nil, err
		}
	}
	return NewFromLines(s.Sclk, s.Ssz, s.Mosi, s.Miso, options...), nil
}

func requestLine(c *gpiocdev.Chip, offset int, options ...gpiocdev.LineReqOption) (Line, error) {
	l, err := c.RequestLine(offset, options...)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// NewFromLines creates a SPI from lines that have already been requested.
//
// sclk and ssz must be outputs.
func NewFromLines(sclk, ssz, mosi, miso Line, options ...Option) *SPI {
	s := SPI{Sclk: sclk, Ssz: ssz, Mosi: mosi, Miso: miso}
	for _, option := range options {
		option(&s)
	}
	if s.Tclk == 0 {
		// default to 1MHz full cycle.
		s.Tclk = 500 * time.Nanosecond
	}
	return &s
}

// Close releases allocated resources.
func (s *SPI) Close() {
	if s.Sclk != nil {
		s.Sclk.Close()
	}
	if s.Miso != nil {
		s.Miso.Close()
	}
	if s.Mosi != nil && s.Mosi != s.Miso {
		s.Mosi.Close()
	}
	if s.Ssz != nil {
		s.Ssz.Close()
	}
}

// Tied returns true if Mosi and Miso share a line.
func (s *SPI) Tied() bool {
	return s.Mosi != nil && s.Mosi == s.Miso
}

// Select starts a transaction by asserting the chip select.
//
// The clock is returned to idle, and a tied data line driven high, before
// the select is asserted.
func (s *SPI) Select() error {
	err := s.Ssz.SetValue(1)
	if err != nil {
		return err
	}
	err = s.Sclk.SetValue(s.cpol)
	if err != nil {
		return err
	}
	if s.Tied() {
		err = s.Mosi.Reconfigure(gpiocdev.AsOutput(1))
	} else if s.Mosi != nil {
		err = s.Mosi.SetValue(1)
	}
	if err != nil {
		return err
	}
	time.Sleep(s.Tclk)
	return s.Ssz.SetValue(0)
}

// Deselect ends a transaction by releasing the chip select.
func (s *SPI) Deselect() error {
	return s.Ssz.SetValue(1)
}

// Turnaround switches a tied data line to an input so the device can drive
// it.
//
// It has no effect on separate data lines.
func (s *SPI) Turnaround() error {
	if !s.Tied() {
		return nil
	}
	return s.Miso.Reconfigure(gpiocdev.AsInput)
}

// ClockIn clocks in a data bit from the SPI device on Miso.
//
// Starts and ends just after the falling edge of the clock.
func (s *SPI) ClockIn() (int, error) {
	if s.Miso == nil {
		return 0, ErrNoLine
	}
	time.Sleep(s.Tclk)
	err := s.Sclk.SetValue(s.active())
	if err != nil {
		return 0, err
	}
	if s.cpha == 1 {
		time.Sleep(s.Tclk)
	}
	v, err := s.Miso.Value()
	if err != nil {
		return 0, err
	}
	if s.cpha == 0 {
		time.Sleep(s.Tclk)
	}
	err = s.Sclk.SetValue(s.cpol)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// ClockOut clocks out a data bit to the SPI device on Mosi.
//
// Starts and ends just after the falling edge of the clock.
func (s *SPI) ClockOut(v int) error {
	if s.Mosi == nil {
		return ErrNoLine
	}
	if s.cpha == 1 {
		time.Sleep(s.Tclk)
	}
	err := s.Mosi.SetValue(v)
	if err != nil {
		return err
	}
	if s.cpha == 0 {
		time.Sleep(s.Tclk)
	}
	err = s.Sclk.SetValue(s.active())
	if err != nil {
		return err
	}
	time.Sleep(s.Tclk)
	return s.Sclk.SetValue(s.cpol)
}

// ClockOutWord clocks out the n least significant bits of w, MSB first.
func (s *SPI) ClockOutWord(w uint32, n int) error {
	for i := n - 1; i >= 0; i-- {
		err := s.ClockOut(int(w>>uint(i)) & 0x01)
		if err != nil {
			return err
		}
	}
	return nil
}

// ClockInWord clocks in n bits, MSB first.
func (s *SPI) ClockInWord(n int) (uint32, error) {
	var w uint32
	for i := 0; i < n; i++ {
		v, err := s.ClockIn()
		if err != nil {
			return 0, err
		}
		w = w << 1
		if v != 0 {
			w = w | 0x01
		}
	}
	return w, nil
}

// the clock level that latches data.
func (s *SPI) active() int {
	return s.cpol ^ 1
}

// Option specifies a construction option for the SPI.
type Option func(*SPI)

// WithCPOL sets the clock polarity for the SPI.
func WithCPOL(cpol int) Option {
	return func(s *SPI) {
		s.cpol = cpol
	}
}

// WithCPHA sets the clock phase for the SPI.
func WithCPHA(cpha int) Option {
	return func(s *SPI) {
		s.cpha = cpha
	}
}

// WithTclk sets the clock period for the SPI.
//
// Note that this is the half-cycle period.
func WithTclk(tclk time.Duration) Option {
	return func(s *SPI) {
		s.Tclk = tclk
	}
}
