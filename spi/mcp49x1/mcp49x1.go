// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package mcp49x1 provides bit bashed device drivers for MCP4901/4911/4921
// SPI DACs.
//
// The LDAC pin is assumed to be tied low, so the output is updated when the
// chip select is released.
package mcp49x1

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/daclut/spi"
	"github.com/warthog618/go-gpiocdev"
)

// MCP49x1 writes codes to a connected Microchip MCP49x1 family device.
//
// The x indicates the width of the device (0 => 8, 1 => 10, 2 => 12).
type MCP49x1 struct {
	mu     sync.Mutex
	s      *spi.SPI
	width  uint
	config uint16
}

const (
	// output buffered
	bufBit = 0x4000
	// gain 1x, i.e. not 2x
	gaBit = 0x2000
	// output active, i.e. not shutdown
	shdnBit = 0x1000
)

// New creates a MCP49x1 on the lines of a GPIO chip.
func New(c *gpiocdev.Chip, clk, csz, di int, width uint, options ...Option) (*MCP49x1, error) {
	dac := MCP49x1{width: width, config: gaBit | shdnBit}
	so := []spi.Option(nil)
	for _, option := range options {
		option(&dac, &so)
	}
	s, err := spi.New(c, clk, csz, di, spi.NoLine, so...)
	if err != nil {
		return nil, err
	}
	dac.s = s
	return &dac, nil
}

// NewFromSPI creates a MCP49x1 on an existing bus.
//
// Only the DAC options apply.
func NewFromSPI(s *spi.SPI, width uint, options ...Option) *MCP49x1 {
	dac := MCP49x1{s: s, width: width, config: gaBit | shdnBit}
	so := []spi.Option(nil)
	for _, option := range options {
		option(&dac, &so)
	}
	return &dac
}

// NewMCP4901 creates a MCP4901.
func NewMCP4901(c *gpiocdev.Chip, clk, csz, di int, options ...Option) (*MCP49x1, error) {
	return New(c, clk, csz, di, 8, options...)
}

// NewMCP4911 creates a MCP4911.
func NewMCP4911(c *gpiocdev.Chip, clk, csz, di int, options ...Option) (*MCP49x1, error) {
	return New(c, clk, csz, di, 10, options...)
}

// NewMCP4921 creates a MCP4921.
func NewMCP4921(c *gpiocdev.Chip, clk, csz, di int, options ...Option) (*MCP49x1, error) {
	return New(c, clk, csz, di, 12, options...)
}

var (
	// ErrClosed indicates the DAC is closed.
	ErrClosed = errors.New("closed")

	// ErrInvalidCode indicates the code is outside the range of the DAC.
	ErrInvalidCode = errors.New("invalid code")
)

// Close releases all resources allocated to the DAC.
func (dac *MCP49x1) Close() error {
	dac.mu.Lock()
	defer dac.mu.Unlock()
	if dac.s == nil {
		return ErrClosed
	}
	dac.s.Close()
	dac.s = nil
	return nil
}

// Range returns the number of codes the DAC accepts.
func (dac *MCP49x1) Range() int {
	return 1 << dac.width
}

// Word returns the command word that sets the DAC output to code.
func (dac *MCP49x1) Word(code uint16) uint16 {
	return dac.config | code<<(12-dac.width)
}

// Write sets the DAC output to code.
func (dac *MCP49x1) Write(code uint16) error {
	dac.mu.Lock()
	defer dac.mu.Unlock()
	if dac.s == nil {
		return ErrClosed
	}
	if int(code) >= dac.Range() {
		return fmt.Errorf("%w: %d", ErrInvalidCode, code)
	}
	s := dac.s
	err := s.Select()
	if err != nil {
		return err
	}
	err = s.ClockOutWord(uint32(dac.Word(code)), 16)
	if err != nil {
		s.Deselect()
		return err
	}
	// latch
	return s.Deselect()
}

// SetCode sets the DAC output to code.
func (dac *MCP49x1) SetCode(code int) error {
	if code < 0 || code >= dac.Range() {
		return fmt.Errorf("%w: %d", ErrInvalidCode, code)
	}
	return dac.Write(uint16(code))
}

// Option specifies a construction option for the DAC.
type Option func(*MCP49x1, *[]spi.Option)

// WithTclk sets the clock period for the SPI.
//
// Note that this is the half-cycle period.
func WithTclk(tclk time.Duration) Option {
	return func(dac *MCP49x1, so *[]spi.Option) {
		*so = append(*so, spi.WithTclk(tclk))
	}
}

// WithBufferedRef buffers the reference input.
func WithBufferedRef() Option {
	return func(dac *MCP49x1, so *[]spi.Option) {
		dac.config |= bufBit
	}
}

// WithDoubleGain sets the output gain to 2x.
func WithDoubleGain() Option {
	return func(dac *MCP49x1, so *[]spi.Option) {
		dac.config &^= gaBit
	}
}
