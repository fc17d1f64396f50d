// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package mcp3w0c provides bit bashed device drivers for MCP3004/3008/3204/3208
// SPI ADCs.
package mcp3w0c

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/daclut/spi"
	"github.com/warthog618/go-gpiocdev"
)

// MCP3w0c reads ADC values from a connected Microchip MCP3xxx family device.
//
// Supported variants are MCP3004/3008/3204/3208.
// The w indicates the width of the device (0 => 10, 2 => 12)
// and the c the number of channels.
type MCP3w0c struct {
	mu       sync.Mutex
	s        *spi.SPI
	width    uint
	channels int
	tset     time.Duration
}

// New creates a MCP3w0c on the lines of a GPIO chip.
func New(c *gpiocdev.Chip, clk, csz, di, do int, width uint, options ...Option) (*MCP3w0c, error) {
	adc := MCP3w0c{width: width, channels: 8}
	so := []spi.Option(nil)
	for _, option := range options {
		option(&adc, &so)
	}
	s, err := spi.New(c, clk, csz, di, do, so...)
	if err != nil {
		return nil, err
	}
	adc.s = s
	return &adc, nil
}

// NewFromSPI creates a MCP3w0c on an existing bus.
//
// The bus must have both data lines. Only the ADC options apply.
func NewFromSPI(s *spi.SPI, width uint, options ...Option) *MCP3w0c {
	adc := MCP3w0c{s: s, width: width, channels: 8}
	so := []spi.Option(nil)
	for _, option := range options {
		option(&adc, &so)
	}
	return &adc
}

// NewMCP3008 creates a MCP3008.
func NewMCP3008(c *gpiocdev.Chip, clk, csz, di, do int, options ...Option) (*MCP3w0c, error) {
	return New(c, clk, csz, di, do, 10, options...)
}

// NewMCP3208 creates a MCP3208.
func NewMCP3208(c *gpiocdev.Chip, clk, csz, di, do int, options ...Option) (*MCP3w0c, error) {
	return New(c, clk, csz, di, do, 12, options...)
}

// Close releases all resources allocated to the ADC.
func (adc *MCP3w0c) Close() error {
	adc.mu.Lock()
	defer adc.mu.Unlock()
	if adc.s == nil {
		return ErrClosed
	}
	adc.s.Close()
	adc.s = nil
	return nil
}

// Range returns the number of codes the ADC can return.
func (adc *MCP3w0c) Range() int {
	return 1 << adc.width
}

// Read returns the value of a single channel read from the ADC.
func (adc *MCP3w0c) Read(ch int) (uint16, error) {
	return adc.read(ch, 1)
}

// ReadDifferential returns the value of a differential pair read from the ADC.
func (adc *MCP3w0c) ReadDifferential(ch int) (uint16, error) {
	return adc.read(ch, 0)
}

// Channel returns a sampler bound to a single ended channel of the ADC.
func (adc *MCP3w0c) Channel(ch int) *Channel {
	return &Channel{adc: adc, ch: ch}
}

// Channel is a single ended input of an MCP3w0c.
type Channel struct {
	adc *MCP3w0c
	ch  int
}

// Sample reads the channel.
func (c *Channel) Sample() (int, error) {
	v, err := c.adc.Read(c.ch)
	return int(v), err
}

var (
	// ErrClosed indicates the ADC is closed.
	ErrClosed = errors.New("closed")

	// ErrInvalidChannel indicates the channel is not provided by the ADC.
	ErrInvalidChannel = errors.New("invalid channel")
)

func (adc *MCP3w0c) read(ch int, sgl int) (uint16, error) {
	adc.mu.Lock()
	defer adc.mu.Unlock()
	if adc.s == nil {
		return 0, ErrClosed
	}
	if ch < 0 || ch >= adc.channels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}
	s := adc.s
	err := s.Select()
	if err != nil {
		return 0, err
	}
	defer s.Deselect()
	// start, SGL/DIFFZ, D2, D1, D0
	cmd := uint32(0x10) | uint32(sgl&0x01)<<3 | uint32(ch&0x07)
	err = s.ClockOutWord(cmd, 5)
	if err != nil {
		return 0, err
	}
	// mux settling
	time.Sleep(adc.tset)
	// sample clock and null bit precede the data
	d, err := s.ClockInWord(int(adc.width) + 2)
	if err != nil {
		return 0, err
	}
	return uint16(d & (1<<adc.width - 1)), nil
}

// Option specifies a construction option for the ADC.
type Option func(*MCP3w0c, *[]spi.Option)

// WithTclk sets the clock period for the SPI.
//
// Note that this is the half-cycle period.
func WithTclk(tclk time.Duration) Option {
	return func(adc *MCP3w0c, so *[]spi.Option) {
		*so = append(*so, spi.WithTclk(tclk))
	}
}

// WithTset sets the settling time for the input multiplexer.
func WithTset(tset time.Duration) Option {
	return func(adc *MCP3w0c, so *[]spi.Option) {
		adc.tset = tset
	}
}

// WithChannels sets the number of channels provided by the ADC.
//
// The default is 8, so this is only required for the 4 channel variants.
func WithChannels(n int) Option {
	return func(adc *MCP3w0c, so *[]spi.Option) {
		adc.channels = n
	}
}
