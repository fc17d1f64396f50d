// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package spidev provides drivers for the MCP3xxx ADCs and MCP49x1 DACs
// connected to hardware SPI controllers via the Linux spidev driver.
//
// These are the same parts as the bit bashed drivers, but the transfers are
// performed by the kernel.
package spidev

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Conn performs a full duplex transfer.
//
// It is satisfied by periph spi.Conn.
type Conn interface {
	Tx(w, r []byte) error
}

var (
	// ErrClosed indicates the device is closed.
	ErrClosed = errors.New("closed")

	// ErrInvalidChannel indicates the channel is not provided by the ADC.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrInvalidCode indicates the code is outside the range of the DAC.
	ErrInvalidCode = errors.New("invalid code")
)

// DefaultFrequency is the SPI clock used by Open if none is specified.
const DefaultFrequency = physic.MegaHertz

var initOnce sync.Once
var initErr error

// Port is an opened spidev port and the connection established on it.
type Port struct {
	Conn
	p spi.PortCloser
}

// Open opens the named spidev port, e.g. "/dev/spidev0.0" or "SPI0.0", in
// mode 0 with 8 bit words.
//
// A zero freq selects DefaultFrequency.
func Open(name string, freq physic.Frequency) (*Port, error) {
	initOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			initErr = fmt.Errorf("periph host init: %w", err)
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("spi open %s: %w", name, err)
	}
	if freq == 0 {
		freq = DefaultFrequency
	}
	c, err := p.Connect(freq, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("spi connect %s: %w", name, err)
	}
	return &Port{Conn: c, p: p}, nil
}

// Close releases the port.
func (p *Port) Close() error {
	return p.p.Close()
}

// ADC reads a Microchip MCP3004/3008/3204/3208 over a spidev connection.
type ADC struct {
	mu       sync.Mutex
	c        Conn
	width    uint
	channels int
}

// NewADC creates an ADC of the given width, 10 or 12 bits, on c.
func NewADC(c Conn, width uint) *ADC {
	return &ADC{c: c, width: width, channels: 8}
}

// NewMCP3008 creates an MCP3008 on c.
func NewMCP3008(c Conn) *ADC {
	return NewADC(c, 10)
}

// NewMCP3208 creates an MCP3208 on c.
func NewMCP3208(c Conn) *ADC {
	return NewADC(c, 12)
}

// Close detaches the ADC from its connection.
//
// The connection itself is owned by the caller.
func (a *ADC) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.c == nil {
		return ErrClosed
	}
	a.c = nil
	return nil
}

// Range returns the number of codes the ADC can return.
func (a *ADC) Range() int {
	return 1 << a.width
}

// Read returns the value of a single ended channel.
func (a *ADC) Read(ch int) (uint16, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.c == nil {
		return 0, ErrClosed
	}
	if ch < 0 || ch >= a.channels {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, ch)
	}
	w, r := a.frame(ch)
	if err := a.c.Tx(w, r); err != nil {
		return 0, err
	}
	return a.decode(r), nil
}

// frame returns the command for a single ended read of ch, and a buffer for
// the response.
//
// The start bit is placed so the last data bit is the last bit of the
// frame.
func (a *ADC) frame(ch int) ([]byte, []byte) {
	w := make([]byte, 3)
	if a.width == 12 {
		w[0] = 0x06 | byte(ch>>2)&0x01
		w[1] = byte(ch&0x03) << 6
	} else {
		w[0] = 0x01
		w[1] = byte(0x08|ch&0x07) << 4
	}
	return w, make([]byte, 3)
}

func (a *ADC) decode(r []byte) uint16 {
	v := uint16(r[1])<<8 | uint16(r[2])
	return v & (1<<a.width - 1)
}

// Channel returns a sampler bound to a single ended channel of the ADC.
func (a *ADC) Channel(ch int) *Channel {
	return &Channel{a: a, ch: ch}
}

// Channel is a single ended input of an ADC.
type Channel struct {
	a  *ADC
	ch int
}

// Sample reads the channel.
func (c *Channel) Sample() (int, error) {
	v, err := c.a.Read(c.ch)
	return int(v), err
}

// DAC writes a Microchip MCP4901/4911/4921 over a spidev connection.
type DAC struct {
	mu     sync.Mutex
	c      Conn
	width  uint
	config uint16
}

// NewDAC creates a DAC of the given width, 8, 10 or 12 bits, on c.
//
// The output is unbuffered with 1x gain.
func NewDAC(c Conn, width uint) *DAC {
	return &DAC{c: c, width: width, config: 0x3000}
}

// Close detaches the DAC from its connection.
func (d *DAC) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.c == nil {
		return ErrClosed
	}
	d.c = nil
	return nil
}

// Range returns the number of codes the DAC accepts.
func (d *DAC) Range() int {
	return 1 << d.width
}

// SetCode sets the DAC output to code.
func (d *DAC) SetCode(code int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.c == nil {
		return ErrClosed
	}
	if code < 0 || code >= d.Range() {
		return fmt.Errorf("%w: %d", ErrInvalidCode, code)
	}
	word := d.config | uint16(code)<<(12-d.width)
	return d.c.Tx([]byte{byte(word >> 8), byte(word)}, nil)
}
