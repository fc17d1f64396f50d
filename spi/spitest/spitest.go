// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package spitest provides a simulated bus of GPIO lines for testing the bit
// bashed SPI drivers without hardware.
package spitest

import (
	"errors"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// Bus simulates the four lines of an SPI bus with clock polarity 0 and
// a device that latches Mosi on each rising clock edge while selected.
type Bus struct {
	Sclk *Line
	Ssz  *Line
	Mosi *Line
	Miso *Line

	// Out returns the level the device drives on Miso after the nth rising
	// edge of a transaction, given the bits latched so far.
	//
	// If nil the device drives Miso low.
	Out func(edge int, in []int) int

	mu sync.Mutex
	in []int
	tt [][]int
}

// New creates a Bus with separate Mosi and Miso lines.
func New() *Bus {
	b := &Bus{}
	b.Sclk = &Line{bus: b, role: roleSclk}
	b.Ssz = &Line{bus: b, role: roleSsz, value: 1}
	b.Mosi = &Line{bus: b, role: roleMosi}
	b.Miso = &Line{bus: b, role: roleMiso, input: true}
	return b
}

// NewTied creates a Bus with a single bidirectional data line shared by Mosi
// and Miso.
func NewTied() *Bus {
	b := New()
	b.Miso = b.Mosi
	return b
}

// Transactions returns the bits latched by the device in each completed
// transaction.
func (b *Bus) Transactions() [][]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	tt := make([][]int, len(b.tt))
	copy(tt, b.tt)
	return tt
}

// Selected returns true while the chip select is asserted.
func (b *Bus) Selected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Ssz.value == 0
}

type role int

const (
	roleSclk role = iota
	roleSsz
	roleMosi
	roleMiso
)

var (
	// ErrClosed indicates the line has been closed.
	ErrClosed = errors.New("line closed")

	// ErrPermissionDenied indicates an input line was set.
	ErrPermissionDenied = errors.New("permission denied")
)

// Line is one simulated line of a Bus.
type Line struct {
	bus    *Bus
	role   role
	value  int
	input  bool
	closed bool
}

// Closed returns true if the line has been closed.
func (l *Line) Closed() bool {
	l.bus.mu.Lock()
	defer l.bus.mu.Unlock()
	return l.closed
}

// Close releases the line.
func (l *Line) Close() error {
	l.bus.mu.Lock()
	defer l.bus.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.closed = true
	return nil
}

// Reconfigure switches the line between input and output.
func (l *Line) Reconfigure(options ...gpiocdev.LineConfigOption) error {
	l.bus.mu.Lock()
	defer l.bus.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	for _, o := range options {
		switch o.(type) {
		case gpiocdev.InputOption:
			l.input = true
		default:
			l.input = false
		}
	}
	return nil
}

// SetValue drives the line.
func (l *Line) SetValue(v int) error {
	b := l.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if l.input {
		return ErrPermissionDenied
	}
	prev := l.value
	l.value = v
	switch l.role {
	case roleSclk:
		if prev == 0 && v == 1 && b.Ssz.value == 0 {
			b.in = append(b.in, b.Mosi.value)
		}
	case roleSsz:
		if prev == 0 && v == 1 {
			b.tt = append(b.tt, b.in)
			b.in = nil
		}
	}
	return nil
}

// Value returns the level of the line.
//
// An input data line returns the level driven by the device.
func (l *Line) Value() (int, error) {
	b := l.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	if l.role != roleSclk && l.role != roleSsz && l.input && b.Ssz.value == 0 {
		if b.Out == nil {
			return 0, nil
		}
		return b.Out(len(b.in), b.in), nil
	}
	return l.value, nil
}
