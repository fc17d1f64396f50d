// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package serial provides a DAC and ADC pair hosted by a microcontroller and
// driven over a serial line.
//
// The microcontroller answers a line based protocol:
//
//	D<code>\n  sets the DAC output, answered by OK\n
//	A\n        samples the ADC, answered by <value>\n
//
// Either request may be answered by ERR <message>\n.
package serial

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	goserial "github.com/jacobsa/go-serial/serial"
)

var (
	// ErrClosed indicates the bridge is closed.
	ErrClosed = errors.New("closed")

	// ErrProtocol indicates the microcontroller sent an unexpected response.
	ErrProtocol = errors.New("protocol error")
)

// RemoteError is an error reported by the microcontroller.
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return "remote error: " + e.Msg
}

// Bridge is the DAC and ADC of a microcontroller connected by a serial line.
//
// Bridge satisfies both daclut.DAC and daclut.ADC.
type Bridge struct {
	mu sync.Mutex
	rw io.ReadWriter
	r  *bufio.Reader
	c  io.Closer
}

// New creates a Bridge communicating over rw.
//
// If rw is also an io.Closer it is closed by Close.
func New(rw io.ReadWriter) *Bridge {
	b := Bridge{rw: rw, r: bufio.NewReader(rw)}
	if c, ok := rw.(io.Closer); ok {
		b.c = c
	}
	return &b
}

// Options specifies the serial port used by Open.
type Options struct {
	// Port is the name of the serial device, e.g. /dev/ttyUSB0.
	Port string

	// Baud is the line rate.
	Baud uint
}

// DefaultBaud is the line rate used if Options.Baud is zero.
const DefaultBaud = 115200

// Open opens a serial port, 8N1, and creates a Bridge on it.
func Open(o Options) (*Bridge, error) {
	if o.Baud == 0 {
		o.Baud = DefaultBaud
	}
	port, err := goserial.Open(goserial.OpenOptions{
		PortName:        o.Port,
		BaudRate:        o.Baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      goserial.PARITY_NONE,
	})
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", o.Port, err)
	}
	return New(port), nil
}

// Close closes the bridge and the underlying port.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rw == nil {
		return ErrClosed
	}
	b.rw = nil
	if b.c != nil {
		return b.c.Close()
	}
	return nil
}

// SetCode sets the DAC output to code.
func (b *Bridge) SetCode(code int) error {
	resp, err := b.transact(fmt.Sprintf("D%d\n", code))
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("%w: set code %d: %q", ErrProtocol, code, resp)
	}
	return nil
}

// Sample reads the ADC.
func (b *Bridge) Sample() (int, error) {
	resp, err := b.transact("A\n")
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(resp)
	if err != nil {
		return 0, fmt.Errorf("%w: sample: %q", ErrProtocol, resp)
	}
	return v, nil
}

// transact sends a request and returns the response line, without the line
// ending.
func (b *Bridge) transact(req string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rw == nil {
		return "", ErrClosed
	}
	if _, err := io.WriteString(b.rw, req); err != nil {
		return "", err
	}
	line, err := b.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if msg, ok := strings.CutPrefix(line, "ERR"); ok {
		return "", &RemoteError{Msg: strings.TrimSpace(msg)}
	}
	return line, nil
}
