// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package clock provides blocking delays suitable for settling analog
// hardware.
//
// The Go runtime timers used by time.Sleep are too coarse for the tens of
// microseconds typical of DAC settling, so short delays are busy-waited.
package clock

import "time"

// Spin busy-waits for at least d.
func Spin(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

// Delayer waits by spinning for delays shorter than SpinBelow, and by
// sleeping for longer delays.
type Delayer struct {
	SpinBelow time.Duration
}

// Default spins for delays below a millisecond.
var Default = Delayer{SpinBelow: time.Millisecond}

// Delay blocks for at least d.
func (c Delayer) Delay(d time.Duration) {
	if d < c.SpinBelow {
		Spin(d)
		return
	}
	Sleep(d)
}

// Spinner always busy-waits.
type Spinner struct{}

// Delay busy-waits for at least d.
func (Spinner) Delay(d time.Duration) {
	Spin(d)
}
