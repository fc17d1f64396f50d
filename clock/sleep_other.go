// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

//go:build !linux

package clock

import "time"

// Sleep blocks for at least d.
func Sleep(d time.Duration) {
	time.Sleep(d)
}
