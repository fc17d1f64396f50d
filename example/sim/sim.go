// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// An example of calibrating a simulated DAC/ADC loop and plotting the
// corrected response.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/emit"
	"github.com/warthog618/daclut/sim"
)

// The simulated loop has a gain error, an offset, a bowed transfer curve and
// noise. The corrected response printed by the plot should be a straight
// line from 0 to 4080.
func main() {
	l := sim.New(
		sim.WithGain(0.9),
		sim.WithOffset(40),
		sim.WithBow(0.2),
		sim.WithNoise(3),
		sim.WithSeed(42),
	)
	// the loop provides a virtual clock so the run completes immediately
	s, err := daclut.NewSession(l, l, daclut.WithDelayer(l), daclut.WithMonotonicSearch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sim: %s\n", err)
		os.Exit(1)
	}
	if _, err = s.Run(100); err != nil {
		fmt.Fprintf(os.Stderr, "sim: %s\n", err)
	}
	pp, err := s.Verify()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sim: %s\n", err)
		os.Exit(1)
	}
	for _, p := range pp {
		emit.PlotPoint(os.Stdout, p.Position, int(math.Round(p.Corrected)))
	}
	fmt.Fprintf(os.Stderr, "sim: calibration took %s of loop time\n", l.Elapsed())
}
