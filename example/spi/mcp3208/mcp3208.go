// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// An example of sampling a MCP3204 or MCP3208 through the same interface the
// calibration uses.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/spi/mcp3w0c"
	"github.com/warthog618/go-gpiocdev"
	"github.com/warthog618/go-gpiocdev/device/rpi"
)

// The ADC is connected to the RPI by four lines - CSZ, CLK, DI, and DO. All
// pins other than DO are outputs so do not run this example on a board where
// those pins serve other purposes.
//
// Each channel is sampled as a daclut.ADC, and then each adjacent pair is
// read differentially. The voltages assume the reference is vref.
func main() {
	channels := flag.Int("channels", 8, "number of channels, 4 for a MCP3204")
	vref := flag.Float64("vref", 3.3, "reference voltage")
	flag.Parse()

	c, err := gpiocdev.NewChip("gpiochip0", gpiocdev.WithConsumer("mcp3208"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp3208: %s\n", err)
		os.Exit(1)
	}
	adc, err := mcp3w0c.NewMCP3208(c, rpi.J8p36, rpi.J8p37, rpi.J8p38, rpi.J8p40,
		mcp3w0c.WithTclk(500*time.Nanosecond),
		mcp3w0c.WithTset(250*time.Nanosecond),
		mcp3w0c.WithChannels(*channels))
	c.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mcp3208: %s\n", err)
		os.Exit(1)
	}
	defer adc.Close()

	scale := *vref / float64(adc.Range())
	for ch := 0; ch < *channels; ch++ {
		var s daclut.ADC = adc.Channel(ch)
		v, err := s.Sample()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ch%d: %s\n", ch, err)
			continue
		}
		fmt.Printf("ch%d=%4d %.3fV\n", ch, v, float64(v)*scale)
	}
	for ch := 0; ch < *channels; ch += 2 {
		v, err := adc.ReadDifferential(ch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ch%d-ch%d: %s\n", ch, ch+1, err)
			continue
		}
		fmt.Printf("ch%d-ch%d=%4d %.3fV\n", ch, ch+1, v, float64(v)*scale)
	}
	// the channel beyond the last is rejected
	if _, err := adc.Read(*channels); err != nil {
		fmt.Printf("ch%d: %s\n", *channels, err)
	}
}
