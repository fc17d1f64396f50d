// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// An example of calibrating an MCP4901 DAC looped back to an MCP3208 ADC, both
// on bit-bashed SPI buses.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/emit"
	"github.com/warthog618/daclut/spi/mcp3w0c"
	"github.com/warthog618/daclut/spi/mcp49x1"
	"github.com/warthog618/go-gpiocdev"
	"github.com/warthog618/go-gpiocdev/device/rpi"
)

// The DAC output, VOUTA, is wired to ADC CH0. The pin assignments are defined
// in cfg. All pins other than the ADC DO are outputs so do not run this
// example on a board where those pins serve other purposes.
func main() {
	cfg := struct {
		chip   string
		adcClk int
		adcCsz int
		adcDo  int
		adcDi  int
		dacClk int
		dacCsz int
		dacDi  int
		tclk   time.Duration
		cycles int
	}{
		chip:   "gpiochip0",
		adcCsz: rpi.J8p37,
		adcClk: rpi.J8p36,
		adcDo:  rpi.J8p40,
		adcDi:  rpi.J8p38,
		dacCsz: rpi.J8p24,
		dacClk: rpi.J8p23,
		dacDi:  rpi.J8p19,
		tclk:   time.Nanosecond * 500,
		cycles: 20,
	}
	c, err := gpiocdev.NewChip(cfg.chip, gpiocdev.WithConsumer("loopback"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loopback: %s\n", err)
		os.Exit(1)
	}
	adc, err := mcp3w0c.NewMCP3208(c, cfg.adcClk, cfg.adcCsz, cfg.adcDi, cfg.adcDo,
		mcp3w0c.WithTclk(cfg.tclk))
	if err != nil {
		c.Close()
		fmt.Fprintf(os.Stderr, "loopback: %s\n", err)
		os.Exit(1)
	}
	defer adc.Close()
	dac, err := mcp49x1.NewMCP4901(c, cfg.dacClk, cfg.dacCsz, cfg.dacDi,
		mcp49x1.WithTclk(cfg.tclk))
	c.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loopback: %s\n", err)
		os.Exit(1)
	}
	defer dac.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s, err := daclut.NewSession(dac, adc.Channel(0), daclut.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loopback: %s\n", err)
		os.Exit(1)
	}
	lut, err := s.Run(cfg.cycles)
	if err != nil && !daclut.IsDiagnostic(err) {
		fmt.Fprintf(os.Stderr, "loopback: %s\n", err)
		os.Exit(1)
	}
	emit.CTable(os.Stdout, lut.Round(), emit.DefaultName)
}
