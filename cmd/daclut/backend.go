// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"

	"github.com/warthog618/config"
	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/serial"
	"github.com/warthog618/daclut/sim"
	"github.com/warthog618/daclut/spi/mcp3w0c"
	"github.com/warthog618/daclut/spi/mcp49x1"
	"github.com/warthog618/daclut/spidev"
	"github.com/warthog618/go-gpiocdev"
)

// backend is the DAC/ADC loop under calibration.
type backend struct {
	dac daclut.DAC
	adc daclut.ADC
	// nil for real time
	delayer daclut.Delayer
	closers []func() error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

var errUnknownBackend = errors.New("unknown backend")

func newBackend(cfg *config.Config, g daclut.Geometry) (*backend, error) {
	name := cfg.MustGet("backend").String()
	switch name {
	case "sim":
		return newSimBackend(cfg, g), nil
	case "gpio":
		return newGPIOBackend(cfg, g)
	case "spidev":
		return newSpidevBackend(cfg, g)
	case "serial":
		return newSerialBackend(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, name)
	}
}

func newSimBackend(cfg *config.Config, g daclut.Geometry) *backend {
	l := sim.New(
		sim.WithRanges(g.DACRange, g.ADCRange),
		sim.WithGain(cfg.MustGet("simgain").Float()),
		sim.WithOffset(cfg.MustGet("simoffset").Float()),
		sim.WithBow(cfg.MustGet("simbow").Float()),
		sim.WithNoise(cfg.MustGet("simnoise").Float()),
		sim.WithSeed(int64(cfg.MustGet("simseed").Int())),
	)
	return &backend{dac: l, adc: l, delayer: l}
}

// widths of the supported parts, by range
var (
	dacWidths = map[int]uint{256: 8, 1024: 10, 4096: 12}
	adcWidths = map[int]uint{1024: 10, 4096: 12}
)

func widths(g daclut.Geometry) (uint, uint, error) {
	dw, ok := dacWidths[g.DACRange]
	if !ok {
		return 0, 0, fmt.Errorf("no supported DAC has range %d", g.DACRange)
	}
	aw, ok := adcWidths[g.ADCRange]
	if !ok {
		return 0, 0, fmt.Errorf("no supported ADC has range %d", g.ADCRange)
	}
	return dw, aw, nil
}

func newGPIOBackend(cfg *config.Config, g daclut.Geometry) (*backend, error) {
	dw, aw, err := widths(g)
	if err != nil {
		return nil, err
	}
	c, err := gpiocdev.NewChip(cfg.MustGet("gpiochip").String(), gpiocdev.WithConsumer("daclut"))
	if err != nil {
		return nil, err
	}
	// requested lines outlive the chip
	defer c.Close()
	tclk := cfg.MustGet("tclk").Duration()
	adc, err := mcp3w0c.New(
		c,
		cfg.MustGet("clk").Int(),
		cfg.MustGet("csz").Int(),
		cfg.MustGet("di").Int(),
		cfg.MustGet("do").Int(),
		aw,
		mcp3w0c.WithTclk(tclk),
		mcp3w0c.WithTset(tclk))
	if err != nil {
		return nil, err
	}
	dac, err := mcp49x1.New(
		c,
		cfg.MustGet("dacclk").Int(),
		cfg.MustGet("daccsz").Int(),
		cfg.MustGet("dacdi").Int(),
		dw,
		mcp49x1.WithTclk(tclk))
	if err != nil {
		adc.Close()
		return nil, err
	}
	return &backend{
		dac:     dac,
		adc:     adc.Channel(cfg.MustGet("adcchannel").Int()),
		closers: []func() error{adc.Close, dac.Close},
	}, nil
}

func newSpidevBackend(cfg *config.Config, g daclut.Geometry) (*backend, error) {
	dw, aw, err := widths(g)
	if err != nil {
		return nil, err
	}
	ap, err := spidev.Open(cfg.MustGet("spidevadc").String(), 0)
	if err != nil {
		return nil, err
	}
	dp, err := spidev.Open(cfg.MustGet("spidevdac").String(), 0)
	if err != nil {
		ap.Close()
		return nil, err
	}
	return &backend{
		dac:     spidev.NewDAC(dp, dw),
		adc:     spidev.NewADC(ap, aw).Channel(cfg.MustGet("adcchannel").Int()),
		closers: []func() error{ap.Close, dp.Close},
	}, nil
}

func newSerialBackend(cfg *config.Config) (*backend, error) {
	b, err := serial.Open(serial.Options{
		Port: cfg.MustGet("serialport").String(),
		Baud: uint(cfg.MustGet("serialbaud").Int()),
	})
	if err != nil {
		return nil, err
	}
	return &backend{dac: b, adc: b, closers: []func() error{b.Close}}, nil
}
