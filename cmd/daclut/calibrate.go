// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/warthog618/config"
	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/emit"
	"github.com/warthog618/daclut/publish"
)

func init() {
	calibrateCmd.SetHelpTemplate(calibrateCmd.HelpTemplate() + extendedCalibrateHelp)
	rootCmd.AddCommand(calibrateCmd)
}

var extendedCalibrateHelp = `
Backends:
  sim:          a simulated noisy non-linear loop
  gpio:         MCP49x1 DAC and MCP3xxx ADC on bit bashed GPIO lines
  spidev:       MCP49x1 DAC and MCP3xxx ADC on spidev ports
  serial:       a microcontroller bridge on a serial port

Formats:
  c:            a C array definition
  json:         a JSON document including the geometry
  bin:          little endian uint16 values

Configuration:
  Flags may also be set in the environment, e.g. DACLUT_CYCLES=50, or in
  the JSON config file, using the flag name without dashes as the key.
`

var calibrateCmd = &cobra.Command{
	Use:   "calibrate [flags]",
	Short: "Calibrate the loop and emit the lookup table",
	Long: `Drive the DAC through its code range for a number of cycles, smoothing the ADC
response, then interpolate and invert the response into a lookup table indexed
by ADC code.`,
	Args: cobra.NoArgs,
	RunE: calibrate,
}

func calibrate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	logger := newLogger()
	s, b, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	cycles := cfg.MustGet("cycles").Int()
	lut, err := s.Run(cycles)
	if err != nil {
		if !daclut.IsDiagnostic(err) {
			return err
		}
		logger.Warn("table may be inaccurate", "module", "calibrate", "error", err)
	}
	doc := emit.NewDocument(lut, s.Geometry(), cycles)
	doc.Name = cfg.MustGet("name").String()
	if err := writeDocument(cfg, doc); err != nil {
		return err
	}
	return publishDocument(cfg, logger, doc)
}

func newSession(cfg *config.Config, logger *slog.Logger) (*daclut.Session, *backend, error) {
	g := daclut.Geometry{
		DACRange:  cfg.MustGet("dacrange").Int(),
		ADCRange:  cfg.MustGet("adcrange").Int(),
		FineSteps: cfg.MustGet("finesteps").Int(),
	}
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	var search daclut.SearchOption
	switch s := cfg.MustGet("search").String(); s {
	case "linear":
		search = daclut.WithLinearSearch
	case "monotonic":
		search = daclut.WithMonotonicSearch
	default:
		return nil, nil, fmt.Errorf("unknown search %q", s)
	}
	b, err := newBackend(cfg, g)
	if err != nil {
		return nil, nil, err
	}
	options := []daclut.SessionOption{
		daclut.WithGeometry(g),
		daclut.WithAveraging(cfg.MustGet("averaging").Int()),
		daclut.WithAlpha(cfg.MustGet("alpha").Float()),
		daclut.WithSettle(cfg.MustGet("settle").Duration()),
		daclut.WithSampleSpacing(cfg.MustGet("spacing").Duration()),
		daclut.WithLogger(logger),
		search,
	}
	if b.delayer != nil {
		options = append(options, daclut.WithDelayer(b.delayer))
	}
	s, err := daclut.NewSession(b.dac, b.adc, options...)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return s, b, nil
}

func writeDocument(cfg *config.Config, doc emit.Document) error {
	format := cfg.MustGet("format").String()
	out := cfg.MustGet("out").String()
	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return emit.Write(w, format, doc)
}

func publishDocument(cfg *config.Config, logger *slog.Logger, doc emit.Document) error {
	broker := cfg.MustGet("mqttbroker").String()
	if broker == "" {
		return nil
	}
	c, err := publish.Connect(broker, "daclut", publish.DefaultTimeout)
	if err != nil {
		return err
	}
	defer c.Disconnect(250)
	topic := cfg.MustGet("mqtttopic").String()
	if err := publish.New(c, topic).Publish(doc); err != nil {
		return err
	}
	logger.Info("table published", "module", "publish", "topic", topic)
	return nil
}
