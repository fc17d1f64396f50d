// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// A utility to calibrate a DAC/ADC loop and emit the correcting lookup table.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/emit"
	"github.com/warthog618/go-gpiocdev/device/rpi"
)

var rootCmd = &cobra.Command{
	Use:   "daclut",
	Short: "daclut calibrates a DAC/ADC loop",
	Long: "daclut drives a DAC through its code range, measures the response with an ADC, " +
		"and builds a lookup table mapping ADC readings back to DAC positions",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbosity int

func init() {
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&verbosity, "verbose", "v", "increase logging, repeat for debug")
	pf.StringP("config-file", "c", "daclut.json", "configuration file")
	pf.StringP("backend", "b", "sim", "hardware backend: sim, gpio, spidev or serial")
	pf.IntP("cycles", "n", 100, "number of measurement passes")
	pf.Int("dac-range", daclut.DefaultDACRange, "number of DAC codes")
	pf.Int("adc-range", daclut.DefaultADCRange, "number of ADC codes")
	pf.Int("fine-steps", daclut.DefaultFineSteps, "fine subdivisions per coarse step")
	pf.Int("averaging", daclut.DefaultAveraging, "ADC samples averaged per DAC code")
	pf.Float64("alpha", daclut.DefaultAlpha, "smoothing weight given to history")
	pf.Duration("settle", daclut.DefaultSettle, "settling time after each DAC change")
	pf.Duration("spacing", daclut.DefaultSampleSpacing, "delay after each ADC sample")
	pf.String("search", "linear", "LUT search: linear or monotonic")
	pf.StringP("format", "f", emit.FormatC, "output format: "+strings.Join(emit.Formats(), ", "))
	pf.StringP("out", "o", "-", "output file, - for stdout")
	pf.String("name", emit.DefaultName, "identifier of the C table")
	pf.String("gpiochip", "gpiochip0", "GPIO chip of the bit bashed bus")
	pf.Int("clk", rpi.J8p36, "ADC clock line")
	pf.Int("csz", rpi.J8p37, "ADC chip select line")
	pf.Int("di", rpi.J8p38, "ADC data in line")
	pf.Int("do", rpi.J8p40, "ADC data out line")
	pf.Int("dac-clk", rpi.J8p23, "DAC clock line")
	pf.Int("dac-csz", rpi.J8p24, "DAC chip select line")
	pf.Int("dac-di", rpi.J8p19, "DAC data in line")
	pf.Int("adc-channel", 0, "ADC channel sampled")
	pf.Duration("tclk", 500*time.Nanosecond, "bit bashed SPI half clock period")
	pf.String("spidev-adc", "/dev/spidev0.0", "spidev port of the ADC")
	pf.String("spidev-dac", "/dev/spidev0.1", "spidev port of the DAC")
	pf.String("serial-port", "/dev/ttyUSB0", "serial port of the microcontroller")
	pf.Uint("serial-baud", 115200, "serial line rate")
	pf.String("mqtt-broker", "", "MQTT broker to publish the table to, e.g. tcp://localhost:1883")
	pf.String("mqtt-topic", "daclut/lut", "MQTT topic of the published table")
	pf.Float64("sim-gain", 0.95, "simulated loop gain")
	pf.Float64("sim-offset", 20, "simulated loop offset in ADC codes")
	pf.Float64("sim-bow", 0.1, "simulated loop curvature")
	pf.Float64("sim-noise", 2, "simulated ADC noise standard deviation in codes")
	pf.Int64("sim-seed", 1, "simulated noise seed")
}

func main() {
	if cmd, err := rootCmd.ExecuteC(); err != nil {
		logErr(cmd, err)
		os.Exit(1)
	}
}

func logErr(cmd *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "daclut %s: %s\n", cmd.Name(), err)
}

// configKey maps a flag name to its configuration key.
//
// Keys are undotted as dots are path separators to the config getters.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "")
}

// loadConfig layers, in increasing precedence, the flag defaults, the config
// file, the environment and the flags set on the command line.
func loadConfig(cmd *cobra.Command) *config.Config {
	defaults := map[string]interface{}{}
	overrides := map[string]interface{}{}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "verbose" || f.Name == "help" {
			return
		}
		defaults[configKey(f.Name)] = f.DefValue
		if f.Changed {
			overrides[configKey(f.Name)] = f.Value.String()
		}
	})
	def := dict.New(dict.WithMap(defaults))
	cfg := config.New(
		dict.New(dict.WithMap(overrides)),
		env.New(env.WithEnvPrefix("DACLUT_")),
		config.WithDefault(def))
	// the default file is optional
	if _, err := os.Stat(cfg.MustGet("configfile").String()); err == nil {
		cfg.Append(
			blob.NewConfigFile(cfg, "configfile", "daclut.json", json.NewDecoder()))
	}
	cfg = cfg.GetConfig("", config.WithMust())
	return cfg
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity > 1:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(NewHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
