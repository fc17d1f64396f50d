// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/emit"
)

func init() {
	verifyCmd.Flags().BoolVarP(&verifyOpts.Plot, "plot", "p", false, "print each corrected point for a serial plotter")
	rootCmd.AddCommand(verifyCmd)
}

var (
	verifyCmd = &cobra.Command{
		Use:   "verify [flags]",
		Short: "Calibrate the loop then check the correction",
		Long: `Calibrate the loop, then sweep the DAC once more, correcting each ADC reading
with the new table, and report how far the corrected readings are from ideal.`,
		Args: cobra.NoArgs,
		RunE: verify,
	}
	verifyOpts = struct {
		Plot bool
	}{}
)

func verify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	logger := newLogger()
	s, b, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	_, err = s.Run(cfg.MustGet("cycles").Int())
	if err != nil {
		if !daclut.IsDiagnostic(err) {
			return err
		}
		logger.Warn("table may be inaccurate", "module", "verify", "error", err)
	}
	pp, err := s.Verify()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	worst := daclut.VerifyPoint{}
	sum := 0.0
	for _, p := range pp {
		if verifyOpts.Plot {
			emit.PlotPoint(w, p.Position, int(math.Round(p.Corrected)))
		}
		e := math.Abs(p.Corrected - float64(p.Position))
		sum += e
		if e > math.Abs(worst.Corrected-float64(worst.Position)) {
			worst = p
		}
	}
	fmt.Fprintf(w, "codes: %d, mean error: %.2f, max error: %.2f at code %d\n",
		len(pp), sum/float64(len(pp)),
		math.Abs(worst.Corrected-float64(worst.Position)), worst.Code)
	return nil
}
