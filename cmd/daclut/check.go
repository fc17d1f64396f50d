// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/emit"
)

func init() {
	checkCmd.Flags().BoolVarP(&checkOpts.Strict, "strict", "s", false, "fail if the table decreases")
	rootCmd.AddCommand(checkCmd)
}

var (
	checkCmd = &cobra.Command{
		Use:   "check [flags] <file>",
		Short: "Check a table emitted in JSON",
		Long: `Read a table emitted in JSON, validate it against its geometry, and report
its span and whether it is monotonic.`,
		Args:                  cobra.ExactArgs(1),
		RunE:                  check,
		DisableFlagsInUseLine: true,
	}
	checkOpts = struct {
		Strict bool
	}{}
)

func check(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	d, err := emit.ReadJSON(f)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	g := d.Geometry
	fmt.Fprintf(w, "geometry: dac %d, adc %d, fine %d\n", g.DACRange, g.ADCRange, g.FineSteps)
	fmt.Fprintf(w, "created: %s, cycles: %d\n", d.Created.Format("2006-01-02 15:04:05"), d.Cycles)
	fmt.Fprintf(w, "span: %d..%d of %d\n", slices.Min(d.LUT), slices.Max(d.LUT), (g.DACRange-1)*g.Steps())
	err = daclut.CheckMonotonic(d.LUT)
	if err == nil {
		fmt.Fprintln(w, "monotonic: yes")
		return nil
	}
	fmt.Fprintf(w, "monotonic: no, %s\n", err)
	if checkOpts.Strict {
		return err
	}
	return nil
}
