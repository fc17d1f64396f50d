// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut_test

import (
	"testing"

	"github.com/warthog618/daclut"
)

func benchFine(g daclut.Geometry) daclut.FineCurve {
	raw := rawCurve(g, func(x float64) float64 { return 30 + 14*x + 0.008*x*x })
	return daclut.Refine(daclut.Interpolate(raw, g), g)
}

func BenchmarkInterpolate(b *testing.B) {
	g := daclut.DefaultGeometry()
	raw := rawCurve(g, linear)
	coarse := make(daclut.CoarseCurve, g.ADCRange)
	for i := 0; i < b.N; i++ {
		daclut.InterpolateInto(coarse, raw, g)
	}
}

func BenchmarkRefine(b *testing.B) {
	g := daclut.DefaultGeometry()
	coarse := daclut.Interpolate(rawCurve(g, linear), g)
	fine := make(daclut.FineCurve, g.FineLen())
	for i := 0; i < b.N; i++ {
		daclut.RefineInto(fine, coarse, g)
	}
}

func BenchmarkBuildLUT(b *testing.B) {
	g := daclut.Geometry{DACRange: 64, ADCRange: 1024, FineSteps: 5}
	fine := benchFine(g)
	lut := make(daclut.LUT, g.ADCRange)
	for i := 0; i < b.N; i++ {
		daclut.BuildLUTInto(lut, fine, g)
	}
}

func BenchmarkBuildLUTMonotonic(b *testing.B) {
	g := daclut.Geometry{DACRange: 64, ADCRange: 1024, FineSteps: 5}
	fine := benchFine(g)
	lut := make(daclut.LUT, g.ADCRange)
	for i := 0; i < b.N; i++ {
		daclut.BuildLUTMonotonicInto(lut, fine, g)
	}
}
