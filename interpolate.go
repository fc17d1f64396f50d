// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut

// RawCurve is the smoothed ADC response indexed by DAC code.
type RawCurve []float64

// CoarseCurve is the raw curve linearly upsampled to ADC code resolution.
type CoarseCurve []float64

// FineCurve is the coarse curve further subdivided by the fine steps.
type FineCurve []float64

// Interpolate linearly expands the raw curve to ADC code resolution.
//
// The raw curve must contain g.DACRange points.
func Interpolate(raw RawCurve, g Geometry) CoarseCurve {
	coarse := make(CoarseCurve, g.ADCRange)
	InterpolateInto(coarse, raw, g)
	return coarse
}

// InterpolateInto performs Interpolate, writing the coarse curve into dst.
//
// Each raw interval i contributes g.Steps() points starting at i*g.Steps().
// The final coarse point is pinned to the final raw point, and that value is
// held across any coarse points following the last interval.
func InterpolateInto(dst CoarseCurve, raw RawCurve, g Geometry) {
	steps := g.Steps()
	div := float64(steps)
	for i := 0; i < g.DACRange-1; i++ {
		idx := i * steps
		inc := (raw[i+1] - raw[i]) / div
		for j := 0; j < steps; j++ {
			dst[idx+j] = raw[i] + inc*float64(j)
		}
	}
	last := raw[g.DACRange-1]
	for i := (g.DACRange - 1) * steps; i < g.ADCRange; i++ {
		dst[i] = last
	}
}

// Refine subdivides each interior coarse interval into g.FineSteps points.
//
// The coarse curve must contain g.ADCRange points.
// The returned curve has g.FineLen() points, of which only the first
// g.FineSpan() are written.
func Refine(coarse CoarseCurve, g Geometry) FineCurve {
	fine := make(FineCurve, g.FineLen())
	RefineInto(fine, coarse, g)
	return fine
}

// RefineInto performs Refine, writing the fine curve into dst.
//
// No point is written for the final coarse point, so points from
// g.FineSpan() onwards are left untouched.
func RefineInto(dst FineCurve, coarse CoarseCurve, g Geometry) {
	div := float64(g.FineSteps)
	for i := 0; i < g.ADCRange-1; i++ {
		idx := i * g.FineSteps
		inc := (coarse[i+1] - coarse[i]) / div
		for j := 0; j < g.FineSteps; j++ {
			dst[idx+j] = coarse[i] + inc*float64(j)
		}
	}
}
