// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut

import (
	"fmt"
	"math"
	"sort"
)

// LUT maps ADC codes to DAC positions.
//
// Positions are expressed at coarse resolution, i.e. a DAC code multiplied
// by the geometry Steps, and are fractional until emitted.
type LUT []float64

// Lookup returns the position for the ADC code.
//
// Codes outside the table are clamped to its ends.
func (l LUT) Lookup(code int) float64 {
	if len(l) == 0 {
		return 0
	}
	if code < 0 {
		code = 0
	}
	if code >= len(l) {
		code = len(l) - 1
	}
	return l[code]
}

// Round returns the table rounded to the nearest integers, as emitted.
//
// Halves round away from zero and values are clamped to the uint16 range.
func (l LUT) Round() []uint16 {
	rr := make([]uint16, len(l))
	for i, v := range l {
		v = math.Round(v)
		switch {
		case math.IsNaN(v), v < 0:
			rr[i] = 0
		case v > math.MaxUint16:
			rr[i] = math.MaxUint16
		default:
			rr[i] = uint16(v)
		}
	}
	return rr
}

// BuildLUT inverts the fine curve into a table indexed by ADC code.
//
// For each ADC code the whole fine span is scanned for the point nearest to
// the code, with the lowest index winning ties. The entry is that index
// divided by g.FineSteps.
//
// An ErrSearchFailed error is returned if the span is empty or contains
// NaN. The table is still fully populated in that case.
func BuildLUT(fine FineCurve, g Geometry) (LUT, error) {
	lut := make(LUT, g.ADCRange)
	return lut, BuildLUTInto(lut, fine, g)
}

// BuildLUTInto performs BuildLUT, writing the table into dst.
func BuildLUTInto(dst LUT, fine FineCurve, g Geometry) error {
	span := fineSpan(fine, g)
	err := checkSearchable(span)
	scale := float64(g.FineSteps)
	for i := range dst {
		dst[i] = float64(nearest(span, float64(i))) / scale
	}
	return err
}

// BuildLUTMonotonic produces the same table as BuildLUT, using a binary
// search that relies on the fine span being non-decreasing.
//
// A NonMonotonicError is returned, and no table, if the span decreases.
func BuildLUTMonotonic(fine FineCurve, g Geometry) (LUT, error) {
	lut := make(LUT, g.ADCRange)
	if err := BuildLUTMonotonicInto(lut, fine, g); err != nil {
		return nil, err
	}
	return lut, nil
}

// BuildLUTMonotonicInto performs BuildLUTMonotonic, writing the table into
// dst.
//
// dst is left untouched if an error is returned.
func BuildLUTMonotonicInto(dst LUT, fine FineCurve, g Geometry) error {
	span := fineSpan(fine, g)
	if err := checkSearchable(span); err != nil {
		return err
	}
	if err := CheckMonotonic(span); err != nil {
		return err
	}
	scale := float64(g.FineSteps)
	for i := range dst {
		dst[i] = float64(nearestSorted(span, float64(i))) / scale
	}
	return nil
}

func fineSpan(fine FineCurve, g Geometry) []float64 {
	return fine[:min(g.FineSpan(), len(fine))]
}

func checkSearchable(span []float64) error {
	if len(span) == 0 {
		return fmt.Errorf("%w: empty fine curve", ErrSearchFailed)
	}
	for j, v := range span {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN at fine index %d", ErrSearchFailed, j)
		}
	}
	return nil
}

// nearest returns the lowest index of the span value closest to v.
func nearest(span []float64, v float64) int {
	minDiff := math.Inf(1)
	best := 0
	for j, f := range span {
		diff := math.Abs(v - f)
		if diff < minDiff {
			minDiff = diff
			best = j
		}
	}
	return best
}

// nearestSorted is nearest for a non-decreasing span.
func nearestSorted(span []float64, v float64) int {
	// first point >= v, so the lowest index holding its value
	above := sort.SearchFloat64s(span, v)
	if above == 0 {
		return 0
	}
	below := above - 1
	if above < len(span) && span[above]-v < v-span[below] {
		return above
	}
	// equal distances favour below, as do runs of equal values
	return sort.SearchFloat64s(span[:below+1], span[below])
}
