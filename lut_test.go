// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package daclut_test

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/daclut"
)

func TestBuildLUTIdentity(t *testing.T) {
	// equal ranges, so the identity maps each DAC code to the same ADC code
	g := daclut.Geometry{DACRange: 256, ADCRange: 256, FineSteps: 5}
	raw := rawCurve(g, func(x float64) float64 { return x })
	lut, err := daclut.BuildLUT(daclut.Refine(daclut.Interpolate(raw, g), g), g)
	require.Nil(t, err)
	require.Len(t, lut, g.ADCRange)
	for i, v := range lut {
		assert.InDelta(t, float64(i), v, 1, "code %d", i)
	}
	assert.Equal(t, 100.0, lut[100])
}

func TestBuildLUTScaledIdentity(t *testing.T) {
	// ADC reading equal to DAC position at coarse resolution
	g := daclut.DefaultGeometry()
	steps := float64(g.Steps())
	raw := rawCurve(g, func(x float64) float64 { return x * steps })
	lut, err := daclut.BuildLUT(daclut.Refine(daclut.Interpolate(raw, g), g), g)
	require.Nil(t, err)
	for i, v := range lut {
		assert.InDelta(t, float64(i), v, steps, "code %d", i)
	}
	// exact until the last measured point
	for i := 0; i <= (g.DACRange-1)*g.Steps(); i++ {
		assert.Equal(t, float64(i), lut[i], "code %d", i)
	}
}

func TestBuildLUTTieBreak(t *testing.T) {
	g := daclut.Geometry{DACRange: 2, ADCRange: 4, FineSteps: 1}
	patterns := []struct {
		name     string
		fine     daclut.FineCurve
		expected daclut.LUT
	}{
		{"equidistant", daclut.FineCurve{0, 2, 4, 99}, daclut.LUT{0, 0, 1, 1}},
		{"plateau", daclut.FineCurve{1, 1, 1, 99}, daclut.LUT{0, 0, 0, 0}},
		{"step", daclut.FineCurve{0, 0, 3, 99}, daclut.LUT{0, 0, 2, 2}},
		{"descending", daclut.FineCurve{3, 2, 1, 99}, daclut.LUT{2, 2, 1, 0}},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			for run := 0; run < 3; run++ {
				lut, err := daclut.BuildLUT(p.fine, g)
				require.Nil(t, err)
				assert.Equal(t, p.expected, lut)
			}
		}
		t.Run(p.name, tf)
	}
}

func TestBuildLUTFineScale(t *testing.T) {
	g := daclut.Geometry{DACRange: 2, ADCRange: 4, FineSteps: 2}
	fine := daclut.FineCurve{0, 0.5, 1, 1.5, 2, 3, 0, 0}
	lut, err := daclut.BuildLUT(fine, g)
	require.Nil(t, err)
	// the unwritten tail is excluded from the search
	assert.Equal(t, daclut.LUT{0, 1, 2, 2.5}, lut)
}

func TestBuildLUTSearchFailed(t *testing.T) {
	g := daclut.Geometry{DACRange: 2, ADCRange: 4, FineSteps: 1}
	patterns := []struct {
		name     string
		fine     daclut.FineCurve
		expected daclut.LUT
	}{
		{"empty", daclut.FineCurve{}, daclut.LUT{0, 0, 0, 0}},
		{"nan", daclut.FineCurve{0, math.NaN(), 3, 0}, daclut.LUT{0, 0, 2, 2}},
		{"all nan", daclut.FineCurve{math.NaN(), math.NaN(), math.NaN(), 0}, daclut.LUT{0, 0, 0, 0}},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			lut, err := daclut.BuildLUT(p.fine, g)
			assert.ErrorIs(t, err, daclut.ErrSearchFailed)
			assert.True(t, daclut.IsDiagnostic(err))
			assert.Equal(t, p.expected, lut)

			lut, err = daclut.BuildLUTMonotonic(p.fine, g)
			assert.ErrorIs(t, err, daclut.ErrSearchFailed)
			assert.Nil(t, lut)
		}
		t.Run(p.name, tf)
	}
}

func TestBuildLUTMonotonicRejects(t *testing.T) {
	g := daclut.Geometry{DACRange: 2, ADCRange: 4, FineSteps: 1}
	lut, err := daclut.BuildLUTMonotonic(daclut.FineCurve{0, 2, 1, 0}, g)
	assert.Nil(t, lut)
	assert.ErrorIs(t, err, daclut.ErrNonMonotonicInput)
	var nme daclut.NonMonotonicError
	require.True(t, errors.As(err, &nme))
	assert.Equal(t, daclut.NonMonotonicError{Index: 2, Prev: 2, Value: 1}, nme)

	dst := daclut.LUT{7, 7, 7, 7}
	err = daclut.BuildLUTMonotonicInto(dst, daclut.FineCurve{0, 2, 1, 0}, g)
	assert.ErrorIs(t, err, daclut.ErrNonMonotonicInput)
	assert.Equal(t, daclut.LUT{7, 7, 7, 7}, dst)
}

func TestBuildLUTMonotonicEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	patterns := []struct {
		name string
		g    daclut.Geometry
		fine func(g daclut.Geometry) daclut.FineCurve
	}{
		{"identity", daclut.Geometry{DACRange: 64, ADCRange: 64, FineSteps: 5},
			func(g daclut.Geometry) daclut.FineCurve {
				raw := rawCurve(g, func(x float64) float64 { return x })
				return daclut.Refine(daclut.Interpolate(raw, g), g)
			}},
		{"bowed", daclut.Geometry{DACRange: 32, ADCRange: 512, FineSteps: 5},
			func(g daclut.Geometry) daclut.FineCurve {
				raw := rawCurve(g, func(x float64) float64 { return 40 + 0.4*x*x })
				return daclut.Refine(daclut.Interpolate(raw, g), g)
			}},
		{"offset", daclut.Geometry{DACRange: 16, ADCRange: 256, FineSteps: 3},
			func(g daclut.Geometry) daclut.FineCurve {
				raw := rawCurve(g, func(x float64) float64 { return 100 + 4*x })
				return daclut.Refine(daclut.Interpolate(raw, g), g)
			}},
		{"plateaus", daclut.Geometry{DACRange: 16, ADCRange: 256, FineSteps: 4},
			func(g daclut.Geometry) daclut.FineCurve {
				fine := make(daclut.FineCurve, g.FineLen())
				for i := range fine[:g.FineSpan()] {
					fine[i] = float64(rng.Intn(300))
				}
				sort.Float64s(fine[:g.FineSpan()])
				return fine
			}},
		{"halves", daclut.Geometry{DACRange: 16, ADCRange: 256, FineSteps: 2},
			func(g daclut.Geometry) daclut.FineCurve {
				fine := make(daclut.FineCurve, g.FineLen())
				for i := range fine[:g.FineSpan()] {
					fine[i] = float64(i) / 2
				}
				return fine
			}},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			fine := p.fine(p.g)
			expected, err := daclut.BuildLUT(fine, p.g)
			require.Nil(t, err)
			lut, err := daclut.BuildLUTMonotonic(fine, p.g)
			require.Nil(t, err)
			assert.Equal(t, expected, lut)
		}
		t.Run(p.name, tf)
	}
}

func TestLUTRound(t *testing.T) {
	lut := daclut.LUT{0, 0.4, 0.5, 1.5, 2.49, -3, 70000, math.NaN(), 4095}
	assert.Equal(t, []uint16{0, 0, 1, 2, 2, 0, 65535, 0, 4095}, lut.Round())
}

func TestLUTLookup(t *testing.T) {
	lut := daclut.LUT{1, 2, 3}
	patterns := []struct {
		name string
		code int
		val  float64
	}{
		{"first", 0, 1},
		{"mid", 1, 2},
		{"last", 2, 3},
		{"below", -5, 1},
		{"above", 10, 3},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			assert.Equal(t, p.val, lut.Lookup(p.code))
		}
		t.Run(p.name, tf)
	}
	assert.Equal(t, 0.0, daclut.LUT{}.Lookup(1))
}

func TestCheckMonotonic(t *testing.T) {
	assert.Nil(t, daclut.CheckMonotonic([]float64{}))
	assert.Nil(t, daclut.CheckMonotonic([]float64{1, 1, 2, 3}))
	assert.Nil(t, daclut.CheckMonotonic([]uint16{0, 0, 7, 4095}))
	err := daclut.CheckMonotonic([]uint16{0, 5, 4})
	assert.Equal(t, daclut.NonMonotonicError{Index: 2, Prev: 5, Value: 4}, err)
	assert.ErrorIs(t, err, daclut.ErrNonMonotonicInput)
	assert.True(t, daclut.IsDiagnostic(err))
	err = daclut.CheckMonotonic([]float64{0.5, -1})
	assert.Equal(t, daclut.NonMonotonicError{Index: 1, Prev: 0.5, Value: -1}, err)
}
