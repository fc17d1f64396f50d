// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package sim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/daclut/sim"
)

func TestTransfer(t *testing.T) {
	patterns := []struct {
		name    string
		options []sim.Option
		code    int
		val     float64
	}{
		{"ideal zero", nil, 0, 0},
		{"ideal full", nil, 255, 4095},
		{"ideal mid", []sim.Option{sim.WithRanges(256, 256)}, 100, 100},
		{"offset", []sim.Option{sim.WithOffset(10)}, 0, 10},
		{"gain", []sim.Option{sim.WithGain(0.5)}, 255, 2047.5},
		{"bow", []sim.Option{sim.WithRanges(3, 101), sim.WithBow(0.5)}, 1, 62.5},
		{"saturate high", []sim.Option{sim.WithOffset(100)}, 255, 4095},
		{"saturate low", []sim.Option{sim.WithOffset(-100)}, 0, 0},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			l := sim.New(p.options...)
			assert.InDelta(t, p.val, l.Transfer(p.code), 1e-9)
		}
		t.Run(p.name, tf)
	}
}

func TestSetCode(t *testing.T) {
	l := sim.New()
	assert.Nil(t, l.SetCode(0))
	assert.Nil(t, l.SetCode(255))
	assert.Equal(t, sim.ErrInvalidCode, l.SetCode(256))
	assert.Equal(t, sim.ErrInvalidCode, l.SetCode(-1))
	writes, samples := l.Counts()
	assert.Equal(t, 2, writes)
	assert.Equal(t, 0, samples)
}

func TestSample(t *testing.T) {
	l := sim.New(sim.WithGain(0), sim.WithOffset(1000))
	v, err := l.Sample()
	require.Nil(t, err)
	assert.Equal(t, 1000, v)

	// noise is reproducible for a given seed
	l1 := sim.New(sim.WithNoise(5), sim.WithSeed(42))
	l2 := sim.New(sim.WithNoise(5), sim.WithSeed(42))
	for code := 0; code < 256; code += 17 {
		require.Nil(t, l1.SetCode(code))
		require.Nil(t, l2.SetCode(code))
		v1, err := l1.Sample()
		require.Nil(t, err)
		v2, err := l2.Sample()
		require.Nil(t, err)
		assert.Equal(t, v1, v2)
		assert.GreaterOrEqual(t, v1, 0)
		assert.Less(t, v1, 4096)
	}
}

func TestFault(t *testing.T) {
	l := sim.New(sim.WithFaultAfter(2))
	_, err := l.Sample()
	assert.Nil(t, err)
	_, err = l.Sample()
	assert.Nil(t, err)
	_, err = l.Sample()
	assert.Equal(t, sim.ErrFault, err)
}

func TestDelay(t *testing.T) {
	l := sim.New()
	start := time.Now()
	l.Delay(time.Hour)
	l.Delay(time.Minute)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, time.Hour+time.Minute, l.Elapsed())
}
