// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package mcp3w0c_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/spi"
	"github.com/warthog618/daclut/spi/mcp3w0c"
	"github.com/warthog618/daclut/spi/spitest"
)

// device simulates the conversion timing of an MCP3w0c.
func device(b *spitest.Bus, width int, values []int) {
	b.Out = func(edge int, in []int) int {
		switch {
		case edge == 6:
			// sample clock, DOUT still floating
			return 1
		case edge < 8, edge >= 8+width:
			return 0
		}
		ch := in[2]<<2 | in[3]<<1 | in[4]
		v := values[ch]
		if in[1] == 0 {
			// differential reads invert the reading
			v = (1<<width - 1) - v
		}
		return (v >> uint(width-1-(edge-8))) & 0x01
	}
}

func TestRead(t *testing.T) {
	values := []int{0, 1, 0x555, 0xaaa, 0x800, 0x7ff, 0xffe, 0xfff}
	patterns := []struct {
		name  string
		width uint
	}{
		{"mcp3208", 12},
		{"mcp3008", 10},
	}
	for _, p := range patterns {
		tf := func(t *testing.T) {
			mask := 1<<p.width - 1
			vv := make([]int, len(values))
			for i, v := range values {
				vv[i] = v & mask
			}
			b := spitest.New()
			device(b, int(p.width), vv)
			s := spi.NewFromLines(b.Sclk, b.Ssz, b.Mosi, b.Miso, spi.WithTclk(time.Nanosecond))
			adc := mcp3w0c.NewFromSPI(s, p.width)
			assert.Equal(t, 1<<p.width, adc.Range())
			for ch, v := range vv {
				d, err := adc.Read(ch)
				require.Nil(t, err)
				assert.Equal(t, uint16(v), d, ch)
				d, err = adc.ReadDifferential(ch)
				require.Nil(t, err)
				assert.Equal(t, uint16(mask-v), d, ch)
			}
			tt := b.Transactions()
			require.Len(t, tt, 2*len(vv))
			// start, single ended, channel 5
			assert.Equal(t, []int{1, 1, 1, 0, 1}, tt[10][:5])
			// start, differential, channel 5
			assert.Equal(t, []int{1, 0, 1, 0, 1}, tt[11][:5])
			assert.Len(t, tt[0], int(p.width)+7)
		}
		t.Run(p.name, tf)
	}
}

func TestChannel(t *testing.T) {
	b := spitest.New()
	device(b, 12, []int{0, 0, 0, 1234, 0, 0, 0, 0})
	s := spi.NewFromLines(b.Sclk, b.Ssz, b.Mosi, b.Miso, spi.WithTclk(time.Nanosecond))
	adc := mcp3w0c.NewFromSPI(s, 12, mcp3w0c.WithTset(time.Nanosecond))
	var sampler daclut.ADC = adc.Channel(3)
	v, err := sampler.Sample()
	require.Nil(t, err)
	assert.Equal(t, 1234, v)
}

func TestInvalidChannel(t *testing.T) {
	b := spitest.New()
	s := spi.NewFromLines(b.Sclk, b.Ssz, b.Mosi, b.Miso, spi.WithTclk(time.Nanosecond))
	adc := mcp3w0c.NewFromSPI(s, 10, mcp3w0c.WithChannels(4))
	for _, ch := range []int{-1, 4, 8} {
		_, err := adc.Read(ch)
		assert.True(t, errors.Is(err, mcp3w0c.ErrInvalidChannel), ch)
	}
	assert.Empty(t, b.Transactions())
}

func TestClose(t *testing.T) {
	b := spitest.New()
	s := spi.NewFromLines(b.Sclk, b.Ssz, b.Mosi, b.Miso, spi.WithTclk(time.Nanosecond))
	adc := mcp3w0c.NewFromSPI(s, 12)
	err := adc.Close()
	require.Nil(t, err)
	assert.True(t, b.Sclk.Closed())
	assert.True(t, b.Miso.Closed())
	_, err = adc.Read(0)
	assert.Equal(t, mcp3w0c.ErrClosed, err)
	err = adc.Close()
	assert.Equal(t, mcp3w0c.ErrClosed, err)
}
