// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

package publish_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/daclut"
	"github.com/warthog618/daclut/emit"
	"github.com/warthog618/daclut/publish"
)

// token completes immediately, unless stalled.
type token struct {
	err     error
	stalled bool
	done    chan struct{}
}

func newToken(err error, stalled bool) *token {
	t := &token{err: err, stalled: stalled, done: make(chan struct{})}
	if !stalled {
		close(t.done)
	}
	return t
}

func (t *token) Wait() bool {
	<-t.done
	return true
}

func (t *token) WaitTimeout(time.Duration) bool {
	return !t.stalled
}

func (t *token) Done() <-chan struct{} {
	return t.done
}

func (t *token) Error() error {
	return t.err
}

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type client struct {
	mm      []message
	err     error
	stalled bool
}

func (c *client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mm = append(c.mm, message{topic, qos, retained, payload.([]byte)})
	return newToken(c.err, c.stalled)
}

func document() emit.Document {
	g := daclut.Geometry{DACRange: 2, ADCRange: 4, FineSteps: 1}
	return emit.Document{
		Geometry: g,
		Created:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Cycles:   1,
		LUT:      []uint16{0, 1, 2, 2},
		Name:     emit.DefaultName,
	}
}

func TestPublish(t *testing.T) {
	c := &client{}
	p := publish.New(c, "daclut/lut")
	d := document()
	err := p.Publish(d)
	require.Nil(t, err)
	require.Len(t, c.mm, 1)
	m := c.mm[0]
	assert.Equal(t, "daclut/lut", m.topic)
	assert.Equal(t, byte(1), m.qos)
	assert.True(t, m.retained)
	rd, err := emit.ReadJSON(bytes.NewReader(m.payload))
	require.Nil(t, err)
	assert.Equal(t, d, rd)
}

func TestPublishQoS(t *testing.T) {
	c := &client{}
	p := publish.New(c, "t", publish.WithQoS(2), publish.WithTimeout(time.Millisecond))
	require.Nil(t, p.Publish(document()))
	assert.Equal(t, byte(2), c.mm[0].qos)
}

func TestPublishErrors(t *testing.T) {
	c := &client{stalled: true}
	p := publish.New(c, "t")
	err := p.Publish(document())
	assert.True(t, errors.Is(err, publish.ErrTimeout))

	c = &client{err: errors.New("not authorised")}
	p = publish.New(c, "t")
	err = p.Publish(document())
	assert.True(t, errors.Is(err, c.err))
}
