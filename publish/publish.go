// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package publish publishes calibration tables to an MQTT broker.
package publish

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/warthog618/daclut/emit"
)

// Client is the subset of an MQTT client used by the Publisher.
//
// It is satisfied by mqtt.Client.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// ErrTimeout indicates the broker did not acknowledge in time.
var ErrTimeout = errors.New("timeout")

// DefaultTimeout is the time allowed for the broker to acknowledge.
const DefaultTimeout = 5 * time.Second

// Publisher publishes documents as retained messages on a topic.
type Publisher struct {
	c       Client
	topic   string
	qos     byte
	timeout time.Duration
}

// New creates a Publisher.
func New(c Client, topic string, options ...Option) *Publisher {
	p := Publisher{c: c, topic: topic, qos: 1, timeout: DefaultTimeout}
	for _, option := range options {
		option(&p)
	}
	return &p
}

// Publish publishes the document in JSON form.
//
// The message is retained so late subscribers receive the current table.
func (p *Publisher) Publish(d emit.Document) error {
	var b bytes.Buffer
	if err := emit.JSON(&b, d); err != nil {
		return err
	}
	tok := p.c.Publish(p.topic, p.qos, true, b.Bytes())
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to %s: %w", p.topic, ErrTimeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Option specifies a construction option for the Publisher.
type Option func(*Publisher)

// WithQoS sets the quality of service of published messages.
//
// The default is 1.
func WithQoS(qos byte) Option {
	return func(p *Publisher) {
		p.qos = qos
	}
}

// WithTimeout sets the time allowed for the broker to acknowledge.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.timeout = d
	}
}

// Connect connects to the broker, e.g. "tcp://localhost:1883".
func Connect(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(timeout)
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to %s: %w", broker, ErrTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	return c, nil
}
