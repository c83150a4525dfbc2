// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/perkstreet/pulsehub/internal/config"
	"github.com/perkstreet/pulsehub/internal/logging"
)

// MessageSource defines the interface for receiving upstream messages.
// This allows the bridge to work with any message transport.
type MessageSource interface {
	// Subscribe subscribes to a subject and returns a channel of raw
	// message payloads. The subscription ends when the context is canceled.
	Subscribe(ctx context.Context, subject string) (<-chan []byte, error)
	// Close releases resources.
	Close() error
}

// subscribeBuffer bounds how far a subscription may run ahead of the
// dispatch loop before messages are shed.
const subscribeBuffer = 256

// Conn is a NATS-backed MessageSource. The connection retries forever with
// a configurable backoff so the gateway survives broker restarts.
type Conn struct {
	nc *nats.Conn
}

// Connect establishes a NATS connection from the bridge config.
func Connect(cfg *config.NATSConfig) (*Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logging.Warn().Err(err).Msg("nats connection lost")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Conn{nc: nc}, nil
}

// Subscribe subscribes to a subject, wildcards included. Each gateway
// instance needs every event to fan out to its own sockets, so the
// subscription is deliberately not queue-grouped.
func (c *Conn) Subscribe(ctx context.Context, subject string) (<-chan []byte, error) {
	ch := make(chan []byte, subscribeBuffer)

	sub, err := c.nc.Subscribe(subject, func(m *nats.Msg) {
		select {
		case ch <- m.Data:
		default:
			logging.Warn().Str("subject", m.Subject).Msg("subscription buffer full, dropping message")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			logging.Debug().Err(err).Str("subject", subject).Msg("unsubscribe failed")
		}
	}()

	return ch, nil
}

// IsConnected reports whether the broker link is currently up. Feeds
// the readiness endpoint so load balancers drain instances that would
// miss producer events.
func (c *Conn) IsConnected() bool {
	return c.nc.IsConnected()
}

// Close drains the connection, letting in-flight callbacks finish.
func (c *Conn) Close() error {
	return c.nc.Drain()
}
