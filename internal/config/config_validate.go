// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// minJWTSecretLength is the minimum secret length accepted in production.
// 32 bytes gives HMAC-SHA256 its full security margin.
const minJWTSecretLength = 32

// Validate checks the configuration for errors and inconsistent settings.
// It is called automatically by Load() but exported so tests and tools can
// validate hand-built configurations.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateWebSocket(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	switch c.Server.Environment {
	case "development", "production", "test":
		return nil
	default:
		return fmt.Errorf("server.environment must be development, production or test, got %q", c.Server.Environment)
	}
}

func (c *Config) validateWebSocket() error {
	if c.WebSocket.WriteWait <= 0 {
		return fmt.Errorf("websocket.write_wait must be positive, got %v", c.WebSocket.WriteWait)
	}
	if c.WebSocket.PongWait <= c.WebSocket.WriteWait {
		return fmt.Errorf("websocket.pong_wait (%v) must exceed websocket.write_wait (%v)",
			c.WebSocket.PongWait, c.WebSocket.WriteWait)
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("websocket.max_message_size must be positive, got %d", c.WebSocket.MaxMessageSize)
	}
	if c.WebSocket.SendBuffer < 1 {
		return fmt.Errorf("websocket.send_buffer must be at least 1, got %d", c.WebSocket.SendBuffer)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required (set JWT_SECRET)")
	}
	if c.Server.IsProduction() && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("security.jwt_secret must be at least %d characters in production", minJWTSecretLength)
	}
	if c.Server.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("security.cors_origins must not contain '*' in production")
			}
		}
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.enabled is true")
	}
	u, err := url.Parse(c.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats.url is not a valid URL: %w", err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" && u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("nats.url must use the nats, tls, ws or wss scheme, got %q", u.Scheme)
	}
	if c.NATS.ReconnectWait <= 0 {
		return fmt.Errorf("nats.reconnect_wait must be positive, got %v", c.NATS.ReconnectWait)
	}
	if strings.TrimSpace(c.NATS.ClientName) == "" {
		return fmt.Errorf("nats.client_name must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
