// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package config

import (
	"time"
)

// Config holds all gateway configuration loaded from environment variables and config files.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Transport:
//     - Server: HTTP server configuration (port, host, timeouts)
//     - WebSocket: Connection pump timings, buffer sizes, origin policy
//
//  2. Upstream:
//     - NATS: Optional event bridge that feeds broadcasts from backend services
//
//  3. Security:
//     - Security: JWT verification, rate limiting, CORS origins
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	NATS      NATSConfig      `koanf:"nats"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8090)
//   - HTTP_TIMEOUT: Read/write timeout for plain HTTP handlers (default: 30s)
//   - SHUTDOWN_TIMEOUT: Grace period for in-flight requests during shutdown (default: 15s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// IsProduction reports whether the server runs in production mode.
// Production mode enforces stricter validation (JWT secret strength,
// explicit CORS origins).
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// WebSocketConfig holds connection pump timings and delivery buffer sizes.
//
// The ping period is derived from PongWait (90% of it) so a ping always
// goes out before the read deadline expires.
//
// Environment Variables:
//   - WS_WRITE_WAIT: Write deadline for a single frame (default: 10s)
//   - WS_PONG_WAIT: Read deadline refreshed by client pongs (default: 60s)
//   - WS_MAX_MESSAGE_SIZE: Max inbound frame size in bytes (default: 524288)
//   - WS_SEND_BUFFER: Per-connection outbound queue length (default: 256)
//   - WS_ALLOWED_ORIGINS: Comma-separated origin allowlist; empty allows all
type WebSocketConfig struct {
	WriteWait      time.Duration `koanf:"write_wait"`
	PongWait       time.Duration `koanf:"pong_wait"`
	MaxMessageSize int64         `koanf:"max_message_size"`
	SendBuffer     int           `koanf:"send_buffer"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
}

// PingPeriod returns the interval between server pings.
// Must be less than PongWait so the peer's read deadline is refreshed in time.
func (w *WebSocketConfig) PingPeriod() time.Duration {
	return (w.PongWait * 9) / 10
}

// NATSConfig holds settings for the optional upstream event bridge.
// When enabled, backend services publish lottery, promotion, notification
// and system events to NATS subjects and the gateway fans them out.
//
// Environment Variables:
//   - NATS_ENABLED: Enable the event bridge (default: false)
//   - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
//   - NATS_RECONNECT_WAIT: Delay between reconnect attempts (default: 2s)
//   - NATS_CLIENT_NAME: Connection name reported to the NATS server (default: pulsehub)
//
// Bridge subscriptions are deliberately not queue-grouped: every gateway
// instance must observe every event to fan it out to its own connections.
type NATSConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
	ClientName    string        `koanf:"client_name"`
}

// SecurityConfig holds authentication and abuse-protection settings.
//
// Environment Variables:
//   - JWT_SECRET: HMAC secret for token verification (required)
//   - CORS_ORIGINS: Comma-separated allowed origins for the REST API (default: *)
//   - RATE_LIMIT_REQUESTS: Requests per window per client (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - DISABLE_RATE_LIMIT: Disable rate limiting entirely (default: false)
//   - TRUSTED_PROXIES: Comma-separated CIDRs whose X-Forwarded-For is trusted
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
