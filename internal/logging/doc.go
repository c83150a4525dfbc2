// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package logging provides centralized zerolog-based structured logging for PulseHub.
//
// The gateway handles thousands of concurrent WebSocket connections, so the
// logging layer is built on zerolog for zero-allocation structured output.
// JSON format is used in production for machine parsing; console format is
// available for local development.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Context-aware logging with correlation ID propagation
//   - slog adapter for Suture v4 supervision tree integration
//   - Security-focused audit logging with sensitive data filtering
//
// # Quick Start
//
//	import "github.com/perkstreet/pulsehub/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("user", "alice").Msg("Connection accepted")
//	logging.Error().Err(err).Int("code", 500).Msg("Request failed")
//
//	// Context-aware logging
//	logging.Ctx(ctx).Info().Str("room", room).Msg("Joined room")
//
// # Audit Logging
//
// Handshake authentication outcomes are logged through SecurityLogger,
// which masks tokens and user identifiers before they reach the log stream:
//
//	sec := logging.NewSecurityLogger()
//	sec.LogHandshakeRejected(ip, userAgent, "Invalid authentication token")
package logging
