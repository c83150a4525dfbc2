// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package middleware provides HTTP middleware for the producer REST API.
//
// The middlewares here compose with chi's router and the go-chi
// ecosystem middlewares (cors, httprate) used in internal/api:
//
//   - RequestID: request/correlation ID propagation into logs
//   - PrometheusMetrics: per-endpoint counters, latency histograms, in-flight gauge
//   - Compression: pooled gzip for REST responses (skips WebSocket upgrades)
//
// All middlewares operate on http.HandlerFunc so they can wrap individual
// handlers as well as whole route groups.
package middleware
