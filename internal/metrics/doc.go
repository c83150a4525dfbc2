// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package metrics defines the gateway's Prometheus metrics.
//
// All metrics are registered via promauto at package load and exposed
// on /metrics by the HTTP server. Helpers wrap the common recording
// patterns so call sites stay one line.
package metrics
