// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package api provides the HTTP surface: the authenticated websocket
// endpoint, the producer broadcast API, presence queries, health checks
// and the Prometheus scrape endpoint. Routing uses chi.
package api
