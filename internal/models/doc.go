// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package models defines the request and response shapes of the
// gateway's producer REST API.
//
// WebSocket wire types live in internal/realtime; this package only
// covers the HTTP surface that backend services use to inject
// broadcasts and inspect presence.
package models
