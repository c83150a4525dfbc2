// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package services contains suture.Service adapters for the gateway's
// long-running components: the realtime hub, the HTTP server and the
// NATS event bridge. Each adapter depends on a narrow interface rather
// than the concrete component so tests can substitute fakes.
package services
