// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package auth implements handshake authentication for the gateway.
//
// Every WebSocket connection must present a JWT minted by the platform's
// identity service; the gateway verifies it locally with a shared HMAC
// secret before the HTTP connection is upgraded. Rejections happen at
// the HTTP layer, so an unauthenticated client never holds a socket and
// never touches presence or room state.
//
// The two rejection messages, "Authentication token required" and
// "Invalid authentication token", are stable contract strings that
// client SDKs depend on.
package auth
