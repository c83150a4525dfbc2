// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package events bridges broker-published producer events to the websocket
// router. Backend services publish lottery, promotion, notification and
// system messages to NATS subjects; the bridge consumes them and fans out
// through the same Router the REST producer API uses.
package events
