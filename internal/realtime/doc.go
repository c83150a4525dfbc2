// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package realtime implements the websocket fan-out core: the hub that owns
// connections, the room registry, the presence tracker and the broadcast
// router.
//
// A connection is admitted only after authentication, registered with the
// presence tracker and auto-joined to its personal user:<id> room. Clients
// join and leave lottery, merchant and location rooms with tagged commands;
// producers hand events to the Router, which resolves target rooms or
// identities and emits timestamped envelopes to exactly those sockets.
//
// Room membership is in-memory and process-local. On restart all
// connections drop and clients re-join from scratch.
package realtime
