// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package supervisor provides Suture-based process supervision for the
// gateway.
//
// The tree has two layers under the root: the fanout layer (realtime hub
// and the optional NATS event bridge) and the API layer (HTTP server).
// Each layer restarts independently, so a crashing bridge never drops a
// websocket and a wedged HTTP listener never stalls fan-out.
//
// Supervision events are logged through sutureslog, bridged to the
// process-wide zerolog logger by logging.NewSlogHandler.
//
// Usage:
//
//	tree, err := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())
//	if err != nil {
//		return err
//	}
//	tree.AddFanoutService(services.NewHubService(hub))
//	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
//	return tree.Serve(ctx)
package supervisor
