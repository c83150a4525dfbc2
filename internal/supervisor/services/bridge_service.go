// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package services

import (
	"context"
)

// BridgeRunner matches *events.Bridge's Run method without importing the
// events package.
type BridgeRunner interface {
	Run(ctx context.Context) error
}

// BridgeService wraps the upstream event bridge as a supervised service.
// A subscription failure surfaces as an error from Run, so suture
// restarts the bridge with backoff while the rest of the gateway keeps
// serving.
type BridgeService struct {
	bridge BridgeRunner
	name   string
}

// NewBridgeService creates a bridge service wrapper.
func NewBridgeService(bridge BridgeRunner) *BridgeService {
	return &BridgeService{
		bridge: bridge,
		name:   "event-bridge",
	}
}

// Serve implements suture.Service.
func (s *BridgeService) Serve(ctx context.Context) error {
	return s.bridge.Run(ctx)
}

// String implements fmt.Stringer; suture uses it in supervision logs.
func (s *BridgeService) String() string {
	return s.name
}
