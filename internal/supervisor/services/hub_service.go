// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package services

import (
	"context"
)

// ContextHub matches *realtime.Hub's RunWithContext method without
// importing the realtime package.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService wraps the realtime hub as a supervised service. The hub's
// RunWithContext already follows the suture.Service pattern, so the
// wrapper only adds a stable name for supervision logs.
type HubService struct {
	hub  ContextHub
	name string
}

// NewHubService creates a hub service wrapper.
func NewHubService(hub ContextHub) *HubService {
	return &HubService{
		hub:  hub,
		name: "realtime-hub",
	}
}

// Serve implements suture.Service. It returns ctx.Err() on normal
// shutdown after the hub has closed every client.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in supervision logs.
func (s *HubService) String() string {
	return s.name
}
