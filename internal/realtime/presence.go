// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import "sort"

// presenceTracker maps an authenticated identity to its live connections.
// One identity with three devices holds three entries in its set.
//
// Not safe for concurrent use on its own: every method must be called with
// the hub mutex held.
type presenceTracker struct {
	identities  map[string]map[*Client]struct{}
	connections int
}

func newPresenceTracker() *presenceTracker {
	return &presenceTracker{
		identities: make(map[string]map[*Client]struct{}),
	}
}

func (p *presenceTracker) add(c *Client) {
	set, ok := p.identities[c.identity.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		p.identities[c.identity.UserID] = set
	}
	if _, exists := set[c]; exists {
		return
	}
	set[c] = struct{}{}
	p.connections++
}

// remove drops the connection from its identity's set. When the set becomes
// empty the identity entry is deleted entirely so the map does not grow
// unbounded with connection churn.
func (p *presenceTracker) remove(c *Client) {
	set, ok := p.identities[c.identity.UserID]
	if !ok {
		return
	}
	if _, exists := set[c]; !exists {
		return
	}
	delete(set, c)
	p.connections--
	if len(set) == 0 {
		delete(p.identities, c.identity.UserID)
	}
}

func (p *presenceTracker) isConnected(userID string) bool {
	return len(p.identities[userID]) > 0
}

// connectionCount is the total live connection count across all identities,
// not the identity count.
func (p *presenceTracker) connectionCount() int {
	return p.connections
}

func (p *presenceTracker) identityCount() int {
	return len(p.identities)
}

func (p *presenceTracker) connectionCountFor(userID string) int {
	return len(p.identities[userID])
}

// connectionsFor returns the identity's connections sorted by client ID so
// multi-device fan-out is deterministic.
func (p *presenceTracker) connectionsFor(userID string) []*Client {
	set := p.identities[userID]
	if len(set) == 0 {
		return nil
	}
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}
