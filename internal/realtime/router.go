// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import (
	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/metrics"
)

// Router is the single fan-out entry point for every producer: lottery
// engine, promotion engine, notification dispatcher, direct messaging and
// ops announcements. It is an explicitly constructed instance handed to the
// components that broadcast, never ambient global state.
//
// No Router operation fails for "nothing to deliver to": unreachable
// targets are successful no-ops so producers can fire-and-forget without
// checking room existence first. Every method returns the number of
// connections the envelope was delivered to.
type Router struct {
	hub *Hub
}

// NewRouter creates a Router bound to a hub.
func NewRouter(hub *Hub) *Router {
	return &Router{hub: hub}
}

// BroadcastToRoom emits an envelope to every member of a room. Empty and
// unknown rooms deliver to nobody.
func (r *Router) BroadcastToRoom(room, eventType string, payload interface{}) int {
	if room == "" {
		return 0
	}
	return r.hub.broadcastToRoom(room, newEnvelope(eventType, payload))
}

// SendToUser emits an envelope to every connection of one identity. An
// absent identity delivers to nobody.
func (r *Router) SendToUser(userID, eventType string, payload interface{}) int {
	if userID == "" {
		return 0
	}
	delivered := r.hub.sendToUser(userID, newEnvelope(eventType, payload))
	metrics.RecordBroadcast("direct", "users", delivered)
	logging.Debug().
		Str("user_id", userID).
		Str("event_type", eventType).
		Int("delivered", delivered).
		Msg("direct message routed")
	return delivered
}

// BroadcastLotteryEvent emits a lottery_update to the lottery's room only.
// It never leaks to global or location rooms.
func (r *Router) BroadcastLotteryEvent(ev LotteryEvent) int {
	if ev.LotteryID == "" {
		return 0
	}
	delivered := r.hub.broadcastToRoom(LotteryRoom(ev.LotteryID), newEnvelope(EventLotteryUpdate, ev))
	metrics.RecordBroadcast("lottery", "room", delivered)
	logging.Debug().
		Str("lottery_id", ev.LotteryID).
		Str("update_type", ev.Type).
		Int("delivered", delivered).
		Msg("lottery event routed")
	return delivered
}

// BroadcastPromotion emits a promotion_update to the merchant's room, and
// additionally to a location room when the promotion carries one.
// Promotions are never globally broadcast.
func (r *Router) BroadcastPromotion(p Promotion) int {
	delivered := 0
	if p.MerchantID != "" {
		delivered += r.hub.broadcastToRoom(MerchantRoom(p.MerchantID), newEnvelope(EventPromotionUpdate, p))
	}
	if p.Location != nil {
		delivered += r.hub.broadcastToRoom(p.Location.Room(), newEnvelope(EventPromotionUpdate, p))
	}
	metrics.RecordBroadcast("promotion", "room", delivered)
	logging.Debug().
		Str("merchant_id", p.MerchantID).
		Bool("location_target", p.Location != nil).
		Int("delivered", delivered).
		Msg("promotion routed")
	return delivered
}

// BroadcastNotification routes a notification by precedence:
//  1. TargetUserIDs non-empty: send individually to each identity, no dedup
//     across duplicate IDs, no room broadcast.
//  2. TargetLocation set: broadcast to that single location room.
//  3. Neither: broadcast to every connected client.
//
// The global fallback means callers must be deliberate about omitting both
// targets.
func (r *Router) BroadcastNotification(n Notification) int {
	env := newEnvelope(EventNotification, n)

	switch {
	case len(n.TargetUserIDs) > 0:
		delivered := 0
		for _, userID := range n.TargetUserIDs {
			delivered += r.hub.sendToUser(userID, env)
		}
		metrics.RecordBroadcast("notification", "users", delivered)
		logging.Debug().
			Int("target_users", len(n.TargetUserIDs)).
			Int("delivered", delivered).
			Msg("notification routed to identities")
		return delivered

	case n.TargetLocation != nil:
		room := n.TargetLocation.Room()
		delivered := r.hub.broadcastToRoom(room, env)
		metrics.RecordBroadcast("notification", "room", delivered)
		logging.Debug().
			Str("room", room).
			Int("delivered", delivered).
			Msg("notification routed to location")
		return delivered

	default:
		delivered := r.hub.broadcastAll(env)
		metrics.RecordBroadcast("notification", "global", delivered)
		logging.Debug().
			Int("delivered", delivered).
			Msg("notification routed globally")
		return delivered
	}
}

// BroadcastSystemMessage emits a system_message to every connected client,
// independent of rooms. Severity is info, warning or error.
func (r *Router) BroadcastSystemMessage(severity, message string) int {
	delivered := r.hub.broadcastAll(newEnvelope(EventSystemMessage, SystemMessage{
		Type:    severity,
		Message: message,
	}))
	metrics.RecordBroadcast("system", "global", delivered)
	logging.Debug().
		Str("severity", severity).
		Int("delivered", delivered).
		Msg("system message routed")
	return delivered
}

// ConnectedCount returns the total live connection count across all
// identities. One identity with three devices counts as three.
func (r *Router) ConnectedCount() int {
	return r.hub.ConnectionCount()
}

// IdentityCount returns the number of distinct connected identities.
func (r *Router) IdentityCount() int {
	return r.hub.IdentityCount()
}

// IsUserConnected reports whether the identity has at least one live
// connection.
func (r *Router) IsUserConnected(userID string) bool {
	return r.hub.IsUserConnected(userID)
}

// UserConnectionCount returns how many connections one identity holds.
func (r *Router) UserConnectionCount(userID string) int {
	return r.hub.UserConnectionCount(userID)
}

// UsersInRoom returns the sorted identity set for a room. Empty and unknown
// rooms both return an empty set.
func (r *Router) UsersInRoom(room string) []string {
	return r.hub.RoomMembers(room)
}
