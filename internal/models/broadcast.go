// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package models

// GeoTarget scopes a broadcast to a geographic cell. Coordinates are
// truncated to three decimals server-side, so nearby producers and
// subscribers land in the same cell without agreeing on full precision.
type GeoTarget struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	// Radius in meters. Zero means the default radius (1000).
	Radius int `json:"radius,omitempty" validate:"omitempty,gt=0"`
}

// BroadcastLotteryRequest fans a lottery event out to everyone watching
// that lottery.
type BroadcastLotteryRequest struct {
	LotteryID string                 `json:"lotteryId" validate:"required,identifier"`
	Type      string                 `json:"type" validate:"required,oneof=draw_started draw_completed winner_announced"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// BroadcastPromotionRequest fans a promotion out to a merchant's
// followers and, optionally, to a geographic cell. Promotions are never
// global: the merchant room is always the primary audience.
type BroadcastPromotionRequest struct {
	MerchantID  string                 `json:"merchantId" validate:"required,identifier"`
	Type        string                 `json:"type,omitempty" validate:"omitempty,max=64"`
	Title       string                 `json:"title,omitempty" validate:"omitempty,max=200"`
	Description string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *GeoTarget             `json:"location,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// BroadcastNotificationRequest delivers a notification. Exactly one
// audience applies, in precedence order: explicit user IDs, then a
// geographic cell, then every connection.
type BroadcastNotificationRequest struct {
	Type     string                 `json:"type,omitempty" validate:"omitempty,oneof=system merchant lottery nft"`
	Title    string                 `json:"title,omitempty" validate:"omitempty,max=200"`
	Message  string                 `json:"message" validate:"required,max=2000"`
	Data     map[string]interface{} `json:"data,omitempty"`
	UserIDs  []string               `json:"userIds,omitempty" validate:"omitempty,dive,identifier"`
	Location *GeoTarget             `json:"location,omitempty"`
}

// BroadcastSystemRequest delivers a system message to every connection.
type BroadcastSystemRequest struct {
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=info warning error"`
	Message string `json:"message" validate:"required,max=2000"`
}

// DirectMessageRequest delivers an arbitrary typed envelope to all
// connections of a single user.
type DirectMessageRequest struct {
	Type    string                 `json:"type" validate:"required,max=64"`
	Payload map[string]interface{} `json:"payload" validate:"required"`
}

// BroadcastResult reports how many connections a broadcast was queued to.
type BroadcastResult struct {
	Delivered int `json:"delivered"`
}

// PresenceCount reports gateway-wide connection totals. Connections
// counts sockets, Identities counts distinct users; a user on three
// devices adds three to the former and one to the latter.
type PresenceCount struct {
	Connections int `json:"connections"`
	Identities  int `json:"identities"`
}

// UserPresence reports whether a user has at least one live connection.
type UserPresence struct {
	UserID      string `json:"userId"`
	Online      bool   `json:"online"`
	Connections int    `json:"connections"`
}

// RoomMembers lists the distinct identities currently joined to a room.
type RoomMembers struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
	Count   int      `json:"count"`
}
