// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Outbound event types emitted by the server.
const (
	EventConnected       = "connected"
	EventJoinedRoom      = "joined_room"
	EventLeftRoom        = "left_room"
	EventLotteryUpdate   = "lottery_update"
	EventPromotionUpdate = "promotion_update"
	EventNotification    = "notification"
	EventSystemMessage   = "system_message"
	EventPong            = "pong"
)

// Inbound event types accepted from clients. Anything outside this set is
// dropped without affecting the connection.
const (
	EventPing          = "ping"
	EventJoinLottery   = "join_lottery"
	EventLeaveLottery  = "leave_lottery"
	EventJoinLocation  = "join_location"
	EventLeaveLocation = "leave_location"
	EventJoinMerchant  = "join_merchant"
	EventLeaveMerchant = "leave_merchant"
)

// Envelope is the wire shape of every outbound message. The timestamp is
// set at emission time, not at business-event creation time, so the same
// underlying event re-emitted twice carries two different timestamps.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func newEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// MarshalEnvelope converts an envelope to JSON.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// RoomAck is the payload of joined_room and left_room acknowledgements.
type RoomAck struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// ConnectedPayload is sent once to a connection when its handshake completes.
type ConnectedPayload struct {
	Message   string    `json:"message"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// PongPayload answers a client-initiated ping with the server clock.
type PongPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// GeoPoint is a location target. Radius is in meters; zero means
// DefaultLocationRadius.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    int     `json:"radius,omitempty"`
}

// Room returns the canonical location room name for the point.
func (g GeoPoint) Room() string {
	return LocationRoom(g.Latitude, g.Longitude, g.Radius)
}

// LotteryEvent is the payload of a lottery_update envelope.
type LotteryEvent struct {
	LotteryID string      `json:"lotteryId"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
}

// Promotion is the payload of a promotion_update envelope. Location doubles
// as an optional second broadcast target.
type Promotion struct {
	MerchantID  string      `json:"merchantId"`
	Type        string      `json:"type,omitempty"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Location    *GeoPoint   `json:"location,omitempty"`
	Data        interface{} `json:"data,omitempty"`
}

// Notification is the payload of a notification envelope. The target fields
// steer routing and are never serialized to clients.
type Notification struct {
	Type    string      `json:"type,omitempty"`
	Title   string      `json:"title,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`

	TargetUserIDs  []string  `json:"-"`
	TargetLocation *GeoPoint `json:"-"`
}

// SystemMessage is the payload of a system_message envelope. Type is the
// severity: info, warning or error.
type SystemMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// inboundMessage is the outer shape of every client-sent frame. The payload
// stays raw until the type tag selects a concrete shape to decode into.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type lotteryRoomPayload struct {
	LotteryID string `json:"lotteryId"`
}

type merchantRoomPayload struct {
	MerchantID string `json:"merchantId"`
}

// locationRoomPayload uses pointers so that absent and zero coordinates are
// distinguishable. A frame without both coordinates is malformed.
type locationRoomPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    *int     `json:"radius"`
}

var (
	errMissingLotteryID  = errors.New("lotteryId is required")
	errMissingMerchantID = errors.New("merchantId is required")
	errMissingCoordinate = errors.New("latitude and longitude are required")
)

// lotteryRoomFromPayload resolves a join_lottery/leave_lottery payload to a
// room name.
func lotteryRoomFromPayload(raw json.RawMessage) (string, error) {
	var p lotteryRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("decoding lottery payload: %w", err)
	}
	if p.LotteryID == "" {
		return "", errMissingLotteryID
	}
	return LotteryRoom(p.LotteryID), nil
}

// merchantRoomFromPayload resolves a join_merchant/leave_merchant payload to
// a room name.
func merchantRoomFromPayload(raw json.RawMessage) (string, error) {
	var p merchantRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("decoding merchant payload: %w", err)
	}
	if p.MerchantID == "" {
		return "", errMissingMerchantID
	}
	return MerchantRoom(p.MerchantID), nil
}

// locationRoomFromPayload resolves a join_location/leave_location payload to
// a room name. An omitted radius defaults to DefaultLocationRadius.
func locationRoomFromPayload(raw json.RawMessage) (string, error) {
	var p locationRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("decoding location payload: %w", err)
	}
	if p.Latitude == nil || p.Longitude == nil {
		return "", errMissingCoordinate
	}
	if *p.Latitude < -90 || *p.Latitude > 90 {
		return "", fmt.Errorf("latitude %v out of range", *p.Latitude)
	}
	if *p.Longitude < -180 || *p.Longitude > 180 {
		return "", fmt.Errorf("longitude %v out of range", *p.Longitude)
	}
	radius := DefaultLocationRadius
	if p.Radius != nil {
		if *p.Radius <= 0 {
			return "", fmt.Errorf("radius %d must be positive", *p.Radius)
		}
		radius = *p.Radius
	}
	return LocationRoom(*p.Latitude, *p.Longitude, radius), nil
}
