// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import (
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/perkstreet/pulsehub/internal/auth"
	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/metrics"
)

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// IDs are the sort key that keeps broadcast fan-out order deterministic
// instead of following map iteration order.
var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection and the hub. A
// single identity may own several clients at once (one per device).
type Client struct {
	id         uint64
	hub        *Hub
	conn       *websocket.Conn
	send       chan Envelope
	identity   auth.Identity
	remoteAddr string

	// rooms is the set of rooms this client is a member of, guarded by the
	// hub mutex. Kept here so disconnect cleanup does not scan every room.
	rooms map[string]struct{}

	// closed marks the send channel as closed, guarded by the hub mutex.
	// enqueue checks it so a frame arriving after eviction becomes a
	// counted drop instead of a send on a closed channel.
	closed bool
}

// NewClient creates a new Client with a unique ID. The connection may be nil
// in tests that never start the pumps.
func NewClient(hub *Hub, conn *websocket.Conn, identity auth.Identity) *Client {
	c := &Client{
		id:       clientIDCounter.Add(1),
		hub:      hub,
		conn:     conn,
		send:     make(chan Envelope, hub.sendBuffer),
		identity: identity,
		rooms:    make(map[string]struct{}),
	}
	if conn != nil {
		c.remoteAddr = conn.RemoteAddr().String()
	}
	return c
}

// ID returns the client's unique identifier for deterministic ordering.
func (c *Client) ID() uint64 {
	return c.id
}

// UserID returns the authenticated identity this connection belongs to.
func (c *Client) UserID() string {
	return c.identity.UserID
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump pumps messages from the websocket connection into the inbound
// dispatcher. On any read error the client unregisters itself.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Str("user_id", c.identity.UserID).Msg("unexpected websocket close error")
			}
			break
		}
		c.handleInbound(data)
	}
}

// handleInbound dispatches one client frame. Malformed frames and unknown
// event types are dropped without disturbing the connection: a bad join must
// never cost the client its socket.
func (c *Client) handleInbound(data []byte) {
	metrics.WSMessagesReceived.Inc()

	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.dropFrame("malformed", "", err)
		return
	}

	switch msg.Type {
	case EventPing:
		c.enqueue(newEnvelope(EventPong, PongPayload{Timestamp: time.Now().UTC()}))

	case EventJoinLottery, EventLeaveLottery:
		room, err := lotteryRoomFromPayload(msg.Payload)
		if err != nil {
			c.dropFrame("malformed", msg.Type, err)
			return
		}
		if msg.Type == EventJoinLottery {
			c.hub.joinRoom(c, room)
		} else {
			c.hub.leaveRoom(c, room)
		}

	case EventJoinMerchant, EventLeaveMerchant:
		room, err := merchantRoomFromPayload(msg.Payload)
		if err != nil {
			c.dropFrame("malformed", msg.Type, err)
			return
		}
		if msg.Type == EventJoinMerchant {
			c.hub.joinRoom(c, room)
		} else {
			c.hub.leaveRoom(c, room)
		}

	case EventJoinLocation, EventLeaveLocation:
		room, err := locationRoomFromPayload(msg.Payload)
		if err != nil {
			c.dropFrame("malformed", msg.Type, err)
			return
		}
		if msg.Type == EventJoinLocation {
			c.hub.joinRoom(c, room)
		} else {
			c.hub.leaveRoom(c, room)
		}

	default:
		c.dropFrame("unknown_type", msg.Type, nil)
	}
}

func (c *Client) dropFrame(reason, eventType string, err error) {
	metrics.RecordDroppedMessage(reason)
	logging.Debug().
		Err(err).
		Str("event_type", eventType).
		Str("user_id", c.identity.UserID).
		Uint64("client_id", c.id).
		Msg("dropping client frame")
}

// enqueue offers an envelope to the client's send buffer without blocking.
// A full buffer drops the envelope; hub-side broadcasts handle eviction. The
// hub read lock pairs with closeSendLocked so an envelope can never race the
// channel close.
func (c *Client) enqueue(env Envelope) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()

	if c.closed {
		metrics.RecordDroppedMessage("closed_client")
		logging.Debug().
			Uint64("client_id", c.id).
			Str("user_id", c.identity.UserID).
			Str("event_type", env.Type).
			Msg("dropping envelope for closed client")
		return
	}

	select {
	case c.send <- env:
	default:
		metrics.RecordDroppedMessage("slow_client")
		logging.Warn().
			Uint64("client_id", c.id).
			Str("user_id", c.identity.UserID).
			Str("event_type", env.Type).
			Msg("send buffer full, dropping envelope")
	}
}

// writePump pumps envelopes from the send buffer to the websocket connection
// and keeps the transport alive with protocol-level pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case env, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			data, err := MarshalEnvelope(env)
			if err != nil {
				logging.Error().Err(err).Str("event_type", env.Type).Msg("failed to marshal envelope")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Error().Err(err).Msg("failed to write envelope")
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
