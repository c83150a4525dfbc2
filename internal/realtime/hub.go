// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/perkstreet/pulsehub/internal/config"
	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Fallback transport timings used when the hub is built without a config.
const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 512 * 1024 // 512 KB
	defaultSendBuffer     = 256
)

// Hub owns the connection set, the room registry and the presence tracker.
// All three mutate under a single mutex because membership sets are touched
// from arbitrary inbound-message and broadcast call sites concurrently.
//
// Rooms have no lifecycle of their own: a room exists while it has at least
// one member and is reaped when membership drops to zero, so "room empty"
// and "room unknown" are the same state.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64
	sendBuffer     int

	mu       sync.RWMutex
	clients  map[*Client]bool
	rooms    map[string]map[*Client]bool
	presence *presenceTracker

	securityLog *logging.SecurityLogger
}

// NewHub creates a new Hub. A nil config selects the default transport
// timings.
func NewHub(cfg *config.WebSocketConfig) *Hub {
	h := &Hub{
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		writeWait:      defaultWriteWait,
		pongWait:       defaultPongWait,
		maxMessageSize: defaultMaxMessageSize,
		sendBuffer:     defaultSendBuffer,
		clients:        make(map[*Client]bool),
		rooms:          make(map[string]map[*Client]bool),
		presence:       newPresenceTracker(),
		securityLog:    logging.NewSecurityLogger(),
	}
	if cfg != nil {
		h.writeWait = cfg.WriteWait
		h.pongWait = cfg.PongWait
		h.maxMessageSize = cfg.MaxMessageSize
		h.sendBuffer = cfg.SendBuffer
	}
	h.pingPeriod = (h.pongWait * 9) / 10
	return h
}

// RunWithContext runs the hub's lifecycle loop until the context is
// canceled, then closes every connected client and returns ctx.Err(). This
// method is designed for use with suture supervision.
//
// DETERMINISM: Uses priority-based selection; when Go's select has multiple
// ready channels it picks randomly, so shutdown and lifecycle events are
// checked before blocking:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: Check for shutdown (non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle client lifecycle events (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.admit(client)

		case client := <-h.Unregister:
			h.remove(client)
		}
	}
}

// admit registers a connection, records its presence, auto-joins it to its
// personal room and greets it with a connected envelope. No state exists for
// a connection before admit runs, so a rejected handshake costs nothing.
func (h *Hub) admit(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.presence.add(c)
	h.addToRoomLocked(c, UserRoom(c.identity.UserID))
	connections := h.presence.connectionCount()
	identities := h.presence.identityCount()
	h.mu.Unlock()

	metrics.UpdatePresenceGauges(connections, identities)
	metrics.RecordRoomJoin("user")

	c.enqueue(newEnvelope(EventConnected, ConnectedPayload{
		Message:   "Connected successfully",
		UserID:    c.identity.UserID,
		Timestamp: time.Now().UTC(),
	}))

	logging.Info().
		Uint64("client_id", c.id).
		Str("user_id", c.identity.UserID).
		Int("total_connections", connections).
		Msg("websocket client connected")
}

// remove unregisters a connection, strips it from every room it joined and
// drops its presence entry. Safe to call for a client that was already
// evicted.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c]
	if known {
		h.removeLocked(c)
		h.closeSendLocked(c)
	}
	connections := h.presence.connectionCount()
	identities := h.presence.identityCount()
	h.mu.Unlock()

	if !known {
		return
	}

	metrics.UpdatePresenceGauges(connections, identities)
	h.securityLog.LogConnectionClosed(c.identity.UserID, strconv.FormatUint(c.id, 10), c.remoteAddr)
	logging.Info().
		Uint64("client_id", c.id).
		Str("user_id", c.identity.UserID).
		Int("total_connections", connections).
		Msg("websocket client disconnected")
}

// removeLocked strips the client from the connection set, its rooms and the
// presence tracker. Caller holds h.mu and guarantees the client is currently
// registered; the send channel is not closed here.
func (h *Hub) removeLocked(c *Client) {
	delete(h.clients, c)
	h.presence.remove(c)
	for room := range c.rooms {
		h.dropMembershipLocked(c, room)
		metrics.RecordRoomLeave(roomKind(room))
	}
	metrics.RoomsActive.Set(float64(len(h.rooms)))
}

// closeSendLocked closes the client's send channel exactly once. Caller holds
// h.mu for writing; the read pump may still be live and enqueueing acks or
// pongs, so the closed flag must flip under the same lock that enqueue takes.
func (h *Hub) closeSendLocked(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// addToRoomLocked adds the client to the room's member set, creating the
// room lazily. Returns false when the client was already a member.
func (h *Hub) addToRoomLocked(c *Client, room string) bool {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	if members[c] {
		return false
	}
	members[c] = true
	c.rooms[room] = struct{}{}
	metrics.RoomsActive.Set(float64(len(h.rooms)))
	return true
}

// dropMembershipLocked removes the client from a room's member set and reaps
// the room when it empties.
func (h *Hub) dropMembershipLocked(c *Client, room string) bool {
	members, ok := h.rooms[room]
	if !ok || !members[c] {
		return false
	}
	delete(members, c)
	delete(c.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	return true
}

// joinRoom adds the client to a room and acknowledges with a joined_room
// envelope. Joining a room the client is already in is a no-op on the member
// set but still acknowledged.
func (h *Hub) joinRoom(c *Client, room string) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	added := h.addToRoomLocked(c, room)
	h.mu.Unlock()

	if added {
		metrics.RecordRoomJoin(roomKind(room))
	}

	c.enqueue(newEnvelope(EventJoinedRoom, RoomAck{
		Room:    room,
		Message: "Joined " + room,
	}))

	logging.Debug().
		Str("room", room).
		Str("user_id", c.identity.UserID).
		Bool("already_member", !added).
		Msg("client joined room")
}

// leaveRoom removes the client from a room and acknowledges with a left_room
// envelope. Leaving a room the client is not in is still acknowledged.
func (h *Hub) leaveRoom(c *Client, room string) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	removed := h.dropMembershipLocked(c, room)
	if removed {
		metrics.RoomsActive.Set(float64(len(h.rooms)))
	}
	h.mu.Unlock()

	if removed {
		metrics.RecordRoomLeave(roomKind(room))
	}

	c.enqueue(newEnvelope(EventLeftRoom, RoomAck{
		Room:    room,
		Message: "Left " + room,
	}))

	logging.Debug().
		Str("room", room).
		Str("user_id", c.identity.UserID).
		Bool("was_member", removed).
		Msg("client left room")
}

// broadcastToRoom emits the envelope to every member of the room in client
// ID order and returns the delivery count. An empty or unknown room is a
// silent no-op.
func (h *Hub) broadcastToRoom(room string, env Envelope) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[room]
	if len(members) == 0 {
		return 0
	}
	clients := make([]*Client, 0, len(members))
	for c := range members {
		clients = append(clients, c)
	}
	return h.deliverLocked(sortClients(clients), env)
}

// broadcastAll emits the envelope to every connected client, rooms aside.
func (h *Hub) broadcastAll(env Envelope) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return 0
	}
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return h.deliverLocked(sortClients(clients), env)
}

// sendToUser emits the envelope to every connection of one identity. An
// absent identity is a silent no-op.
func (h *Hub) sendToUser(userID string, env Envelope) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deliverLocked(h.presence.connectionsFor(userID), env)
}

// deliverLocked offers the envelope to each client's send buffer. A client
// whose buffer is full cannot keep up with fan-out and is evicted so one
// slow consumer never blocks the rest. Caller holds h.mu.
func (h *Hub) deliverLocked(clients []*Client, env Envelope) int {
	delivered := 0
	var evicted []*Client

	for _, c := range clients {
		select {
		case c.send <- env:
			delivered++
		default:
			evicted = append(evicted, c)
		}
	}

	for _, c := range evicted {
		h.removeLocked(c)
		h.closeSendLocked(c)
		metrics.WSSlowClientEvictions.Inc()
		metrics.RecordDroppedMessage("slow_client")
		logging.Warn().
			Uint64("client_id", c.id).
			Str("user_id", c.identity.UserID).
			Str("event_type", env.Type).
			Msg("evicting slow websocket client")
	}
	if len(evicted) > 0 {
		metrics.UpdatePresenceGauges(h.presence.connectionCount(), h.presence.identityCount())
	}

	return delivered
}

// sortClients orders clients by their atomic-counter ID so every fan-out
// walks the same order.
func sortClients(clients []*Client) []*Client {
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ConnectionCount returns the total live connection count.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presence.connectionCount()
}

// IdentityCount returns the number of distinct connected identities.
func (h *Hub) IdentityCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presence.identityCount()
}

// IsUserConnected reports whether the identity has at least one live
// connection.
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presence.isConnected(userID)
}

// UserConnectionCount returns how many connections one identity holds.
func (h *Hub) UserConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presence.connectionCountFor(userID)
}

// RoomMembers returns the sorted, deduplicated identity set for a room.
// Empty room and unknown room both return an empty set.
func (h *Hub) RoomMembers(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[room]
	seen := make(map[string]struct{}, len(members))
	users := make([]string, 0, len(members))
	for c := range members {
		if _, dup := seen[c.identity.UserID]; dup {
			continue
		}
		seen[c.identity.UserID] = struct{}{}
		users = append(users, c.identity.UserID)
	}
	sort.Strings(users)
	return users
}

// RoomCount returns the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// logGracefulShutdown closes all connected clients and logs structured
// shutdown information. ctx.Err() is not logged as an error because
// cancellation is the expected shutdown path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.ClientCount()
	h.closeAllClients()
	reason := getShutdownReason(ctx)

	logging.Info().
		Str("component", "realtime-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("realtime hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every connected client in ID order. Called during
// shutdown to ensure clean termination.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sortClients(clients)

	for _, c := range clients {
		h.removeLocked(c)
		h.closeSendLocked(c)
	}
	metrics.UpdatePresenceGauges(h.presence.connectionCount(), h.presence.identityCount())
	logging.Info().Msg("closed all websocket clients during shutdown")
}
