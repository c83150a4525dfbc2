// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package api

import (
	"net/http"
	"time"

	"github.com/perkstreet/pulsehub/internal/auth"
	"github.com/perkstreet/pulsehub/internal/config"
	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/models"
	"github.com/perkstreet/pulsehub/internal/realtime"
)

// Handler holds the dependencies for all HTTP endpoints: the websocket hub
// for connection admission, the broadcast router for producer endpoints and
// presence queries, and the authenticator guarding the handshake.
type Handler struct {
	config        *config.Config
	hub           *realtime.Hub
	router        *realtime.Router
	authenticator *auth.Authenticator
	securityLog   *logging.SecurityLogger

	// bridgeReady reports whether the upstream event bridge is connected.
	// Nil when the bridge is disabled; readiness then ignores it.
	bridgeReady func() bool

	startTime time.Time
}

// NewHandler creates a Handler. bridgeReady may be nil when no event bridge
// is configured.
func NewHandler(cfg *config.Config, hub *realtime.Hub, router *realtime.Router, authenticator *auth.Authenticator, bridgeReady func() bool) *Handler {
	return &Handler{
		config:        cfg,
		hub:           hub,
		router:        router,
		authenticator: authenticator,
		securityLog:   logging.NewSecurityLogger(),
		bridgeReady:   bridgeReady,
		startTime:     time.Now(),
	}
}

// HealthLive reports process liveness. It answers as long as the HTTP
// server can serve requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status": "alive",
			"uptime": time.Since(h.startTime).String(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady reports readiness to accept connections. When the event
// bridge is enabled, a disconnected broker makes the gateway not ready so
// load balancers stop routing new clients to an instance that would miss
// producer events.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]interface{}{
		"hub": "ok",
	}
	ready := true

	if h.bridgeReady != nil {
		if h.bridgeReady() {
			checks["event_bridge"] = "ok"
		} else {
			checks["event_bridge"] = "disconnected"
			ready = false
		}
	}

	status := http.StatusOK
	statusText := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		statusText = "not_ready"
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":      statusText,
			"checks":      checks,
			"connections": h.router.ConnectedCount(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// PresenceCount returns gateway-wide connection and identity totals.
func (h *Handler) PresenceCount(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.PresenceCount{
			Connections: h.router.ConnectedCount(),
			Identities:  h.router.IdentityCount(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// PresenceUser reports whether one user has a live connection and how many.
func (h *Handler) PresenceUser(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "user id is required", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.UserPresence{
			UserID:      userID,
			Online:      h.router.IsUserConnected(userID),
			Connections: h.router.UserConnectionCount(userID),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// RoomMembers lists the distinct identities joined to a room. Unknown rooms
// return an empty member list, not an error.
func (h *Handler) RoomMembers(w http.ResponseWriter, r *http.Request) {
	room := pathParam(r, "room")
	if room == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "room name is required", nil)
		return
	}

	members := h.router.UsersInRoom(room)
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.RoomMembers{
			Room:    room,
			Members: members,
			Count:   len(members),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
