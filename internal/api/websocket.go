// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/perkstreet/pulsehub/internal/auth"
	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/metrics"
	"github.com/perkstreet/pulsehub/internal/realtime"
)

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates connection origins. Browser clients always
// send an Origin header; non-browser producers (scripts, mobile apps) omit
// it and are admitted, since the bearer token is the actual gate.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.WebSocket.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// WebSocket authenticates and upgrades a client connection.
//
// Authentication runs before the upgrade: a rejected handshake never
// creates a socket, allocates a client or touches presence state. The two
// rejection messages are a wire contract that consuming clients
// pattern-match on.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.authenticator.Authenticate(r)
	if err != nil {
		h.rejectHandshake(w, r, err)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Error().Err(err).Msg("websocket upgrade error")
		metrics.WSErrors.WithLabelValues("upgrade_failed").Inc()
		return
	}

	client := realtime.NewClient(h.hub, conn, *identity)
	h.hub.Register <- client
	client.Start()

	metrics.RecordHandshake("accepted")
	h.securityLog.LogHandshakeAccepted(
		identity.UserID,
		strconv.FormatUint(client.ID(), 10),
		r.RemoteAddr,
		r.UserAgent(),
	)
}

// rejectHandshake answers a failed handshake with 401 and the exact
// contract message, and records the attempt.
func (h *Handler) rejectHandshake(w http.ResponseWriter, r *http.Request, err error) {
	result := "invalid_token"
	code := "AUTH_TOKEN_INVALID"
	if errors.Is(err, auth.ErrTokenRequired) {
		result = "missing_token"
		code = "AUTH_TOKEN_REQUIRED"
	}

	metrics.RecordHandshake(result)
	h.securityLog.LogHandshakeRejected(r.RemoteAddr, r.UserAgent(), err.Error())

	// err.Error() is one of the two contract strings.
	respondError(w, http.StatusUnauthorized, code, err.Error(), nil)
}
