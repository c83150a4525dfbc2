// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package api

import (
	"net/http"
	"time"

	"github.com/perkstreet/pulsehub/internal/models"
	"github.com/perkstreet/pulsehub/internal/realtime"
)

// Producer endpoints. Every endpoint answers 200 with a delivery count even
// when nobody is listening: unreachable targets are successful no-ops, so a
// lottery draw never fails because its subscribers are offline.

// BroadcastLottery fans a lottery event out to the lottery's room.
func (h *Handler) BroadcastLottery(w http.ResponseWriter, r *http.Request) {
	var req models.BroadcastLotteryRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	delivered := h.router.BroadcastLotteryEvent(realtime.LotteryEvent{
		LotteryID: req.LotteryID,
		Type:      req.Type,
		Data:      req.Data,
	})
	respondDelivered(w, delivered)
}

// BroadcastPromotion fans a promotion out to the merchant room and, when a
// location is supplied, to that location room.
func (h *Handler) BroadcastPromotion(w http.ResponseWriter, r *http.Request) {
	var req models.BroadcastPromotionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	delivered := h.router.BroadcastPromotion(realtime.Promotion{
		MerchantID:  req.MerchantID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Location:    geoPoint(req.Location),
		Data:        req.Data,
	})
	respondDelivered(w, delivered)
}

// BroadcastNotification routes a notification by audience precedence:
// explicit user IDs, then a location cell, then every connection.
func (h *Handler) BroadcastNotification(w http.ResponseWriter, r *http.Request) {
	var req models.BroadcastNotificationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	delivered := h.router.BroadcastNotification(realtime.Notification{
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message,
		Data:           req.Data,
		TargetUserIDs:  req.UserIDs,
		TargetLocation: geoPoint(req.Location),
	})
	respondDelivered(w, delivered)
}

// BroadcastSystem delivers an ops announcement to every connection.
func (h *Handler) BroadcastSystem(w http.ResponseWriter, r *http.Request) {
	var req models.BroadcastSystemRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	severity := req.Type
	if severity == "" {
		severity = "info"
	}
	delivered := h.router.BroadcastSystemMessage(severity, req.Message)
	respondDelivered(w, delivered)
}

// SendToUser delivers a typed envelope to all connections of one user.
func (h *Handler) SendToUser(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "user id is required", nil)
		return
	}

	var req models.DirectMessageRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	delivered := h.router.SendToUser(userID, req.Type, req.Payload)
	respondDelivered(w, delivered)
}

// geoPoint converts an optional API geo target to the router's type.
func geoPoint(g *models.GeoTarget) *realtime.GeoPoint {
	if g == nil {
		return nil
	}
	return &realtime.GeoPoint{
		Latitude:  g.Latitude,
		Longitude: g.Longitude,
		Radius:    g.Radius,
	}
}

func respondDelivered(w http.ResponseWriter, delivered int) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     models.BroadcastResult{Delivered: delivered},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}
