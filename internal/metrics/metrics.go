// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - WebSocket connections, rooms and presence
// - Broadcast fan-out volume per kind and audience
// - Producer API latency and throughput
// - Handshake authentication outcomes
// - NATS event bridge consumption

var (
	// WebSocket Connection Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSIdentities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_identities",
			Help: "Current number of distinct users with at least one connection",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages queued to clients",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received from clients",
		},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of messages dropped before delivery",
		},
		[]string{"reason"}, // "malformed", "unknown_type", "slow_client"
	)

	WSSlowClientEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_slow_client_evictions_total",
			Help: "Total number of connections evicted for a full send queue",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Room Registry Metrics
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Current number of rooms with at least one member",
		},
	)

	RoomJoins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_joins_total",
			Help: "Total number of room join operations",
		},
		[]string{"kind"}, // "user", "lottery", "merchant", "location"
	)

	RoomLeaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_leaves_total",
			Help: "Total number of room leave operations",
		},
		[]string{"kind"},
	)

	// Broadcast Metrics
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Total number of broadcast operations",
		},
		[]string{"kind", "audience"}, // kind: lottery/promotion/notification/system/direct; audience: room/users/global
	)

	BroadcastFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_fanout_size",
			Help:    "Number of connections each broadcast was queued to",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	// Handshake Authentication Metrics
	AuthHandshakes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_handshakes_total",
			Help: "Total number of WebSocket handshake authentication attempts",
		},
		[]string{"result"}, // "accepted", "missing_token", "invalid_token"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// NATS Event Bridge Metrics
	NATSMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
		[]string{"subject_class"}, // "lottery", "promotion", "notification", "system"
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of NATS messages that failed to parse",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordHandshake records a WebSocket handshake authentication outcome
func RecordHandshake(result string) {
	AuthHandshakes.WithLabelValues(result).Inc()
}

// RecordBroadcast records a broadcast operation and its fan-out size
func RecordBroadcast(kind, audience string, fanout int) {
	BroadcastsTotal.WithLabelValues(kind, audience).Inc()
	BroadcastFanout.Observe(float64(fanout))
}

// RecordRoomJoin records a join operation for a room kind
func RecordRoomJoin(kind string) {
	RoomJoins.WithLabelValues(kind).Inc()
}

// RecordRoomLeave records a leave operation for a room kind
func RecordRoomLeave(kind string) {
	RoomLeaves.WithLabelValues(kind).Inc()
}

// RecordDroppedMessage records a message dropped before delivery
func RecordDroppedMessage(reason string) {
	WSMessagesDropped.WithLabelValues(reason).Inc()
}

// UpdatePresenceGauges updates the connection and identity gauges
func UpdatePresenceGauges(connections, identities int) {
	WSConnections.Set(float64(connections))
	WSIdentities.Set(float64(identities))
}

// RecordNATSConsume records a message consumed from a subject class
func RecordNATSConsume(subjectClass string) {
	NATSMessagesConsumed.WithLabelValues(subjectClass).Inc()
}

// RecordNATSParseFailed records a NATS message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSProcessingDuration records the duration of message processing
func RecordNATSProcessingDuration(duration time.Duration) {
	NATSProcessingDuration.Observe(duration.Seconds())
}
