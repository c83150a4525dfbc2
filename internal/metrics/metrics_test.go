// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/presence/count", "200"))

	RecordAPIRequest("GET", "/api/v1/presence/count", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/presence/count", "200"))
	if after != before+1 {
		t.Errorf("expected counter to increment by 1, got %f -> %f", before, after)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("expected gauge %f after inc, got %f", base+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("expected gauge %f after dec, got %f", base, got)
	}
}

func TestRecordHandshake(t *testing.T) {
	before := testutil.ToFloat64(AuthHandshakes.WithLabelValues("invalid_token"))

	RecordHandshake("invalid_token")

	after := testutil.ToFloat64(AuthHandshakes.WithLabelValues("invalid_token"))
	if after != before+1 {
		t.Errorf("expected handshake counter to increment, got %f -> %f", before, after)
	}
}

func TestRecordBroadcast(t *testing.T) {
	before := testutil.ToFloat64(BroadcastsTotal.WithLabelValues("lottery", "room"))

	RecordBroadcast("lottery", "room", 42)

	after := testutil.ToFloat64(BroadcastsTotal.WithLabelValues("lottery", "room"))
	if after != before+1 {
		t.Errorf("expected broadcast counter to increment, got %f -> %f", before, after)
	}
}

func TestRoomJoinLeaveCounters(t *testing.T) {
	joinBefore := testutil.ToFloat64(RoomJoins.WithLabelValues("lottery"))
	leaveBefore := testutil.ToFloat64(RoomLeaves.WithLabelValues("lottery"))

	RecordRoomJoin("lottery")
	RecordRoomLeave("lottery")

	if got := testutil.ToFloat64(RoomJoins.WithLabelValues("lottery")); got != joinBefore+1 {
		t.Errorf("expected join counter to increment, got %f", got)
	}
	if got := testutil.ToFloat64(RoomLeaves.WithLabelValues("lottery")); got != leaveBefore+1 {
		t.Errorf("expected leave counter to increment, got %f", got)
	}
}

func TestUpdatePresenceGauges(t *testing.T) {
	UpdatePresenceGauges(12, 7)

	if got := testutil.ToFloat64(WSConnections); got != 12 {
		t.Errorf("expected 12 connections, got %f", got)
	}
	if got := testutil.ToFloat64(WSIdentities); got != 7 {
		t.Errorf("expected 7 identities, got %f", got)
	}
}

func TestRecordDroppedMessage(t *testing.T) {
	before := testutil.ToFloat64(WSMessagesDropped.WithLabelValues("malformed"))

	RecordDroppedMessage("malformed")

	after := testutil.ToFloat64(WSMessagesDropped.WithLabelValues("malformed"))
	if after != before+1 {
		t.Errorf("expected dropped counter to increment, got %f -> %f", before, after)
	}
}

func TestNATSHelpers(t *testing.T) {
	before := testutil.ToFloat64(NATSMessagesConsumed.WithLabelValues("lottery"))

	RecordNATSConsume("lottery")
	RecordNATSParseFailed()
	RecordNATSProcessingDuration(5 * time.Millisecond)

	after := testutil.ToFloat64(NATSMessagesConsumed.WithLabelValues("lottery"))
	if after != before+1 {
		t.Errorf("expected consume counter to increment, got %f -> %f", before, after)
	}
}
