// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import (
	"testing"
	"time"
)

func TestClient_IDsAreUnique(t *testing.T) {
	hub := NewHub(nil)
	a := createTestClient(hub, "u1")
	b := createTestClient(hub, "u1")

	if a.ID() == b.ID() {
		t.Errorf("client IDs collide: %d", a.ID())
	}
	if a.ID() >= b.ID() {
		t.Errorf("client IDs not monotonic: %d then %d", a.ID(), b.ID())
	}
	if a.UserID() != "u1" {
		t.Errorf("UserID = %q, want u1", a.UserID())
	}
}

func TestClient_PingYieldsPong(t *testing.T) {
	hub := NewHub(nil)
	c := admitTestClient(t, hub, "u1")

	c.handleInbound([]byte(`{"type":"ping","payload":{}}`))

	env := mustReceive(t, c, EventPong)
	payload, ok := env.Payload.(PongPayload)
	if !ok {
		t.Fatalf("pong payload type = %T", env.Payload)
	}
	if payload.Timestamp.IsZero() {
		t.Error("pong timestamp should be a valid instant")
	}
	if time.Since(payload.Timestamp) > time.Minute {
		t.Errorf("pong timestamp %v is stale", payload.Timestamp)
	}

	// Exactly one pong per ping.
	assertNoEnvelope(t, c)
}

func TestClient_JoinAndLeaveCommands(t *testing.T) {
	tests := []struct {
		name     string
		join     string
		leave    string
		wantRoom string
	}{
		{
			name:     "lottery",
			join:     `{"type":"join_lottery","payload":{"lotteryId":"L1"}}`,
			leave:    `{"type":"leave_lottery","payload":{"lotteryId":"L1"}}`,
			wantRoom: "lottery:L1",
		},
		{
			name:     "merchant",
			join:     `{"type":"join_merchant","payload":{"merchantId":"m1"}}`,
			leave:    `{"type":"leave_merchant","payload":{"merchantId":"m1"}}`,
			wantRoom: "merchant:m1",
		},
		{
			name:     "location with explicit radius",
			join:     `{"type":"join_location","payload":{"latitude":22.31930,"longitude":114.16940,"radius":500}}`,
			leave:    `{"type":"leave_location","payload":{"latitude":22.31930,"longitude":114.16940,"radius":500}}`,
			wantRoom: "location:22.319_114.169_500",
		},
		{
			name:     "location with default radius",
			join:     `{"type":"join_location","payload":{"latitude":22.31930,"longitude":114.16940}}`,
			leave:    `{"type":"leave_location","payload":{"latitude":22.31930,"longitude":114.16940}}`,
			wantRoom: "location:22.319_114.169_1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(nil)
			c := admitTestClient(t, hub, "u1")

			c.handleInbound([]byte(tt.join))
			env := mustReceive(t, c, EventJoinedRoom)
			ack := env.Payload.(RoomAck)
			if ack.Room != tt.wantRoom {
				t.Fatalf("joined room = %q, want %q", ack.Room, tt.wantRoom)
			}
			members := hub.RoomMembers(tt.wantRoom)
			if len(members) != 1 || members[0] != "u1" {
				t.Fatalf("members = %v, want [u1]", members)
			}

			c.handleInbound([]byte(tt.leave))
			env = mustReceive(t, c, EventLeftRoom)
			ack = env.Payload.(RoomAck)
			if ack.Room != tt.wantRoom {
				t.Fatalf("left room = %q, want %q", ack.Room, tt.wantRoom)
			}
			if got := hub.RoomMembers(tt.wantRoom); len(got) != 0 {
				t.Errorf("members after leave = %v, want empty", got)
			}
		})
	}
}

// Malformed frames are dropped without acknowledgement and without costing
// the client its registration.
func TestClient_MalformedFramesDroppedSilently(t *testing.T) {
	frames := []struct {
		name  string
		frame string
	}{
		{"not json", `this is not json`},
		{"missing payload", `{"type":"join_lottery"}`},
		{"empty lottery id", `{"type":"join_lottery","payload":{"lotteryId":""}}`},
		{"non-numeric latitude", `{"type":"join_location","payload":{"latitude":"north","longitude":114.1694}}`},
		{"latitude out of range", `{"type":"join_location","payload":{"latitude":200,"longitude":114.1694}}`},
		{"missing merchant id", `{"type":"join_merchant","payload":{}}`},
		{"unknown event type", `{"type":"join_galaxy","payload":{"galaxyId":"andromeda"}}`},
		{"empty frame", `{}`},
	}

	for _, tt := range frames {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(nil)
			c := admitTestClient(t, hub, "u1")

			c.handleInbound([]byte(tt.frame))

			assertNoEnvelope(t, c)
			if got := hub.ClientCount(); got != 1 {
				t.Errorf("ClientCount = %d, want 1 (connection must stay alive)", got)
			}
			// Only the personal room exists; the bad command created nothing.
			if got := hub.RoomCount(); got != 1 {
				t.Errorf("RoomCount = %d, want 1", got)
			}
		})
	}
}

func TestClient_EnqueueDropsWhenFull(t *testing.T) {
	hub := NewHub(nil)
	c := createTestClient(hub, "u1")

	for i := 0; i < hub.sendBuffer; i++ {
		c.enqueue(newEnvelope(EventPong, nil))
	}
	// Buffer is full; one more enqueue must not block.
	done := make(chan struct{})
	go func() {
		c.enqueue(newEnvelope(EventPong, nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full send buffer")
	}
}
