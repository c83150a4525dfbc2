// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import (
	"testing"
)

func TestRouter_BroadcastLotteryEvent(t *testing.T) {
	hub := NewHub(nil)
	router := NewRouter(hub)

	subscriber := admitTestClient(t, hub, "uA")
	bystander := admitTestClient(t, hub, "uB")

	subscriber.handleInbound([]byte(`{"type":"join_lottery","payload":{"lotteryId":"L1"}}`))
	env := mustReceive(t, subscriber, EventJoinedRoom)
	if ack := env.Payload.(RoomAck); ack.Room != "lottery:L1" {
		t.Fatalf("joined room = %q, want lottery:L1", ack.Room)
	}

	delivered := router.BroadcastLotteryEvent(LotteryEvent{
		LotteryID: "L1",
		Type:      "draw_started",
		Data:      map[string]interface{}{},
	})
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}

	env = mustReceive(t, subscriber, EventLotteryUpdate)
	ev := env.Payload.(LotteryEvent)
	if ev.LotteryID != "L1" || ev.Type != "draw_started" {
		t.Errorf("lottery event = %+v", ev)
	}
	// Exactly one copy at the subscriber, zero at the bystander.
	assertNoEnvelope(t, subscriber)
	assertNoEnvelope(t, bystander)

	// Empty lottery ID and absent room both deliver to nobody.
	if got := router.BroadcastLotteryEvent(LotteryEvent{}); got != 0 {
		t.Errorf("delivered for empty event = %d, want 0", got)
	}
	if got := router.BroadcastLotteryEvent(LotteryEvent{LotteryID: "L404"}); got != 0 {
		t.Errorf("delivered for unknown lottery = %d, want 0", got)
	}
}

func TestRouter_BroadcastPromotion(t *testing.T) {
	hub := NewHub(nil)
	router := NewRouter(hub)

	merchantFan := admitTestClient(t, hub, "uM")
	localShopper := admitTestClient(t, hub, "uL")
	uninterested := admitTestClient(t, hub, "uX")

	merchantFan.handleInbound([]byte(`{"type":"join_merchant","payload":{"merchantId":"m1"}}`))
	mustReceive(t, merchantFan, EventJoinedRoom)
	localShopper.handleInbound([]byte(`{"type":"join_location","payload":{"latitude":22.3193,"longitude":114.1694}}`))
	mustReceive(t, localShopper, EventJoinedRoom)

	delivered := router.BroadcastPromotion(Promotion{
		MerchantID: "m1",
		Title:      "20% off",
		Location:   &GeoPoint{Latitude: 22.3193, Longitude: 114.1694},
	})
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}

	// A client in only one of the two rooms receives exactly one copy.
	mustReceive(t, merchantFan, EventPromotionUpdate)
	assertNoEnvelope(t, merchantFan)
	mustReceive(t, localShopper, EventPromotionUpdate)
	assertNoEnvelope(t, localShopper)

	// Promotions are never global.
	assertNoEnvelope(t, uninterested)
}

func TestRouter_BroadcastPromotion_MerchantOnly(t *testing.T) {
	hub := NewHub(nil)
	router := NewRouter(hub)

	fan := admitTestClient(t, hub, "uM")
	fan.handleInbound([]byte(`{"type":"join_merchant","payload":{"merchantId":"m1"}}`))
	mustReceive(t, fan, EventJoinedRoom)

	if got := router.BroadcastPromotion(Promotion{MerchantID: "m1", Title: "flash sale"}); got != 1 {
		t.Errorf("delivered = %d, want 1", got)
	}
	mustReceive(t, fan, EventPromotionUpdate)

	// No targets at all is a no-op, not a global broadcast.
	if got := router.BroadcastPromotion(Promotion{Title: "orphan"}); got != 0 {
		t.Errorf("delivered = %d, want 0", got)
	}
	assertNoEnvelope(t, fan)
}

func TestRouter_BroadcastNotification_Precedence(t *testing.T) {
	t.Run("target identities win over location and global", func(t *testing.T) {
		hub := NewHub(nil)
		router := NewRouter(hub)

		target := admitTestClient(t, hub, "u1")
		roomMate := admitTestClient(t, hub, "u2")

		// Both clients share a location room; identity targeting must still
		// exclude the room mate.
		for _, c := range []*Client{target, roomMate} {
			c.handleInbound([]byte(`{"type":"join_location","payload":{"latitude":22.3193,"longitude":114.1694}}`))
			mustReceive(t, c, EventJoinedRoom)
		}

		delivered := router.BroadcastNotification(Notification{
			Title:          "for u1 only",
			TargetUserIDs:  []string{"u1"},
			TargetLocation: &GeoPoint{Latitude: 22.3193, Longitude: 114.1694},
		})
		if delivered != 1 {
			t.Errorf("delivered = %d, want 1", delivered)
		}
		mustReceive(t, target, EventNotification)
		assertNoEnvelope(t, target)
		assertNoEnvelope(t, roomMate)
	})

	t.Run("duplicate identities are not deduplicated", func(t *testing.T) {
		hub := NewHub(nil)
		router := NewRouter(hub)
		c := admitTestClient(t, hub, "u1")

		delivered := router.BroadcastNotification(Notification{
			Title:         "twice",
			TargetUserIDs: []string{"u1", "u1"},
		})
		if delivered != 2 {
			t.Errorf("delivered = %d, want 2", delivered)
		}
		mustReceive(t, c, EventNotification)
		mustReceive(t, c, EventNotification)
	})

	t.Run("location target without identities", func(t *testing.T) {
		hub := NewHub(nil)
		router := NewRouter(hub)

		local := admitTestClient(t, hub, "u1")
		remote := admitTestClient(t, hub, "u2")
		local.handleInbound([]byte(`{"type":"join_location","payload":{"latitude":22.3193,"longitude":114.1694}}`))
		mustReceive(t, local, EventJoinedRoom)

		delivered := router.BroadcastNotification(Notification{
			Title:          "nearby",
			TargetLocation: &GeoPoint{Latitude: 22.3193, Longitude: 114.1694},
		})
		if delivered != 1 {
			t.Errorf("delivered = %d, want 1", delivered)
		}
		mustReceive(t, local, EventNotification)
		assertNoEnvelope(t, remote)
	})

	t.Run("no targets means global", func(t *testing.T) {
		hub := NewHub(nil)
		router := NewRouter(hub)

		a := admitTestClient(t, hub, "u1")
		b := admitTestClient(t, hub, "u2")

		delivered := router.BroadcastNotification(Notification{Title: "everyone"})
		if delivered != 2 {
			t.Errorf("delivered = %d, want 2", delivered)
		}
		mustReceive(t, a, EventNotification)
		mustReceive(t, b, EventNotification)
	})

	t.Run("absent identities are a no-op", func(t *testing.T) {
		hub := NewHub(nil)
		router := NewRouter(hub)

		if got := router.BroadcastNotification(Notification{TargetUserIDs: []string{"ghost"}}); got != 0 {
			t.Errorf("delivered = %d, want 0", got)
		}
	})
}

func TestRouter_BroadcastSystemMessage(t *testing.T) {
	hub := NewHub(nil)
	router := NewRouter(hub)

	a := admitTestClient(t, hub, "u1")
	b := admitTestClient(t, hub, "u2")

	delivered := router.BroadcastSystemMessage("warning", "maintenance in 5 minutes")
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}

	for _, c := range []*Client{a, b} {
		env := mustReceive(t, c, EventSystemMessage)
		msg := env.Payload.(SystemMessage)
		if msg.Type != "warning" || msg.Message != "maintenance in 5 minutes" {
			t.Errorf("system message = %+v", msg)
		}
	}

	// Global broadcast with zero clients is a no-op.
	empty := NewRouter(NewHub(nil))
	if got := empty.BroadcastSystemMessage("info", "anyone there"); got != 0 {
		t.Errorf("delivered = %d, want 0", got)
	}
}

func TestRouter_SendToUser(t *testing.T) {
	hub := NewHub(nil)
	router := NewRouter(hub)

	phone := admitTestClient(t, hub, "u1")
	laptop := admitTestClient(t, hub, "u1")
	other := admitTestClient(t, hub, "u2")

	delivered := router.SendToUser("u1", EventNotification, Notification{Title: "direct"})
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}
	mustReceive(t, phone, EventNotification)
	mustReceive(t, laptop, EventNotification)
	assertNoEnvelope(t, other)

	if got := router.SendToUser("", EventNotification, nil); got != 0 {
		t.Errorf("delivered for empty user = %d, want 0", got)
	}
	if got := router.SendToUser("nobody", EventNotification, nil); got != 0 {
		t.Errorf("delivered for absent user = %d, want 0", got)
	}
}

func TestRouter_BroadcastToRoom(t *testing.T) {
	hub := NewHub(nil)
	router := NewRouter(hub)

	c := admitTestClient(t, hub, "u1")
	hub.joinRoom(c, LotteryRoom("L9"))
	mustReceive(t, c, EventJoinedRoom)

	if got := router.BroadcastToRoom(LotteryRoom("L9"), EventLotteryUpdate, LotteryEvent{LotteryID: "L9"}); got != 1 {
		t.Errorf("delivered = %d, want 1", got)
	}
	mustReceive(t, c, EventLotteryUpdate)

	if got := router.BroadcastToRoom("", EventLotteryUpdate, nil); got != 0 {
		t.Errorf("delivered for empty room name = %d, want 0", got)
	}
}

func TestRouter_Queries(t *testing.T) {
	hub := NewHub(nil)
	router := NewRouter(hub)

	phone := admitTestClient(t, hub, "u1")
	admitTestClient(t, hub, "u1")
	admitTestClient(t, hub, "u2")

	if got := router.ConnectedCount(); got != 3 {
		t.Errorf("ConnectedCount = %d, want 3 (connections, not identities)", got)
	}
	if got := router.IdentityCount(); got != 2 {
		t.Errorf("IdentityCount = %d, want 2", got)
	}
	if !router.IsUserConnected("u1") {
		t.Error("u1 should be connected")
	}
	if router.IsUserConnected("u3") {
		t.Error("u3 should not be connected")
	}
	if got := router.UserConnectionCount("u1"); got != 2 {
		t.Errorf("UserConnectionCount(u1) = %d, want 2", got)
	}

	hub.joinRoom(phone, MerchantRoom("m1"))
	mustReceive(t, phone, EventJoinedRoom)
	if got := router.UsersInRoom(MerchantRoom("m1")); len(got) != 1 || got[0] != "u1" {
		t.Errorf("UsersInRoom = %v, want [u1]", got)
	}
	if got := router.UsersInRoom("merchant:none"); len(got) != 0 {
		t.Errorf("UsersInRoom(unknown) = %v, want empty", got)
	}
}
