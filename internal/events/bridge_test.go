// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/realtime"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// fakeSource is an in-memory MessageSource with one channel per subject.
type fakeSource struct {
	mu       sync.Mutex
	channels map[string]chan []byte
	failFor  string
}

func newFakeSource() *fakeSource {
	return &fakeSource{channels: make(map[string]chan []byte)}
}

func (f *fakeSource) Subscribe(_ context.Context, subject string) (<-chan []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if subject == f.failFor {
		return nil, errors.New("subscription refused")
	}
	ch := make(chan []byte, 16)
	f.channels[subject] = ch
	return ch, nil
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) publish(t *testing.T, subject string, data []byte) {
	t.Helper()
	// The bridge subscribes from its own goroutine; wait for the
	// subscription to appear before publishing.
	for i := 0; i < 50; i++ {
		f.mu.Lock()
		ch, ok := f.channels[subject]
		f.mu.Unlock()
		if ok {
			ch <- data
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no subscription for %q", subject)
}

// recordingBroadcaster captures every routed event.
type recordingBroadcaster struct {
	mu            sync.Mutex
	lotteries     []realtime.LotteryEvent
	promotions    []realtime.Promotion
	notifications []realtime.Notification
	systems       []string
}

func (r *recordingBroadcaster) BroadcastLotteryEvent(ev realtime.LotteryEvent) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lotteries = append(r.lotteries, ev)
	return 1
}

func (r *recordingBroadcaster) BroadcastPromotion(p realtime.Promotion) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promotions = append(r.promotions, p)
	return 1
}

func (r *recordingBroadcaster) BroadcastNotification(n realtime.Notification) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return 1
}

func (r *recordingBroadcaster) BroadcastSystemMessage(severity, message string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systems = append(r.systems, severity+": "+message)
	return 1
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func startBridge(t *testing.T, source MessageSource, router Broadcaster) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- NewBridge(source, router).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Error("bridge did not stop after context cancellation")
		}
	})
	return cancel
}

func TestBridge_DispatchesLotteryEvents(t *testing.T) {
	source := newFakeSource()
	router := &recordingBroadcaster{}
	startBridge(t, source, router)

	source.publish(t, SubjectLottery, []byte(`{"lotteryId":"L1","type":"draw_started","data":{"round":3}}`))

	waitFor(t, func() bool {
		router.mu.Lock()
		defer router.mu.Unlock()
		return len(router.lotteries) == 1
	}, "lottery event not routed")

	router.mu.Lock()
	defer router.mu.Unlock()
	if router.lotteries[0].LotteryID != "L1" || router.lotteries[0].Type != "draw_started" {
		t.Errorf("routed event = %+v", router.lotteries[0])
	}
}

func TestBridge_DispatchesPromotions(t *testing.T) {
	source := newFakeSource()
	router := &recordingBroadcaster{}
	startBridge(t, source, router)

	source.publish(t, SubjectPromotion, []byte(`{"merchantId":"m1","title":"20% off","location":{"latitude":22.3193,"longitude":114.1694,"radius":500}}`))

	waitFor(t, func() bool {
		router.mu.Lock()
		defer router.mu.Unlock()
		return len(router.promotions) == 1
	}, "promotion not routed")

	router.mu.Lock()
	defer router.mu.Unlock()
	p := router.promotions[0]
	if p.MerchantID != "m1" {
		t.Errorf("merchantId = %q", p.MerchantID)
	}
	if p.Location == nil || p.Location.Radius != 500 {
		t.Errorf("location = %+v", p.Location)
	}
}

func TestBridge_DispatchesNotificationsWithTargets(t *testing.T) {
	source := newFakeSource()
	router := &recordingBroadcaster{}
	startBridge(t, source, router)

	source.publish(t, SubjectNotification, []byte(`{"type":"nft","title":"drop","message":"new coupon","targetUserIds":["u1","u2"]}`))

	waitFor(t, func() bool {
		router.mu.Lock()
		defer router.mu.Unlock()
		return len(router.notifications) == 1
	}, "notification not routed")

	router.mu.Lock()
	defer router.mu.Unlock()
	n := router.notifications[0]
	if len(n.TargetUserIDs) != 2 || n.TargetUserIDs[0] != "u1" {
		t.Errorf("targets = %v", n.TargetUserIDs)
	}
	if n.Title != "drop" {
		t.Errorf("title = %q", n.Title)
	}
}

func TestBridge_DispatchesSystemMessages(t *testing.T) {
	source := newFakeSource()
	router := &recordingBroadcaster{}
	startBridge(t, source, router)

	source.publish(t, SubjectSystem, []byte(`{"type":"warning","message":"maintenance"}`))
	// Missing severity defaults to info.
	source.publish(t, SubjectSystem, []byte(`{"message":"heads up"}`))

	waitFor(t, func() bool {
		router.mu.Lock()
		defer router.mu.Unlock()
		return len(router.systems) == 2
	}, "system messages not routed")

	router.mu.Lock()
	defer router.mu.Unlock()
	if router.systems[0] != "warning: maintenance" {
		t.Errorf("first system message = %q", router.systems[0])
	}
	if router.systems[1] != "info: heads up" {
		t.Errorf("second system message = %q", router.systems[1])
	}
}

func TestBridge_DropsUnparseableMessages(t *testing.T) {
	source := newFakeSource()
	router := &recordingBroadcaster{}
	startBridge(t, source, router)

	source.publish(t, SubjectLottery, []byte(`not json`))
	source.publish(t, SubjectLottery, []byte(`{"type":"draw_started"}`)) // missing lotteryId
	source.publish(t, SubjectSystem, []byte(`{"type":"info"}`))          // missing message
	source.publish(t, SubjectLottery, []byte(`{"lotteryId":"L2","type":"draw_completed"}`))

	waitFor(t, func() bool {
		router.mu.Lock()
		defer router.mu.Unlock()
		return len(router.lotteries) == 1
	}, "valid message after bad ones not routed")

	router.mu.Lock()
	defer router.mu.Unlock()
	if router.lotteries[0].LotteryID != "L2" {
		t.Errorf("routed lottery = %+v", router.lotteries[0])
	}
	if len(router.systems) != 0 {
		t.Errorf("system messages = %v, want none", router.systems)
	}
}

func TestBridge_SubscribeFailureSurfaces(t *testing.T) {
	source := newFakeSource()
	source.failFor = SubjectPromotion
	router := &recordingBroadcaster{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := NewBridge(source, router).Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		t.Fatalf("expected subscription error, got %v", err)
	}
}

func TestSubjectClass(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"lottery.>", "lottery"},
		{"lottery.L1.draw_started", "lottery"},
		{"system.maintenance", "system"},
		{"bare", "bare"},
	}

	for _, tt := range tests {
		if got := subjectClass(tt.subject); got != tt.want {
			t.Errorf("subjectClass(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}
