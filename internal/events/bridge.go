// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/metrics"
	"github.com/perkstreet/pulsehub/internal/realtime"
)

// Wildcard subjects the bridge consumes. Producers publish to anything
// below these roots, e.g. lottery.L1.draw_started; routing is driven by the
// payload, the subject tail is free-form producer metadata.
const (
	SubjectLottery      = "lottery.>"
	SubjectPromotion    = "promotion.>"
	SubjectNotification = "notification.>"
	SubjectSystem       = "system.>"
)

// Broadcaster is the fan-out surface the bridge drives. *realtime.Router
// satisfies it.
type Broadcaster interface {
	BroadcastLotteryEvent(ev realtime.LotteryEvent) int
	BroadcastPromotion(p realtime.Promotion) int
	BroadcastNotification(n realtime.Notification) int
	BroadcastSystemMessage(severity, message string) int
}

// notificationMessage is the wire shape producers publish on notification
// subjects. Targets ride alongside the notification body.
type notificationMessage struct {
	Type           string             `json:"type"`
	Title          string             `json:"title"`
	Message        string             `json:"message"`
	Data           interface{}        `json:"data"`
	TargetUserIDs  []string           `json:"targetUserIds"`
	TargetLocation *realtime.GeoPoint `json:"targetLocation"`
}

// systemMessage is the wire shape producers publish on system subjects.
type systemMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Bridge consumes producer events from a MessageSource and hands them to
// the broadcast router. It is the path backend services use instead of the
// REST producer API when they already publish to the broker.
type Bridge struct {
	source MessageSource
	router Broadcaster
}

// NewBridge creates a bridge between a message source and the router.
func NewBridge(source MessageSource, router Broadcaster) *Bridge {
	return &Bridge{source: source, router: router}
}

// Run subscribes to all producer subjects and dispatches until the context
// is canceled. Designed for use with suture supervision: a subscription
// failure returns an error so the supervisor restarts the bridge.
func (b *Bridge) Run(ctx context.Context) error {
	subjects := []string{SubjectLottery, SubjectPromotion, SubjectNotification, SubjectSystem}

	var wg sync.WaitGroup
	for _, subject := range subjects {
		messages, err := b.source.Subscribe(ctx, subject)
		if err != nil {
			return fmt.Errorf("bridge subscribe: %w", err)
		}
		wg.Add(1)
		go func(subject string, messages <-chan []byte) {
			defer wg.Done()
			b.consume(ctx, subject, messages)
		}(subject, messages)
	}

	logging.Info().Int("subjects", len(subjects)).Msg("event bridge started")
	<-ctx.Done()
	wg.Wait()
	logging.Info().Msg("event bridge stopped")
	return ctx.Err()
}

// consume drains one subscription until the context ends or the source
// closes the channel.
func (b *Bridge) consume(ctx context.Context, subject string, messages <-chan []byte) {
	class := subjectClass(subject)
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-messages:
			if !ok {
				return
			}
			b.dispatch(class, data)
		}
	}
}

// dispatch parses one producer message and routes it. A payload that fails
// to parse is dropped and counted; the bridge never stops over bad input.
func (b *Bridge) dispatch(class string, data []byte) {
	start := time.Now()
	metrics.RecordNATSConsume(class)

	switch class {
	case "lottery":
		var ev realtime.LotteryEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.LotteryID == "" {
			b.dropMessage(class, err)
			return
		}
		b.router.BroadcastLotteryEvent(ev)

	case "promotion":
		var p realtime.Promotion
		if err := json.Unmarshal(data, &p); err != nil || p.MerchantID == "" {
			b.dropMessage(class, err)
			return
		}
		b.router.BroadcastPromotion(p)

	case "notification":
		var m notificationMessage
		if err := json.Unmarshal(data, &m); err != nil {
			b.dropMessage(class, err)
			return
		}
		b.router.BroadcastNotification(realtime.Notification{
			Type:           m.Type,
			Title:          m.Title,
			Message:        m.Message,
			Data:           m.Data,
			TargetUserIDs:  m.TargetUserIDs,
			TargetLocation: m.TargetLocation,
		})

	case "system":
		var m systemMessage
		if err := json.Unmarshal(data, &m); err != nil || m.Message == "" {
			b.dropMessage(class, err)
			return
		}
		severity := m.Type
		if severity == "" {
			severity = "info"
		}
		b.router.BroadcastSystemMessage(severity, m.Message)

	default:
		b.dropMessage(class, nil)
	}

	metrics.RecordNATSProcessingDuration(time.Since(start))
}

func (b *Bridge) dropMessage(class string, err error) {
	metrics.RecordNATSParseFailed()
	logging.Warn().Err(err).Str("subject_class", class).Msg("dropping unparseable producer message")
}

// subjectClass extracts the routing class from a subject: the token before
// the first dot.
func subjectClass(subject string) string {
	if i := strings.IndexByte(subject, '.'); i >= 0 {
		return subject[:i]
	}
	return subject
}
