// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package main is the entry point for the PulseHub gateway.
//
// PulseHub is the real-time fan-out layer of the PerkStreet NFT coupon
// platform. Shoppers hold authenticated WebSocket connections; backend
// services push lottery draws, merchant promotions and notifications
// through the REST producer API or the NATS event bridge, and the gateway
// fans each event out to the room it targets.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and config file (Koanf v2)
//  2. Authentication: JWT verification for the WebSocket handshake
//  3. Realtime hub: connection registry, rooms and presence
//  4. Event bridge (optional): NATS subscriptions feeding the router
//  5. HTTP server: WebSocket endpoint, producer API, health, metrics
//
// All long-running components run under a suture supervisor tree. The
// fanout layer (hub, bridge) and the API layer (HTTP server) restart
// independently on failure.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults.
//
// Required:
//   - JWT_SECRET: shared HMAC secret for handshake tokens
//
// Common:
//   - HTTP_HOST / HTTP_PORT: listen address (default 0.0.0.0:8090)
//   - NATS_ENABLED / NATS_URL: upstream event bridge
//   - CORS_ORIGINS / WS_ALLOWED_ORIGINS: browser origin policy
//   - LOG_LEVEL / LOG_FORMAT: zerolog output
//
// # Signal Handling
//
// The gateway shuts down gracefully on SIGINT and SIGTERM: the HTTP
// listener stops accepting connections, in-flight requests finish within
// the shutdown timeout, and the hub closes every websocket client.
//
// # Example Usage
//
// Development, REST producers only:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export DISABLE_RATE_LIMIT=true
//	./pulsehub
//
// Production with the NATS bridge:
//
//	export JWT_SECRET=...
//	export NATS_ENABLED=true
//	export NATS_URL=nats://broker:4222
//	export CORS_ORIGINS=https://app.perkstreet.io
//	export WS_ALLOWED_ORIGINS=https://app.perkstreet.io
//	./pulsehub
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/perkstreet/pulsehub/internal/api"
	"github.com/perkstreet/pulsehub/internal/auth"
	"github.com/perkstreet/pulsehub/internal/config"
	"github.com/perkstreet/pulsehub/internal/events"
	"github.com/perkstreet/pulsehub/internal/logging"
	"github.com/perkstreet/pulsehub/internal/metrics"
	"github.com/perkstreet/pulsehub/internal/realtime"
	"github.com/perkstreet/pulsehub/internal/supervisor"
	"github.com/perkstreet/pulsehub/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting PulseHub gateway")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	authenticator := auth.NewAuthenticator(jwtManager)

	// The hub owns all connection, room and presence state; the router is
	// the typed fan-out facade shared by the REST API and the bridge.
	hub := realtime.NewHub(&cfg.WebSocket)
	router := realtime.NewRouter(hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional upstream event bridge.
	var (
		bridge      *events.Bridge
		bridgeReady func() bool
	)
	if cfg.NATS.Enabled {
		conn, err := events.Connect(&cfg.NATS)
		if err != nil {
			logging.Fatal().Err(err).Str("url", cfg.NATS.URL).Msg("Failed to connect to NATS")
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logging.Error().Err(err).Msg("Error draining NATS connection")
			}
		}()

		bridge = events.NewBridge(conn, router)
		bridgeReady = conn.IsConnected
		logging.Info().Str("url", cfg.NATS.URL).Msg("Event bridge enabled")
	} else {
		logging.Info().Msg("Event bridge disabled - REST producer API only")
	}

	handler := api.NewHandler(cfg, hub, router, authenticator, bridgeReady)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, cfg).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// No WriteTimeout: it would sever long-lived websockets.
	}

	// Bridge zerolog to slog for sutureslog.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddFanoutService(services.NewHubService(hub))
	if bridge != nil {
		tree.AddFanoutService(services.NewBridgeService(bridge))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Uptime gauge, updated until shutdown.
	go trackUptime(ctx)

	// Setup signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished).
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout.
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Gateway stopped gracefully")
}

// trackUptime refreshes the uptime gauge every 15 seconds.
func trackUptime(ctx context.Context) {
	start := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.AppUptime.Set(time.Since(start).Seconds())
		}
	}
}
