// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perkstreet/pulsehub/internal/config"
	"github.com/perkstreet/pulsehub/internal/metrics"
	"github.com/perkstreet/pulsehub/internal/middleware"
)

// Router wires the HTTP surface: the websocket endpoint, the producer API,
// presence queries, health and metrics.
type Router struct {
	handler *Handler
	cfg     *config.Config
}

// NewRouter creates a Router around a Handler.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so the shared middleware package works
// with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chiMiddleware(middleware.RequestID))
	// Trust X-Forwarded-For only when a proxy tier is declared; otherwise
	// a client could spoof its way past per-IP rate limits.
	if len(router.cfg.Security.TrustedProxies) > 0 {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints: permissive rate limiting so monitoring can poll
	// frequently without opening an abuse vector.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Producer and query API, plus the websocket endpoint. Compression
	// skips upgrade requests, so /ws can share the stack.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.rateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/ws", router.handler.WebSocket)

		r.Route("/broadcast", func(r chi.Router) {
			r.Post("/lottery", router.handler.BroadcastLottery)
			r.Post("/promotion", router.handler.BroadcastPromotion)
			r.Post("/notification", router.handler.BroadcastNotification)
			r.Post("/system", router.handler.BroadcastSystem)
		})

		r.Post("/messages/user/{userID}", router.handler.SendToUser)

		r.Route("/presence", func(r chi.Router) {
			r.Get("/count", router.handler.PresenceCount)
			r.Get("/user/{userID}", router.handler.PresenceUser)
		})

		r.Get("/rooms/{room}/members", router.handler.RoomMembers)
	})

	// Prometheus scrape endpoint, outside the API middleware stack.
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// rateLimit returns the standard per-IP limiter, or a no-op when disabled.
func (router *Router) rateLimit() func(http.Handler) http.Handler {
	if router.cfg.Security.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		router.cfg.Security.RateLimitReqs,
		router.cfg.Security.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
		}),
	)
}

// APISecurityHeaders sets security headers on API responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
