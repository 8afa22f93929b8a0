/**
 * @description
 * This file sets up the HTTP router for the donation-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication and rate limiting.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sevasetu/donation-service/internal/app"
)

// RouterConfig carries the wiring the router needs beyond its handlers.
type RouterConfig struct {
	JWTSecret             string
	InitFlowRatePerMinute int
	RateLimiter           *app.RedisRateLimiter
}

// DonationRoutes creates and returns a new router for the donation service.
func DonationRoutes(h *DonationHandlers, wh *WebhookHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/api", func(r chi.Router) {
		// Public donation flow. The gateway authenticates the capture endpoint
		// through its signature, not through bearer tokens.
		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(cfg.RateLimiter, "init_flow", cfg.InitFlowRatePerMinute))
			r.Post("/donations/init-flow", h.InitFlowHandler)
		})
		r.Method(http.MethodPost, "/donations/capture", wh)

		// Authenticated reporting and administration.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.JWTSecret))

			r.Get("/donations", h.ListDonationsHandler)
			r.Get("/campaigns/{campaignID}", h.GetCampaignHandler)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/campaigns", h.CreateCampaignHandler)
			})
		})
	})

	return r
}
