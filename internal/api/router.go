/**
 * @description
 * This file defines the HTTP routes for the service using the chi router.
 * It maps API endpoints to their corresponding handler functions and applies
 * the authentication and rate-limiting middleware to protected routes.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight, idiomatic router for Go.
 * - internal/app: For the rate limiter interface.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/dacreathor101/simplebank-new/internal/app"
)

// Routes creates and returns the main router for the service.
func Routes(h *Handlers, jwtSecret []byte, limiter app.RateLimiter, ratePerMinute int) http.Handler {
	r := chi.NewRouter()

	// Standard middleware stack
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public routes
	r.Post("/signup", h.SignupHandler)
	r.Post("/login", h.LoginHandler)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))
		r.Use(RateLimitMiddleware(limiter, ratePerMinute))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccountsHandler)
			r.Post("/", h.CreateAccountHandler)

			r.Route("/{accountID}", func(r chi.Router) {
				r.Get("/", h.GetAccountHandler)
				r.Post("/deposit", h.DepositHandler)
				r.Post("/withdraw", h.WithdrawHandler)
				r.Post("/transfer", h.TransferHandler)
				r.Get("/transactions", h.ListTransactionsHandler)
			})
		})
	})

	return r
}
