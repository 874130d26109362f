package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, verifier middleware.TokenVerifier, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID -> Recovery -> Logging -> Metrics -> CORS
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)

	r.Get("/products", h.Product.GetAll)
	r.Get("/products/{id}", h.Product.GetByID)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, logger))

		r.Get("/verify-token", h.Auth.VerifyToken)
		r.Post("/checkout", h.Checkout.Checkout)
		r.Get("/orders", h.Order.List)
		r.Get("/orders/{id}", h.Order.GetByID)
	})

	return r
}
