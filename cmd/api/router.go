package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendora/vendora-api/internal/domain/admin"
	"github.com/vendora/vendora-api/internal/domain/auth"
	"github.com/vendora/vendora-api/internal/domain/availability"
	"github.com/vendora/vendora-api/internal/domain/booking"
	"github.com/vendora/vendora-api/internal/domain/message"
	"github.com/vendora/vendora-api/internal/domain/rating"
	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/domain/view"
	"github.com/vendora/vendora-api/internal/middleware"
	"github.com/vendora/vendora-api/internal/pkg/metrics"
	pkgresponse "github.com/vendora/vendora-api/internal/pkg/response"
)

type handlers struct {
	auth         *auth.Handler
	vendor       *vendor.Handler
	availability *availability.Handler
	booking      *booking.Handler
	rating       *rating.Handler
	view         *view.Handler
	message      *message.Handler
	admin        *admin.Handler
}

type routerConfig struct {
	allowedOrigins []string
	metrics        *metrics.Metrics
	metricsPath    string
	authMiddleware func(http.Handler) http.Handler
	optionalAuth   func(http.Handler) http.Handler
	ping           func(ctx context.Context) error
}

// mountVendorRoutes registers every vendor-scoped domain on one /vendors router.
func mountVendorRoutes(r chi.Router, h handlers, authMW, optionalAuth func(http.Handler) http.Handler) {
	r.Route("/vendors", func(r chi.Router) {
		h.vendor.RegisterRoutes(r, authMW, optionalAuth)
		h.availability.RegisterRoutes(r, authMW)
		h.booking.RegisterVendorRoutes(r, authMW)
		h.rating.RegisterRoutes(r, authMW)
		h.view.RegisterRoutes(r, authMW, optionalAuth)
	})
}

func newRouter(h handlers, cfg routerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.allowedOrigins))
	if cfg.metrics != nil {
		r.Use(middleware.Metrics(cfg.metrics))
		r.Handle(cfg.metricsPath, promhttp.HandlerFor(cfg.metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.With(cfg.authMiddleware).Get("/ws", h.message.WebSocket)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if cfg.ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.ping(ctx); err != nil {
				pkgresponse.ServiceUnavailable(w, "database unreachable")
				return
			}
		}
		pkgresponse.OK(w, map[string]string{"status": status})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Mount("/auth", h.auth.Routes(cfg.authMiddleware))
		mountVendorRoutes(r, h, cfg.authMiddleware, cfg.optionalAuth)
		r.Mount("/requests", h.booking.Routes(cfg.authMiddleware))
		r.Mount("/messages", h.message.Routes(cfg.authMiddleware))
		h.admin.RegisterPublicRoutes(r)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(cfg.authMiddleware)
		r.Use(middleware.RequireAdmin())
		r.Mount("/", h.admin.Routes())
	})

	return r
}
