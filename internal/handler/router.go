// Package handler provides the HTTP surface of the Sentinel gateway.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"

	"github.com/prn-tf/sentinel/internal/auth"
	"github.com/prn-tf/sentinel/internal/config"
	"github.com/prn-tf/sentinel/internal/metrics"
)

// healthCheckTimeout bounds the store ping of the health endpoint.
const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router wires the handlers, the authorization gate and the middleware chain.
type Router struct {
	authHandler    *AuthHandler
	productHandler *ProductHandler
	gate           *auth.Gate
	store          Pinger
	metrics        *metrics.Metrics
	server         config.ServerConfig
	metricsConfig  config.MetricsConfig
	rateLimit      config.RateLimitConfig
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	Gate           *auth.Gate

	// Store is pinged by the health endpoint. May be nil.
	Store Pinger

	// Metrics may be nil, which disables instrumentation.
	Metrics *metrics.Metrics

	Server        config.ServerConfig
	MetricsConfig config.MetricsConfig
	RateLimit     config.RateLimitConfig
	Logger        zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		authHandler:    cfg.AuthHandler,
		productHandler: cfg.ProductHandler,
		gate:           cfg.Gate,
		store:          cfg.Store,
		metrics:        cfg.Metrics,
		server:         cfg.Server,
		metricsConfig:  cfg.MetricsConfig,
		rateLimit:      cfg.RateLimit,
		logger:         cfg.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(rt.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(rt.metrics.Middleware)
	r.Use(rt.securityHeaders().Handler)
	if rt.server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(rt.server.RequestTimeout))
	}

	// Health check (no auth)
	r.Get("/health", rt.handleHealth)

	if rt.metricsConfig.Enabled && rt.metrics != nil {
		r.Method(http.MethodGet, rt.metricsConfig.Path, rt.metrics.Handler())
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if rt.rateLimit.Enabled {
				r.Use(httprate.LimitByIP(rt.rateLimit.Requests, rt.rateLimit.Window))
			}
			r.Post("/login", rt.authHandler.Login)
			r.Post("/register", rt.authHandler.Register)
		})
		r.With(rt.gate.Middleware).Get("/me", rt.authHandler.Me)
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Use(rt.gate.Middleware)
		r.Get("/", rt.productHandler.List)
		r.Get("/{id}", rt.productHandler.Get)
	})

	return r
}

func (rt *Router) securityHeaders() *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
		SSLRedirect:           rt.server.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})
}

// accessLog logs one line per request.
func (rt *Router) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			rt.logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// handleHealth handles health check requests.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := rt.store.Ping(ctx); err != nil {
			rt.logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
