// Package server assembles the Sentinel gateway from configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel/internal/auth"
	"github.com/prn-tf/sentinel/internal/config"
	"github.com/prn-tf/sentinel/internal/handler"
	"github.com/prn-tf/sentinel/internal/metrics"
	"github.com/prn-tf/sentinel/internal/pkg/crypto"
	"github.com/prn-tf/sentinel/internal/service"
)

// Server is a fully wired gateway instance.
type Server struct {
	cfg        *config.Config
	store      *Store
	locker     LockerCloser
	users      *service.UserStore
	metrics    *metrics.Metrics
	handler    http.Handler
	httpServer *http.Server
	logger     zerolog.Logger
}

// TokenConfig builds the token settings from configuration.
func TokenConfig(cfg config.AuthConfig) (auth.TokenConfig, error) {
	key, err := cfg.GetSigningKey()
	if err != nil {
		return auth.TokenConfig{}, fmt.Errorf("invalid signing key: %w", err)
	}
	return auth.TokenConfig{
		SigningKey: key,
		Lifetime:   cfg.TokenLifetime,
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
	}, nil
}

// NewUserStore builds the credential store used by the gateway and the admin CLI.
func NewUserStore(cfg *config.Config, store *Store, locker LockerCloser, logger zerolog.Logger) *service.UserStore {
	return service.NewUserStore(
		store.Users,
		crypto.NewBcryptHasher(cfg.Auth.BcryptCost),
		locker,
		service.UserStoreConfig{
			Policy:  service.PasswordPolicyFromConfig(cfg.Password),
			LockTTL: cfg.Auth.RegistrationLockTTL,
		},
		logger,
	)
}

// New connects every backend and builds the HTTP handler.
// Configuration errors are returned before anything listens.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	tokenCfg, err := TokenConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewJWTIssuer(tokenCfg)
	if err != nil {
		return nil, err
	}
	validator, err := auth.NewJWTValidator(tokenCfg)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	locker, err := NewLocker(ctx, cfg.Redis, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	users := NewUserStore(cfg, store, locker, logger)
	authService := service.NewAuthService(users, issuer, m, logger)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(authService, cfg.Server.MaxBodySize, logger),
		ProductHandler: handler.NewProductHandler(service.NewProductService(), logger),
		Gate:           auth.NewGate(validator, m, logger),
		Store:          store,
		Metrics:        m,
		Server:         cfg.Server,
		MetricsConfig:  cfg.Metrics,
		RateLimit:      cfg.RateLimit,
		Logger:         logger,
	})

	h := router.Handler()
	return &Server{
		cfg:     cfg,
		store:   store,
		locker:  locker,
		users:   users,
		metrics: m,
		handler: h,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      h,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		logger: logger.With().Str("component", "server").Logger(),
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Users returns the credential store.
func (s *Server) Users() *service.UserStore {
	return s.users
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within server.shutdown_timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("database", s.store.Driver).
			Msg("listening")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Dur("timeout", s.cfg.Server.ShutdownTimeout).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}

// Close releases the store and lock backends.
func (s *Server) Close() error {
	return errors.Join(s.locker.Close(), s.store.Close())
}
