// ABOUTME: Gateway orchestrator that coordinates the HTTP server lifecycle
// ABOUTME: Manages store, challenge validator, tenant resolver, and routes

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/voicegate/voicegate/internal/auth"
	"github.com/voicegate/voicegate/internal/challenge"
	"github.com/voicegate/voicegate/internal/config"
	"github.com/voicegate/voicegate/internal/scene"
	"github.com/voicegate/voicegate/internal/store"
	"github.com/voicegate/voicegate/internal/tenant"
)

// DefaultTokenTTL is the admin JWT lifetime when auth.token_ttl is unset.
const DefaultTokenTTL = 24 * time.Hour

// Gateway orchestrates the voicegate server components. It manages the
// HTTP server hosting the voice-assistant endpoints and the admin API.
type Gateway struct {
	config     *config.Config
	store      *store.SQLiteStore
	validator  *challenge.Validator
	resolver   *tenant.Resolver
	unmapped   *tenant.UnmappedTracker
	scenes     *scene.Factory
	verifier   *auth.JWTVerifier
	tokenTTL   time.Duration
	httpServer *http.Server
	logger     *slog.Logger
}

// initStore creates and returns a store based on config and environment.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("VOICEGATE_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	phrases := challenge.NewPhraseGenerator(cfg.Challenge.Words, cfg.Challenge.Numbers)
	validator := challenge.NewValidator(
		challenge.NewStore(),
		phrases,
		cfg.Challenge.Expiry,
		cfg.Challenge.MaxAttempts,
		logger,
	)

	unmapped := tenant.NewUnmappedTracker()
	resolver := tenant.NewResolver(s, s, cfg.Tenancy.DefaultHomeID, unmapped, logger)
	scenes := scene.NewFactory(cfg.Controller.Timeout, logger)

	tokenTTL := cfg.Auth.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	gw := &Gateway{
		config:    cfg,
		store:     s,
		validator: validator,
		resolver:  resolver,
		unmapped:  unmapped,
		scenes:    scenes,
		verifier:  auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)),
		tokenTTL:  tokenTTL,
		logger:    logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()

	// Health endpoint - no auth required
	mux.HandleFunc("/health", gw.handleHealth)

	// Voice assistant endpoints - callers are authenticated by the
	// challenge flow itself, not by tokens
	mux.HandleFunc("/futureproofhome/auth/request", gw.handleAuthRequest)
	mux.HandleFunc("/futureproofhome/auth/verify", gw.handleAuthVerify)
	mux.HandleFunc("/futureproofhome/auth/cancel", gw.handleAuthCancel)
	mux.HandleFunc("/futureproofhome/auth/status", gw.handleAuthStatus)
	mux.HandleFunc("/alexa", gw.handleAlexa)

	// Admin API - login is open, everything else behind JWT
	gw.registerAdminRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Handler exposes the gateway's HTTP handler, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// seedDefaultHome ensures the configured default home exists in the
// registry, creating an owner user and home row from controller config
// on first startup. An existing row is left untouched so admin edits
// survive restarts.
func (g *Gateway) seedDefaultHome(ctx context.Context) error {
	homeID := g.config.Tenancy.DefaultHomeID
	if homeID == "" {
		return nil
	}

	_, err := g.store.GetHome(ctx, homeID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrHomeNotFound) {
		return fmt.Errorf("checking default home: %w", err)
	}

	now := time.Now().UTC()
	owner := &store.User{
		ID:        uuid.NewString(),
		Username:  "default",
		FullName:  "Default Home Owner",
		Active:    true,
		CreatedAt: now,
	}
	if err := g.store.CreateUser(ctx, owner); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			existing, lookupErr := g.store.GetUserByUsername(ctx, "default")
			if lookupErr != nil {
				return fmt.Errorf("looking up default owner: %w", lookupErr)
			}
			owner = existing
		} else {
			return fmt.Errorf("creating default owner: %w", err)
		}
	}

	h := &store.Home{
		ID:            homeID,
		UserID:        owner.ID,
		Name:          "Default Home",
		ControllerURL: g.config.Controller.URL,
		WebhookID:     g.config.Controller.WebhookID,
		Active:        true,
		TestMode:      g.config.Controller.TestMode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := g.store.CreateHome(ctx, h); err != nil {
		return fmt.Errorf("creating default home: %w", err)
	}

	g.logger.Info("seeded default home", "home_id", homeID, "test_mode", h.TestMode)
	return nil
}

// Run starts the gateway server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	if err := g.seedDefaultHome(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// startServer starts the HTTP server in a goroutine, returning error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	g.validator.Close()

	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
