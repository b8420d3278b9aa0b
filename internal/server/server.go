// Package server exposes the webhook endpoint and the admin bot-config API
// over HTTP using gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/storebot/internal/admin"
	"github.com/edgard/storebot/internal/auth"
	"github.com/edgard/storebot/internal/config"
	"github.com/edgard/storebot/internal/dispatch"
	"github.com/edgard/storebot/internal/logger"
)

// WebhookDispatcher handles one raw webhook delivery.
type WebhookDispatcher interface {
	DispatchRaw(ctx context.Context, shopID string, body []byte) dispatch.Result
}

// AdminService is the admin flow surface used by the API handlers.
type AdminService interface {
	PutToken(ctx context.Context, shopID, token string) (*admin.TokenResult, error)
	RegisterWebhook(ctx context.Context, shopID string) (*admin.WebhookResult, error)
	Status(ctx context.Context, shopID string) (*admin.Status, error)
	Unlink(ctx context.Context, shopID string) error
	SetBanned(ctx context.Context, shopID string, banned bool) error
	SetActive(ctx context.Context, shopID string, active bool) error
}

// OwnerLookup resolves the shop of a token that carries no shopId claim.
type OwnerLookup interface {
	FindShopIDByOwner(ctx context.Context, ownerID string) (string, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds the server's collaborators.
type Deps struct {
	Logger     *slog.Logger
	Dispatcher WebhookDispatcher
	Admin      AdminService
	Owners     OwnerLookup
	Health     Pinger
	JWTSecret  string
}

// Server wraps the gin router and the http.Server running it.
type Server struct {
	cfg    config.HTTPConfig
	deps   Deps
	logger *slog.Logger
	router *gin.Engine
}

// NewServer builds the router with every route registered.
func NewServer(cfg config.HTTPConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "http_server"),
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), logger.HTTPMiddleware(deps.Logger))

	s.router.GET("/healthz", s.handleHealth)
	s.router.POST("/webhook/:shopId", s.handleWebhook)
	s.router.POST("/webhook", s.handleWebhook)

	secret := []byte(deps.JWTSecret)
	botAPI := s.router.Group("/api/bot", auth.RequireRole(secret, auth.RoleShopOwner))
	{
		botAPI.PUT("/token", s.handlePutToken)
		botAPI.DELETE("/token", s.handleDeleteToken)
		botAPI.POST("/webhook", s.handleRegisterWebhook)
		botAPI.GET("/status", s.handleStatus)
	}

	superAdmin := s.router.Group("/api/super-admin", auth.RequireRole(secret, auth.RoleSuperAdmin))
	{
		superAdmin.PUT("/shops/:shopId/ban", s.handleBan)
		superAdmin.PUT("/shops/:shopId/active", s.handleSetActive)
	}

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped.")
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// botIdentity is the bot summary returned by the admin API.
type botIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func identityFromUser(u *models.User) *botIdentity {
	if u == nil {
		return nil
	}
	return &botIdentity{ID: u.ID, Username: u.Username, Name: u.FirstName}
}
