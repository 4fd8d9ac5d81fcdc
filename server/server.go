// Package server exposes the REST API used by dashboard and automation
// clients: item CRUD, history, manual check triggers, job controls, settings
// and notification profiles.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/pricewatch/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/tracker.go -pkg mocks -skip-ensure -fmt goimports . Tracker
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler

// Server represents HTTP server instance
type Server struct {
	config        ConfigProvider
	tracker       Tracker
	scheduler     Scheduler
	version       string
	screenshotDir string
	debug         bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Tracker provides item, history, profile and settings access
type Tracker interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	GetItems(ctx context.Context) ([]*domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id int64) error

	GetHistory(ctx context.Context, itemID int64, limit int) ([]*domain.HistoryRecord, error)
	CountHistory(ctx context.Context, itemID int64) (int64, error)

	CreateProfile(ctx context.Context, p *domain.NotificationProfile) error
	GetProfile(ctx context.Context, id int64) (*domain.NotificationProfile, error)
	GetProfiles(ctx context.Context) ([]*domain.NotificationProfile, error)
	UpdateProfile(ctx context.Context, p *domain.NotificationProfile) error
	DeleteProfile(ctx context.Context, id int64) error

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetAllSettings(ctx context.Context) (map[string]string, error)
}

// Scheduler interface for on-demand operations
type Scheduler interface {
	CheckNow(ctx context.Context, itemID int64) error
	RefreshAll(ctx context.Context) (int64, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, tracker Tracker, scheduler Scheduler, version, screenshotDir string, debug bool) *Server {
	s := &Server{
		config:        cfg,
		tracker:       tracker,
		scheduler:     scheduler,
		version:       version,
		screenshotDir: screenshotDir,
		debug:         debug,
		router:        routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("pricewatch", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)

		r.HandleFunc("GET /items", s.listItemsHandler)
		r.HandleFunc("POST /items", s.createItemHandler)
		r.HandleFunc("GET /items/{id}", s.getItemHandler)
		r.HandleFunc("PUT /items/{id}", s.updateItemHandler)
		r.HandleFunc("DELETE /items/{id}", s.deleteItemHandler)
		r.HandleFunc("GET /items/{id}/history", s.historyHandler)
		r.HandleFunc("GET /items/{id}/screenshot", s.screenshotHandler)
		r.HandleFunc("POST /items/{id}/check", s.checkNowHandler)

		r.HandleFunc("POST /jobs/refresh-all", s.refreshAllHandler)
		r.HandleFunc("GET /jobs/config", s.getJobsConfigHandler)
		r.HandleFunc("POST /jobs/config", s.setJobsConfigHandler)

		r.HandleFunc("GET /settings", s.getSettingsHandler)
		r.HandleFunc("PUT /settings/{key}", s.setSettingHandler)

		r.HandleFunc("GET /profiles", s.listProfilesHandler)
		r.HandleFunc("POST /profiles", s.createProfileHandler)
		r.HandleFunc("GET /profiles/{id}", s.getProfileHandler)
		r.HandleFunc("PUT /profiles/{id}", s.updateProfileHandler)
		r.HandleFunc("DELETE /profiles/{id}", s.deleteProfileHandler)
	})
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}
