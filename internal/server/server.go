/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/huginn_delivery/internal/api"
	"github.com/friendsincode/huginn_delivery/internal/cache"
	"github.com/friendsincode/huginn_delivery/internal/calendar"
	"github.com/friendsincode/huginn_delivery/internal/config"
	"github.com/friendsincode/huginn_delivery/internal/db"
	"github.com/friendsincode/huginn_delivery/internal/delivery"
	"github.com/friendsincode/huginn_delivery/internal/telemetry"
	"github.com/friendsincode/huginn_delivery/internal/version"
)

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db           *gorm.DB
	cache        *cache.Cache
	yamlProvider *calendar.YAMLProvider
	provider     calendar.Provider
	resolver     *delivery.Service
	api          *api.API

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware("huginn-delivery-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(15 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	switch s.cfg.CalendarSource {
	case config.CalendarSourceYAML:
		provider, err := calendar.NewYAMLProvider(s.cfg.CalendarPath, s.cfg.CalendarRefreshInterval, s.logger)
		if err != nil {
			return fmt.Errorf("load calendar file: %w", err)
		}
		s.yamlProvider = provider
		s.provider = provider
		s.logger.Info().Str("path", s.cfg.CalendarPath).Msg("calendar source: yaml")

	case config.CalendarSourceDatabase:
		database, err := db.Connect(s.cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := db.RegisterCallbacks(database); err != nil {
			return fmt.Errorf("register db callbacks: %w", err)
		}
		if err := db.Migrate(database); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		s.db = database
		s.DeferClose(func() error { return db.Close(database) })
		s.provider = calendar.NewGormProvider(database, s.logger)
		s.logger.Info().Str("backend", string(s.cfg.DBBackend)).Msg("calendar source: database")

	default:
		return fmt.Errorf("unknown calendar source: %s", s.cfg.CalendarSource)
	}

	// Optional Redis read-through cache in front of the provider.
	if s.cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		calendarCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = calendarCache
			s.DeferClose(func() error { return s.cache.Close() })
			s.provider = cache.NewProvider(s.provider, s.cache)
		}
	}

	s.resolver = delivery.NewService(
		s.provider,
		delivery.SystemClock{},
		s.logger,
		delivery.WithMaxResults(s.cfg.MaxResults),
		delivery.WithHorizonDays(s.cfg.HorizonDays),
	)
	s.api = api.New(s.resolver, s.logger)

	return nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	if s.yamlProvider == nil && s.db == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	// Fixed-interval calendar refresh; readers always see a whole snapshot.
	if s.yamlProvider != nil && s.cfg.CalendarRefreshInterval > 0 {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			if err := s.yamlProvider.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Msg("calendar refresher exited")
			}
		}()
	}

	// Connection pool metrics updater.
	if s.db != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					db.UpdateConnectionMetrics(s.db)
				}
			}
		}()
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, version.Version)
	})

	s.router.Handle("/metrics", telemetry.Handler())

	s.api.Routes(s.router)
}
