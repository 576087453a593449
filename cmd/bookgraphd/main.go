package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/config"
	dbRedis "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db/redis"
	logpkg "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/logger"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/metrics"
	authorrepo "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/repository/authors"
	bookrepo "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/repository/books"
	personrepo "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/repository/people"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/transport/httpapi"
	transportOpenAI "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/transport/openai"
	resolutionuc "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/usecase/resolution"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bookgraph API server",
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register resolution metrics explicitly (no init())
	metrics.RegisterResolutionMetrics()

	// Load sidecar data files
	roster, err := authorrepo.Load(cfg.Catalog.RosterPath)
	if err != nil {
		logger.Fatal("Failed to load author roster", zap.Error(err))
	}
	logger.Info("Author roster loaded", zap.Int("authors", roster.Len()))

	bookRepo := bookrepo.New(store, cfg.Catalog.BookIndex)
	personRepo := personrepo.New(store, cfg.Catalog.PersonIndex)
	if cfg.Catalog.OverridesPath != "" {
		overrides, err := personrepo.LoadOverrides(cfg.Catalog.OverridesPath)
		if err != nil {
			logger.Fatal("Failed to load person overrides", zap.Error(err))
		}
		personRepo = personRepo.WithOverrides(overrides)
		logger.Info("Person overrides loaded", zap.Int("entries", len(overrides)))
	}

	arbiter := transportOpenAI.NewArbiter(&transportOpenAI.Config{
		APIKey:      cfg.Arbiter.APIKey,
		BaseURL:     cfg.Arbiter.BaseURL,
		Model:       cfg.Arbiter.Model,
		Temperature: cfg.Arbiter.Temperature,
		Logger:      logger,
	})

	resolver := resolutionuc.New(bookRepo, roster, personRepo, arbiter).
		WithLogger(logger).
		WithTimeout(time.Duration(cfg.Resolver.TimeoutSec) * time.Second).
		WithMaxConcurrent(cfg.Resolver.MaxConcurrent)

	if cfg.Catalog.AliasesPath != "" {
		aliases, err := authorrepo.LoadAliases(cfg.Catalog.AliasesPath)
		if err != nil {
			logger.Fatal("Failed to load author aliases", zap.Error(err))
		}
		resolver = resolver.WithAliasTable(aliases)
		logger.Info("Author aliases loaded", zap.Int("entries", aliases.Len()))
	}

	server := httpapi.NewServer(resolver, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
