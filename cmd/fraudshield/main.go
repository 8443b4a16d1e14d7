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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/config"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/db"
	dbRedis "github.com/Bhupatishyam55/Finance-AI-Project/internal/db/redis"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/embedding"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/extract"
	logpkg "github.com/Bhupatishyam55/Finance-AI-Project/internal/logger"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/metrics"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/repository/embcache"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/repository/fingerprint"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/repository/results"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/repository/vectorindex"
	chiTransport "github.com/Bhupatishyam55/Finance-AI-Project/internal/transport/chi"
	openaiEmb "github.com/Bhupatishyam55/Finance-AI-Project/internal/transport/openai"
	adminuc "github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/admin"
	dedupuc "github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/dedup"
	healthuc "github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/health"
	scanuc "github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/scan"
	statsuc "github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/stats"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/version"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

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

	logger.Info("Starting fraudshield API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Storage.DataDir),
	)

	// Register scan and embedding metrics explicitly (no init())
	metrics.RegisterScanMetrics()

	// Optional embedding cache backend
	var cacheStore db.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = cacheStore.WaitForReady(ctx, 10*time.Second)
		cancel()
		if err != nil {
			logger.Warn("Embedding cache not ready, continuing without it", zap.Error(err))
			cacheStore.Close()
			cacheStore = nil
		} else {
			defer cacheStore.Close()
			logger.Info("Connected to embedding cache")
		}
	}

	// Embedder chain: OpenAI transport -> cache decorator -> lazy provider
	provider := embedding.NewProvider(
		buildEmbedderFactory(cfg, cacheStore, logger),
		cfg.Embedding.Dimensions,
		logger,
	)

	// File-backed engine state
	fingerprints := fingerprint.New(cfg.Storage.ExactPath(), cfg.Storage.PerceptualPath(), logger)
	index, err := vectorindex.Open(cfg.Storage.IndexPath(), cfg.Embedding.Dimensions, logger)
	if err != nil {
		logger.Fatal("Failed to open vector index", zap.Error(err))
	}
	resultStore := results.New()

	// Use case services
	extractor := extract.NewExtractor(cfg.Scan.MaxPDFPages, logger)
	dedupSvc := dedupuc.NewService(fingerprints, index, provider,
		cfg.Dedup.SemanticThreshold, cfg.Dedup.MinTextLen, logger)
	scanSvc := scanuc.NewService(
		extractor, dedupSvc, fingerprints, index, provider, resultStore,
		scanuc.DefaultDetectors(), cfg.Dedup.MinTextLen, logger,
	)
	adminSvc := adminuc.NewService(resultStore, fingerprints, index, logger)
	statsSvc := statsuc.NewService(resultStore)

	var cachePinger healthuc.CachePinger
	if cacheStore != nil {
		cachePinger = cacheStore
	}
	healthSvc := healthuc.New(cachePinger, embeddingHealthChecker(cfg, logger))

	server := chiTransport.NewServer(
		scanSvc, resultStore, adminSvc, healthSvc, statsSvc,
		cfg.Admin.ResetKey, cfg.Scan.MaxUploadBytes, cfg.Scan.AllowedExtensions,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.CORS(cfg.HTTP.CORSOrigins))
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

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

// buildEmbedderFactory assembles the decorator chain the provider initializes
// on first use: OpenAI transport, optionally wrapped by the cache.
func buildEmbedderFactory(cfg config.Config, cacheStore db.Store, logger *zap.Logger) embedding.Factory {
	return func(ctx context.Context) (domain.Embedder, error) {
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("embedding api key is not configured")
		}

		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})

		if err := base.HealthCheck(ctx); err != nil {
			return nil, fmt.Errorf("embedding provider unreachable: %w", err)
		}

		if cacheStore != nil {
			return embcache.New(base, cacheStore, metrics.EmbeddingCacheTotal, logger), nil
		}
		return base, nil
	}
}

// embeddingHealthChecker probes the provider directly so that /health does not
// trip the lazy provider's one-shot initialization.
func embeddingHealthChecker(cfg config.Config, logger *zap.Logger) healthuc.EmbeddingChecker {
	if cfg.Embedding.APIKey == "" {
		return nil
	}
	return openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

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
