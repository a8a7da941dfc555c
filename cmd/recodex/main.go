package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/config"
	dbRedis "github.com/kailas-cloud/recodex/internal/db/redis"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/metrics"
	productrepo "github.com/kailas-cloud/recodex/internal/repository/product"
	chiTransport "github.com/kailas-cloud/recodex/internal/transport/chi"
	"github.com/kailas-cloud/recodex/internal/transport/openai"
	"github.com/kailas-cloud/recodex/internal/usecase/analyze"
	"github.com/kailas-cloud/recodex/internal/usecase/candidate"
	"github.com/kailas-cloud/recodex/internal/usecase/describe"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
	"github.com/kailas-cloud/recodex/internal/usecase/query"
	"github.com/kailas-cloud/recodex/internal/usecase/recommend"
	"github.com/kailas-cloud/recodex/internal/usecase/retrieval"
	"github.com/kailas-cloud/recodex/internal/version"
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

	catalog := cfg.Database.Catalog()
	logger.Info("Starting recodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", catalog.IndexName),
		zap.Bool("llm", cfg.LLM.Enabled()),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		Standalone: cfg.Database.Standalone,
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

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterPipelineMetrics()

	// Catalog repository behind timeout + circuit breaker
	repo := productrepo.New(store, catalog, logger)
	if created, err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	} else if created {
		logger.Info("Product index created", zap.String("index", catalog.IndexName))
	}
	guarded := productrepo.NewGuarded(repo, productrepo.BreakerConfig{
		Name:                "catalog-store",
		QueryTimeout:        cfg.Database.QueryTimeout(),
		ConsecutiveFailures: cfg.Database.Breaker.ConsecutiveFailures,
		OpenTimeout:         time.Duration(cfg.Database.Breaker.OpenTimeoutSec) * time.Second,
		HalfOpenRequests:    cfg.Database.Breaker.HalfOpenRequests,
	}, logger)

	// Pass nil interfaces (not typed nil pointers!) when the LLM is disabled.
	var (
		analyzeLLM  analyze.Completer
		describeLLM describe.Completer
		healthLLM   healthuc.LLMChecker
	)
	if cfg.LLM.Enabled() {
		completer := openai.NewCompleter(&openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Provider:    cfg.LLM.Provider,
			Logger:      logger,
		})
		analyzeLLM = completer
		healthLLM = completer
		if cfg.LLM.Describe {
			describeLLM = completer
		}
		logger.Info("LLM provider configured",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
		)
	} else {
		logger.Warn("LLM disabled, prompts use keyword category mapping")
	}

	// Use cases
	builder := query.NewBuilder(query.DefaultRules(), logger)
	retriever := retrieval.New(guarded, builder, logger)
	filter := candidate.New(candidate.HeuristicScorer{}, logger)
	recommendSvc := recommend.New(retriever, filter, recommend.Config{
		TopN:           cfg.Recommend.TopN,
		CandidateLimit: cfg.Recommend.CandidateLimit,
	}, logger)
	analyzeSvc := analyze.New(analyzeLLM, nil, logger)
	describeSvc := describe.New(describeLLM, cfg.Recommend.DescribeConcurrency, logger)
	healthSvc := healthuc.New(store, healthLLM, guarded)

	server := chiTransport.NewServer(analyzeSvc, recommendSvc, describeSvc, healthSvc, logger)
	handler := server.Router(chiTransport.Options{
		APIKeys: cfg.Auth.APIKeys,
		RateLimit: chiTransport.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   time.Duration(cfg.RateLimit.WindowSec) * time.Second,
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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
