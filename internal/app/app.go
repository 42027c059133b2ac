// Package app is the composition root of the shopsearch API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kailas-cloud/shopsearch/internal/config"
	dbRedis "github.com/kailas-cloud/shopsearch/internal/db/redis"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/repository/catalog"
	"github.com/kailas-cloud/shopsearch/internal/repository/embcache"
	"github.com/kailas-cloud/shopsearch/internal/repository/vectorindex"
	"github.com/kailas-cloud/shopsearch/internal/tracing"
	chiTransport "github.com/kailas-cloud/shopsearch/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/shopsearch/internal/transport/openai"
	assistantuc "github.com/kailas-cloud/shopsearch/internal/usecase/assistant"
	dispatchuc "github.com/kailas-cloud/shopsearch/internal/usecase/dispatch"
	embeddinguc "github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	"github.com/kailas-cloud/shopsearch/internal/usecase/indexsync"
	productuc "github.com/kailas-cloud/shopsearch/internal/usecase/product"
	semanticuc "github.com/kailas-cloud/shopsearch/internal/usecase/semantic"
	"github.com/kailas-cloud/shopsearch/internal/version"
)

// Components holds every long-lived dependency of the service.
type Components struct {
	Catalog   *catalog.Repo
	Index     *vectorindex.Gateway
	Sync      *indexsync.Service
	Products  *productuc.Service
	Filters   *dispatchuc.Service
	Semantic  *semanticuc.Service
	Assistant *assistantuc.Service
	Health    *healthuc.Service

	db     *gorm.DB
	store  *dbRedis.Store
	logger *zap.Logger
}

// Build connects to the catalog and the vector index and wires the usecases.
// The caller owns the result and must Close it.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Register()

	gdb, err := catalog.Open(catalog.Config{
		DSN:             cfg.Catalog.DSN,
		MaxOpenConns:    cfg.Catalog.MaxOpenConns,
		MaxIdleConns:    cfg.Catalog.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Catalog.ConnMaxLifetimeSec) * time.Second,
		SlowQuery:       time.Duration(cfg.Catalog.SlowQueryMs) * time.Millisecond,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if cfg.Catalog.AutoMigrate {
		if err := catalog.Migrate(ctx, gdb); err != nil {
			_ = catalog.Close(gdb)
			return nil, fmt.Errorf("migrate catalog: %w", err)
		}
		logger.Info("Catalog schema migrated")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.VectorIndex.Addrs,
		Username: cfg.VectorIndex.Username,
		Password: cfg.VectorIndex.Password,
		DB:       cfg.VectorIndex.DB,
	})
	if err != nil {
		_ = catalog.Close(gdb)
		return nil, fmt.Errorf("create vector store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.VectorIndex.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		_ = catalog.Close(gdb)
		return nil, fmt.Errorf("vector store not ready: %w", err)
	}
	logger.Info("Connected to vector store", zap.Strings("addrs", cfg.VectorIndex.Addrs))

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    cfg.Embedding.Timeout(),
		Logger:     logger,
	})
	embedder := buildEmbedder(base, cfg, store, logger)

	repo := catalog.New(gdb)
	index := vectorindex.New(store, embedder, vectorindex.Config{
		KeyPrefix:    cfg.VectorIndex.KeyPrefix,
		IndexName:    cfg.VectorIndex.IndexName,
		Dimensions:   cfg.Embedding.Dimensions,
		HNSWM:        cfg.VectorIndex.HNSWM,
		HNSWEF:       cfg.VectorIndex.HNSWEFConstruct,
		QueryTimeout: cfg.VectorIndex.QueryTimeout(),
		WriteTimeout: cfg.Sync.TaskTimeout(),
	}, logger)

	dispatcher := indexsync.NewDispatcher(indexsync.DispatcherConfig{
		Workers:     cfg.Sync.Workers,
		QueueSize:   cfg.Sync.QueueSize,
		TaskTimeout: cfg.Sync.TaskTimeout(),
	}, logger)
	syncSvc := indexsync.New(index, repo, dispatcher, indexsync.Config{
		BatchSize:  cfg.Sync.BatchSize,
		RunTimeout: cfg.Sync.RunTimeout(),
	}, logger)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     cfg.Generation.Timeout(),
		Logger:      logger,
	})

	semanticSvc := semanticuc.New(index, repo, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	assistantCfg := assistantuc.Config{
		Candidates:      cfg.Assistant.Candidates,
		Surfaced:        cfg.Assistant.Surfaced,
		MaxHistoryTurns: -1,
	}
	if cfg.Assistant.MaxHistoryTurns != nil {
		assistantCfg.MaxHistoryTurns = *cfg.Assistant.MaxHistoryTurns
	}

	return &Components{
		Catalog:   repo,
		Index:     index,
		Sync:      syncSvc,
		Products:  productuc.New(repo, syncSvc),
		Filters:   dispatchuc.New(repo),
		Semantic:  semanticSvc,
		Assistant: assistantuc.New(semanticSvc, generator, assistantCfg),
		Health:    healthuc.New(repo, index, newEmbeddingHealthChecker(base), generator),
		db:        gdb,
		store:     store,
		logger:    logger,
	}, nil
}

// Handler builds the HTTP surface over the components.
func (c *Components) Handler(adminKeys []string) http.Handler {
	return chiTransport.NewServer(chiTransport.Services{
		Products:  c.Products,
		Filters:   c.Filters,
		Semantic:  c.Semantic,
		Assistant: c.Assistant,
		Sync:      c.Sync,
		Health:    c.Health,
	}, adminKeys, c.logger).Handler()
}

// Close drains pending index writes and releases connections.
func (c *Components) Close(ctx context.Context) error {
	var errs []error
	if err := c.Sync.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain index sync: %w", err))
	}
	c.store.Close()
	if err := catalog.Close(c.db); err != nil {
		errs = append(errs, fmt.Errorf("close catalog: %w", err))
	}
	return errors.Join(errs...)
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, env string, logger *zap.Logger) error {
	logger.Info("Starting shopsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: env,
		Version:     version.Version,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	comps, err := Build(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		return err
	}

	// The API still serves catalog routes when the index cannot be prepared.
	if err := comps.Index.EnsureIndex(ctx); err != nil {
		logger.Error("Vector index not ready", zap.Error(err))
	}

	if len(nonEmpty(cfg.Auth.APIKeys)) == 0 {
		logger.Warn("No admin API keys configured, admin routes are open")
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           comps.Handler(cfg.Auth.APIKeys),
		ReadTimeout:       cfg.HTTP.ReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.HTTP.WriteTimeout(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := comps.Close(shutdownCtx); err != nil {
		logger.Error("Error releasing resources", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return runErr
}

// buildEmbedder assembles the decorator chain: provider -> cached -> instrumented.
func buildEmbedder(base domain.Embedder, cfg config.Config, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Options{
			KeyPrefix: cfg.VectorIndex.KeyPrefix,
			Model:     cfg.Embedding.Model,
			TTL:       cfg.Embedding.CacheTTL(),
		}, metrics.EmbeddingCacheTotal, logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)
}

// embeddingHealthChecker adapts domain.Embedder to health.ProviderChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

func nonEmpty(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
