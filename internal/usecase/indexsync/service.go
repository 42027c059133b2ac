// Package indexsync keeps the vector index consistent with the product catalog.
package indexsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	dombatch "github.com/kailas-cloud/shopsearch/internal/domain/batch"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/projection"
	"github.com/kailas-cloud/shopsearch/internal/domain/task"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// Task operation labels.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// SyncAll defaults.
const (
	DefaultBatchSize  = 100
	DefaultRunTimeout = time.Hour
)

// Config holds catalog resync settings.
type Config struct {
	BatchSize  int
	RunTimeout time.Duration // bounds one shared SyncAll run
}

var tracer = otel.Tracer("github.com/kailas-cloud/shopsearch/internal/usecase/indexsync")

// Service is the consistency manager between the catalog and the vector index.
// Mutation hooks are fire-and-forget: failures are logged and counted, never retried or returned.
type Service struct {
	index      IndexWriter
	catalog    CatalogPager
	dispatcher *Dispatcher
	cfg        Config
	sf         singleflight.Group
	logger     *zap.Logger

	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// New creates the consistency manager.
func New(index IndexWriter, catalog CatalogPager, dispatcher *Dispatcher, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultRunTimeout
	}
	return &Service{
		index:      index,
		catalog:    catalog,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// OnCreate indexes a newly committed product in the background.
func (s *Service) OnCreate(ctx context.Context, p product.Product) *task.Ticket {
	doc := projection.Project(p)
	return s.dispatcher.Submit(ctx, OpCreate, doc.ID, func(ctx context.Context) error {
		return s.index.Upsert(ctx, doc)
	})
}

// OnUpdate replaces the index entry: delete, then upsert the regenerated document.
// A failed delete aborts the task so the entry is never patched in place.
func (s *Service) OnUpdate(ctx context.Context, p product.Product) *task.Ticket {
	doc := projection.Project(p)
	return s.dispatcher.Submit(ctx, OpUpdate, doc.ID, func(ctx context.Context) error {
		if err := s.index.Delete(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete stale entry: %w", err)
		}
		return s.index.Upsert(ctx, doc)
	})
}

// OnDelete removes the index entry. An entry that was never indexed is not an error.
func (s *Service) OnDelete(ctx context.Context, id string) *task.Ticket {
	return s.dispatcher.Submit(ctx, OpDelete, id, func(ctx context.Context) error {
		return s.index.Delete(ctx, id)
	})
}

// Resync upserts every product sequentially. Item failures are counted and skipped.
// Cancellation stops the loop and returns a partial summary with Cancelled set.
func (s *Service) Resync(ctx context.Context, products []product.Product) dombatch.Summary {
	results := make([]dombatch.Result, 0, len(products))
	for _, p := range products {
		if ctx.Err() != nil {
			sum := dombatch.Summarize(results, len(products))
			sum.Cancelled = true
			return sum
		}
		results = append(results, s.resyncOne(ctx, p))
	}
	return dombatch.Summarize(results, len(products))
}

func (s *Service) resyncOne(ctx context.Context, p product.Product) dombatch.Result {
	err := s.index.Upsert(ctx, projection.Project(p))
	if err != nil {
		metrics.ResyncItemsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Resync item failed", zap.String("product_id", p.ID()), zap.Error(err))
		return dombatch.Failed(p.ID(), err)
	}
	metrics.ResyncItemsTotal.WithLabelValues("ok").Inc()
	return dombatch.Indexed(p.ID())
}

// SyncAll ensures the index exists and resyncs the whole catalog page by page.
// Concurrent callers share the run started first, including its progress callback.
// The run is detached from the callers' cancellation and bounded by Config.RunTimeout;
// a caller whose ctx ends stops waiting and gets ctx.Err(). Abort or Close stops the
// run early, and every waiting caller receives the partial summary with Cancelled set.
// progress may be nil.
func (s *Service) SyncAll(ctx context.Context, progress Progress) (dombatch.Summary, error) {
	ch := s.sf.DoChan("sync-all", func() (any, error) {
		runCtx, cancel := s.startRun(ctx)
		defer cancel()
		return s.syncAll(runCtx, progress)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Info("Shared catalog resync finished")
		}
		if res.Err != nil {
			return dombatch.Summary{}, res.Err
		}
		return res.Val.(dombatch.Summary), nil
	case <-ctx.Done():
		s.logger.Info("Stopped waiting for catalog resync", zap.Error(ctx.Err()))
		return dombatch.Summary{}, fmt.Errorf("wait for resync: %w", ctx.Err())
	}
}

// Abort cancels the running SyncAll, if any.
func (s *Service) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
}

func (s *Service) startRun(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RunTimeout)
	s.mu.Lock()
	s.cancelRun = cancel
	s.mu.Unlock()
	return runCtx, func() {
		s.mu.Lock()
		s.cancelRun = nil
		s.mu.Unlock()
		cancel()
	}
}

func (s *Service) syncAll(ctx context.Context, progress Progress) (dombatch.Summary, error) {
	ctx, span := tracer.Start(ctx, "indexsync.SyncAll")
	defer span.End()

	start := time.Now()
	if err := s.index.EnsureIndex(ctx); err != nil {
		span.RecordError(err)
		return dombatch.Summary{}, fmt.Errorf("ensure index: %w", err)
	}

	total, err := s.catalog.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return dombatch.Summary{}, fmt.Errorf("count catalog: %w", err)
	}

	var sum dombatch.Summary
	err = s.catalog.FindInBatches(ctx, s.cfg.BatchSize, func(page []product.Product) error {
		sum = sum.Add(s.Resync(ctx, page))
		if progress != nil {
			progress(sum.Processed(), int(total))
		}
		if sum.Cancelled {
			return ctx.Err()
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		span.RecordError(err)
		return sum, fmt.Errorf("page catalog: %w", err)
	}
	if ctx.Err() != nil {
		sum.Cancelled = true
	}
	sum.Total = max(sum.Total, int(total))

	span.SetAttributes(
		attribute.Int("resync.succeeded", sum.Succeeded),
		attribute.Int("resync.failed", sum.Failed),
		attribute.Bool("resync.cancelled", sum.Cancelled),
	)
	s.logger.Info("Catalog resync finished",
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Int("total", sum.Total),
		zap.Bool("cancelled", sum.Cancelled),
		zap.Duration("duration", time.Since(start)),
	)
	return sum, nil
}

// Close aborts a running SyncAll and drains queued index writes.
func (s *Service) Close(ctx context.Context) error {
	s.Abort()
	return s.dispatcher.Close(ctx)
}
