package indexsync

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain/task"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// ErrQueueFull is recorded on the ticket of a task dropped because its shard queue was full.
var ErrQueueFull = errors.New("index sync queue full")

// ErrClosed is recorded on the ticket of a task submitted after Close.
var ErrClosed = errors.New("index sync dispatcher closed")

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

type job struct {
	op     string
	id     string
	base   context.Context
	fn     func(ctx context.Context) error
	ticket *task.Ticket
}

// Dispatcher runs index writes on background workers.
// Jobs with the same key always land on the same worker, so they run in submission order.
type Dispatcher struct {
	mu      sync.RWMutex
	closed  bool
	shards  []chan job
	timeout time.Duration
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// NewDispatcher starts the workers.
func NewDispatcher(cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	d := &Dispatcher{
		shards:  make([]chan job, cfg.Workers),
		timeout: cfg.TaskTimeout,
		logger:  logger,
	}
	for i := range d.shards {
		ch := make(chan job, cfg.QueueSize)
		d.shards[i] = ch
		d.wg.Add(1)
		go d.worker(ch)
	}
	return d
}

// Submit enqueues fn without blocking. The task runs on a context detached from ctx's cancellation.
// A full queue drops the task: the ticket completes with ErrQueueFull.
func (d *Dispatcher) Submit(ctx context.Context, op, key string, fn func(ctx context.Context) error) *task.Ticket {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return task.Completed(ErrClosed)
	}

	j := job{op: op, id: key, base: context.WithoutCancel(ctx), fn: fn, ticket: task.NewTicket()}
	metrics.IndexSyncQueueDepth.Inc()
	select {
	case d.shards[d.shard(key)] <- j:
		return j.ticket
	default:
		metrics.IndexSyncQueueDepth.Dec()
		metrics.IndexSyncTasksTotal.WithLabelValues(op, "dropped").Inc()
		d.logger.Warn("Index sync queue full, task dropped",
			zap.String("op", op),
			zap.String("product_id", key),
		)
		j.ticket.Finish(ErrQueueFull)
		return j.ticket
	}
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.shards {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) shard(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) worker(ch <-chan job) {
	defer d.wg.Done()
	for j := range ch {
		metrics.IndexSyncQueueDepth.Dec()
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	ctx := logpkg.With(j.base, zap.String("index_op", j.op), zap.String("product_id", j.id))
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := safeCall(ctx, j.fn)
	metrics.IndexSyncDuration.WithLabelValues(j.op).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.IndexSyncTasksTotal.WithLabelValues(j.op, "error").Inc()
		d.logger.Error("Index sync task failed",
			zap.String("op", j.op),
			zap.String("product_id", j.id),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	} else {
		metrics.IndexSyncTasksTotal.WithLabelValues(j.op, "ok").Inc()
	}
	j.ticket.Finish(err)
}

func safeCall(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in index sync task: %v", r)
		}
	}()
	return fn(ctx)
}
