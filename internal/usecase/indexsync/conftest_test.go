package indexsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/projection"
)

type call struct {
	op  string
	doc projection.Document
	id  string
}

// mockIndex records writes in execution order.
type mockIndex struct {
	mu        sync.Mutex
	calls     []call
	ensureErr error
	upsertFn  func(ctx context.Context, doc projection.Document) error
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockIndex) EnsureIndex(_ context.Context) error { return m.ensureErr }

func (m *mockIndex) Upsert(ctx context.Context, doc projection.Document) error {
	m.mu.Lock()
	m.calls = append(m.calls, call{op: "upsert", doc: doc, id: doc.ID})
	m.mu.Unlock()
	if m.upsertFn != nil {
		return m.upsertFn(ctx, doc)
	}
	return nil
}

func (m *mockIndex) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.calls = append(m.calls, call{op: "delete", id: id})
	m.mu.Unlock()
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockIndex) snapshot() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]call(nil), m.calls...)
}

type mockPager struct {
	products []product.Product
	countErr error
}

func (m *mockPager) Count(_ context.Context) (int64, error) {
	return int64(len(m.products)), m.countErr
}

func (m *mockPager) FindInBatches(ctx context.Context, size int, fn func([]product.Product) error) error {
	for i := 0; i < len(m.products); i += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+size, len(m.products))
		if err := fn(m.products[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func newProduct(t *testing.T, title string) product.Product {
	t.Helper()
	p, err := product.New(product.Attrs{Title: title, Description: title + " description", Price: 10})
	if err != nil {
		t.Fatalf("new product: %v", err)
	}
	return p
}

func newTestService(t *testing.T, idx *mockIndex, pager *mockPager) *Service {
	t.Helper()
	d := NewDispatcher(DispatcherConfig{Workers: 4, QueueSize: 64, TaskTimeout: time.Second}, zap.NewNop())
	svc := New(idx, pager, d, Config{BatchSize: 2}, zap.NewNop())
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
