package product

import (
	"context"
	"sync"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domprod "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/task"
)

// mockRepo is an in-memory catalog keyed by slug. Unset fn fields use the map.
type mockRepo struct {
	bySlug map[string]domprod.Product

	createFn     func(ctx context.Context, p domprod.Product) (domprod.Product, error)
	sortedListFn func(ctx context.Context, sortField string, desc bool, page, perPage int) ([]domprod.Product, error)
	relatedFn    func(ctx context.Context, p domprod.Product) ([]domprod.Product, error)
	rateFn       func(ctx context.Context, productID, userID string, star int) (domprod.Product, error)
	countersFn   func(ctx context.Context, ops []domprod.CounterDelta) (int, error)
	listFn       func(ctx context.Context, limit int) ([]domprod.Product, error)
	categoriesFn func(ctx context.Context, ids []string) ([]domprod.Product, error)
	subFn        func(ctx context.Context, id string) ([]domprod.Product, error)
}

func newMockRepo() *mockRepo {
	return &mockRepo{bySlug: map[string]domprod.Product{}}
}

func (m *mockRepo) Create(ctx context.Context, p domprod.Product) (domprod.Product, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	if _, ok := m.bySlug[p.Slug()]; ok {
		return domprod.Product{}, domain.ErrAlreadyExists
	}
	m.bySlug[p.Slug()] = p
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p domprod.Product) (domprod.Product, error) {
	for slug, cur := range m.bySlug {
		if cur.ID() == p.ID() {
			delete(m.bySlug, slug)
			m.bySlug[p.Slug()] = p
			return p, nil
		}
	}
	return domprod.Product{}, domain.ErrProductNotFound
}

func (m *mockRepo) Delete(_ context.Context, slug string) (domprod.Product, error) {
	p, ok := m.bySlug[slug]
	if !ok {
		return domprod.Product{}, domain.ErrProductNotFound
	}
	delete(m.bySlug, slug)
	return p, nil
}

func (m *mockRepo) FindByID(_ context.Context, id string) (domprod.Product, error) {
	for _, p := range m.bySlug {
		if p.ID() == id {
			return p, nil
		}
	}
	return domprod.Product{}, domain.ErrProductNotFound
}

func (m *mockRepo) FindBySlug(_ context.Context, slug string) (domprod.Product, error) {
	p, ok := m.bySlug[slug]
	if !ok {
		return domprod.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (m *mockRepo) List(ctx context.Context, limit int) ([]domprod.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockRepo) SortedList(ctx context.Context, sortField string, desc bool, page, perPage int) ([]domprod.Product, error) {
	if m.sortedListFn != nil {
		return m.sortedListFn(ctx, sortField, desc, page, perPage)
	}
	return nil, nil
}

func (m *mockRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.bySlug)), nil
}

func (m *mockRepo) Related(ctx context.Context, p domprod.Product) ([]domprod.Product, error) {
	if m.relatedFn != nil {
		return m.relatedFn(ctx, p)
	}
	return nil, nil
}

func (m *mockRepo) FindByCategories(ctx context.Context, ids []string) ([]domprod.Product, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockRepo) FindBySubCategory(ctx context.Context, id string) ([]domprod.Product, error) {
	if m.subFn != nil {
		return m.subFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRepo) UpsertRating(ctx context.Context, productID, userID string, star int) (domprod.Product, error) {
	if m.rateFn != nil {
		return m.rateFn(ctx, productID, userID, star)
	}
	return m.FindByID(ctx, productID)
}

func (m *mockRepo) BulkUpdateCounters(ctx context.Context, ops []domprod.CounterDelta) (int, error) {
	if m.countersFn != nil {
		return m.countersFn(ctx, ops)
	}
	return len(ops), nil
}

type syncCall struct {
	op string
	id string
}

// mockSync records index hand-offs and returns completed tickets.
type mockSync struct {
	mu    sync.Mutex
	calls []syncCall
}

func (m *mockSync) record(op, id string) *task.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, syncCall{op: op, id: id})
	return task.Completed(nil)
}

func (m *mockSync) OnCreate(_ context.Context, p domprod.Product) *task.Ticket {
	return m.record("create", p.ID())
}

func (m *mockSync) OnUpdate(_ context.Context, p domprod.Product) *task.Ticket {
	return m.record("update", p.ID())
}

func (m *mockSync) OnDelete(_ context.Context, id string) *task.Ticket {
	return m.record("delete", id)
}

func validAttrs(title string) domprod.Attrs {
	return domprod.Attrs{
		Title:       title,
		Description: "A fine product",
		Price:       100,
		Quantity:    5,
		Shipping:    domprod.ShippingYes,
		Color:       "Black",
		Brand:       "Dell",
	}
}
