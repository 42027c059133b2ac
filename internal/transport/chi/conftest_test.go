package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domassist "github.com/kailas-cloud/shopsearch/internal/domain/assistant"
	dombatch "github.com/kailas-cloud/shopsearch/internal/domain/batch"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/criterion"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	"github.com/kailas-cloud/shopsearch/internal/usecase/indexsync"
)

type mockProducts struct {
	createFn    func(ctx context.Context, a product.Attrs) (product.Product, error)
	getFn       func(ctx context.Context, slug string) (product.Product, error)
	updateFn    func(ctx context.Context, slug string, a product.Attrs) (product.Product, error)
	deleteFn    func(ctx context.Context, slug string) (product.Product, error)
	listFn      func(ctx context.Context, limit int) ([]product.Product, error)
	sortedFn    func(ctx context.Context, sort, order string, page int) ([]product.Product, error)
	countFn     func(ctx context.Context) (int64, error)
	rateFn      func(ctx context.Context, productID, userID string, star int) (product.Product, error)
	relatedFn   func(ctx context.Context, productID string) ([]product.Product, error)
	categoryFn  func(ctx context.Context, categoryID string) ([]product.Product, error)
	subFn       func(ctx context.Context, subCategoryID string) ([]product.Product, error)
	inventoryFn func(ctx context.Context, ops []product.CounterDelta) (int, error)
}

func (m *mockProducts) Create(ctx context.Context, a product.Attrs) (product.Product, error) {
	return m.createFn(ctx, a)
}

func (m *mockProducts) Get(ctx context.Context, slug string) (product.Product, error) {
	return m.getFn(ctx, slug)
}

func (m *mockProducts) Update(ctx context.Context, slug string, a product.Attrs) (product.Product, error) {
	return m.updateFn(ctx, slug, a)
}

func (m *mockProducts) Delete(ctx context.Context, slug string) (product.Product, error) {
	return m.deleteFn(ctx, slug)
}

func (m *mockProducts) List(ctx context.Context, limit int) ([]product.Product, error) {
	return m.listFn(ctx, limit)
}

func (m *mockProducts) SortedList(ctx context.Context, sort, order string, page int) ([]product.Product, error) {
	return m.sortedFn(ctx, sort, order, page)
}

func (m *mockProducts) Count(ctx context.Context) (int64, error) {
	return m.countFn(ctx)
}

func (m *mockProducts) Rate(ctx context.Context, productID, userID string, star int) (product.Product, error) {
	return m.rateFn(ctx, productID, userID, star)
}

func (m *mockProducts) Related(ctx context.Context, productID string) ([]product.Product, error) {
	return m.relatedFn(ctx, productID)
}

func (m *mockProducts) InCategory(ctx context.Context, categoryID string) ([]product.Product, error) {
	return m.categoryFn(ctx, categoryID)
}

func (m *mockProducts) InSubCategory(ctx context.Context, subCategoryID string) ([]product.Product, error) {
	return m.subFn(ctx, subCategoryID)
}

func (m *mockProducts) AdjustInventory(ctx context.Context, ops []product.CounterDelta) (int, error) {
	return m.inventoryFn(ctx, ops)
}

type mockFilters struct {
	dispatchFn func(ctx context.Context, c criterion.Criterion) ([]product.Product, error)
}

func (m *mockFilters) Dispatch(ctx context.Context, c criterion.Criterion) ([]product.Product, error) {
	return m.dispatchFn(ctx, c)
}

type mockSemantic struct {
	searchFn func(ctx context.Context, query string, k int) ([]result.Hit, error)
}

func (m *mockSemantic) Search(ctx context.Context, query string, k int) ([]result.Hit, error) {
	return m.searchFn(ctx, query, k)
}

type mockAssistant struct {
	answerFn func(ctx context.Context, query string, history []domassist.Turn) (domassist.Answer, error)
}

func (m *mockAssistant) Answer(ctx context.Context, query string, history []domassist.Turn) (domassist.Answer, error) {
	return m.answerFn(ctx, query, history)
}

type mockSync struct {
	syncFn func(ctx context.Context, progress indexsync.Progress) (dombatch.Summary, error)
}

func (m *mockSync) SyncAll(ctx context.Context, progress indexsync.Progress) (dombatch.Summary, error) {
	return m.syncFn(ctx, progress)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type fixture struct {
	products  *mockProducts
	filters   *mockFilters
	semantic  *mockSemantic
	assistant *mockAssistant
	sync      *mockSync
	health    *mockHealth
	handler   http.Handler
}

func newFixture(t *testing.T, adminKeys ...string) *fixture {
	t.Helper()
	f := &fixture{
		products:  &mockProducts{},
		filters:   &mockFilters{},
		semantic:  &mockSemantic{},
		assistant: &mockAssistant{},
		sync:      &mockSync{},
		health:    &mockHealth{},
	}
	srv := NewServer(Services{
		Products:  f.products,
		Filters:   f.filters,
		Semantic:  f.semantic,
		Assistant: f.assistant,
		Sync:      f.sync,
		Health:    f.health,
	}, adminKeys, nil)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func sampleProduct(title string) product.Product {
	return product.Reconstruct(product.Snapshot{
		ID:   "id-" + title,
		Slug: strings.ToLower(title),
		Attrs: product.Attrs{
			Title:       title,
			Description: title + " description",
			Price:       10,
			Brand:       "Dell",
		},
		Category: &product.Category{ID: "c-1", Name: "Laptops", Slug: "laptops"},
		Ratings: []product.Rating{
			{Star: 4, PostedBy: "u-1", Rater: &product.Rater{ID: "u-1", Name: "Ann"}},
		},
	})
}
