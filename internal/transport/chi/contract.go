package chi

import (
	"context"

	domassist "github.com/kailas-cloud/shopsearch/internal/domain/assistant"
	dombatch "github.com/kailas-cloud/shopsearch/internal/domain/batch"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/criterion"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	"github.com/kailas-cloud/shopsearch/internal/usecase/indexsync"
)

// ProductService is the catalog CRUD surface.
//
//nolint:interfacebloat // one method per catalog endpoint
type ProductService interface {
	Create(ctx context.Context, a product.Attrs) (product.Product, error)
	Get(ctx context.Context, slug string) (product.Product, error)
	Update(ctx context.Context, slug string, a product.Attrs) (product.Product, error)
	Delete(ctx context.Context, slug string) (product.Product, error)
	List(ctx context.Context, limit int) ([]product.Product, error)
	SortedList(ctx context.Context, sort, order string, page int) ([]product.Product, error)
	Count(ctx context.Context) (int64, error)
	Rate(ctx context.Context, productID, userID string, star int) (product.Product, error)
	Related(ctx context.Context, productID string) ([]product.Product, error)
	InCategory(ctx context.Context, categoryID string) ([]product.Product, error)
	InSubCategory(ctx context.Context, subCategoryID string) ([]product.Product, error)
	AdjustInventory(ctx context.Context, ops []product.CounterDelta) (int, error)
}

// FilterDispatcher runs a decoded filter criterion.
type FilterDispatcher interface {
	Dispatch(ctx context.Context, c criterion.Criterion) ([]product.Product, error)
}

// SemanticSearcher runs similarity search.
type SemanticSearcher interface {
	Search(ctx context.Context, query string, k int) ([]result.Hit, error)
}

// Assistant answers chat questions.
type Assistant interface {
	Answer(ctx context.Context, query string, history []domassist.Turn) (domassist.Answer, error)
}

// Resyncer rebuilds the vector index from the catalog.
type Resyncer interface {
	SyncAll(ctx context.Context, progress indexsync.Progress) (dombatch.Summary, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
