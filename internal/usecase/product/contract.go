package product

import (
	"context"

	domprod "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/task"
)

// Repository is the primary catalog store.
//
//nolint:interfacebloat // catalog CRUD plus listings
type Repository interface {
	Create(ctx context.Context, p domprod.Product) (domprod.Product, error)
	Update(ctx context.Context, p domprod.Product) (domprod.Product, error)
	Delete(ctx context.Context, slug string) (domprod.Product, error)
	FindByID(ctx context.Context, id string) (domprod.Product, error)
	FindBySlug(ctx context.Context, slug string) (domprod.Product, error)
	List(ctx context.Context, limit int) ([]domprod.Product, error)
	SortedList(ctx context.Context, sortField string, desc bool, page, perPage int) ([]domprod.Product, error)
	Count(ctx context.Context) (int64, error)
	Related(ctx context.Context, p domprod.Product) ([]domprod.Product, error)
	FindByCategories(ctx context.Context, ids []string) ([]domprod.Product, error)
	FindBySubCategory(ctx context.Context, id string) ([]domprod.Product, error)
	UpsertRating(ctx context.Context, productID, userID string, star int) (domprod.Product, error)
	BulkUpdateCounters(ctx context.Context, ops []domprod.CounterDelta) (int, error)
}

// IndexSync receives committed mutations for the vector index (ISP).
type IndexSync interface {
	OnCreate(ctx context.Context, p domprod.Product) *task.Ticket
	OnUpdate(ctx context.Context, p domprod.Product) *task.Ticket
	OnDelete(ctx context.Context, id string) *task.Ticket
}
