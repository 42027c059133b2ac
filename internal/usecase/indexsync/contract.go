package indexsync

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/projection"
)

// IndexWriter writes retrieval documents to the vector index.
type IndexWriter interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, doc projection.Document) error
	Delete(ctx context.Context, id string) error
}

// CatalogPager walks the whole catalog page by page.
type CatalogPager interface {
	Count(ctx context.Context) (int64, error)
	FindInBatches(ctx context.Context, size int, fn func([]product.Product) error) error
}

// Progress receives resync progress. done counts processed products out of total.
type Progress func(done, total int)
