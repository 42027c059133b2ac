package semantic

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/neighbor"
)

// Index is the nearest-neighbor side of retrieval (ISP).
type Index interface {
	Query(ctx context.Context, text string, k int) ([]neighbor.Neighbor, error)
}

// Catalog hydrates neighbor ids into full products (ISP).
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) ([]product.Product, error)
	FindAll(ctx context.Context) ([]product.Product, error)
}
