package dispatch

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// Catalog is the set of catalog queries a criterion can route to.
//
//nolint:interfacebloat // one method per retrieval strategy
type Catalog interface {
	SearchText(ctx context.Context, text string) ([]product.Product, error)
	FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]product.Product, error)
	FindByCategories(ctx context.Context, ids []string) ([]product.Product, error)
	FindByStarBucket(ctx context.Context, bucket int) ([]product.Product, error)
	FindBySubCategory(ctx context.Context, id string) ([]product.Product, error)
	FindByShipping(ctx context.Context, shipping string) ([]product.Product, error)
	FindByColor(ctx context.Context, color string) ([]product.Product, error)
	FindByBrand(ctx context.Context, brand string) ([]product.Product, error)
	FindAll(ctx context.Context) ([]product.Product, error)
}
