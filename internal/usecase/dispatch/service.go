// Package dispatch routes a filter search to exactly one catalog query.
package dispatch

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/criterion"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

var tracer = otel.Tracer("github.com/kailas-cloud/shopsearch/internal/usecase/dispatch")

// Service is the filter dispatch engine. It holds no state.
type Service struct {
	catalog Catalog
}

// New creates a dispatch service.
func New(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Dispatch runs the catalog query selected by c.
func (s *Service) Dispatch(ctx context.Context, c criterion.Criterion) ([]product.Product, error) {
	ctx, span := tracer.Start(ctx, "dispatch.Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("search.strategy", string(c.Kind())))

	metrics.FilterDispatchTotal.WithLabelValues(string(c.Kind())).Inc()

	var (
		ps  []product.Product
		err error
	)
	switch c.Kind() {
	case criterion.KindQuery:
		ps, err = s.catalog.SearchText(ctx, c.Text())
	case criterion.KindPrice:
		lo, hi := c.PriceRange()
		ps, err = s.catalog.FindByPriceRange(ctx, lo, hi)
	case criterion.KindCategory:
		ps, err = s.catalog.FindByCategories(ctx, c.CategoryIDs())
	case criterion.KindStars:
		ps, err = s.catalog.FindByStarBucket(ctx, c.Stars())
	case criterion.KindSubCategory:
		ps, err = s.catalog.FindBySubCategory(ctx, c.Text())
	case criterion.KindShipping:
		ps, err = s.catalog.FindByShipping(ctx, c.Text())
	case criterion.KindColor:
		ps, err = s.catalog.FindByColor(ctx, c.Text())
	case criterion.KindBrand:
		ps, err = s.catalog.FindByBrand(ctx, c.Text())
	default:
		ps, err = s.catalog.FindAll(ctx)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dispatch %s: %w", c.Kind(), err)
	}
	span.SetAttributes(attribute.Int("search.results", len(ps)))
	return ps, nil
}
