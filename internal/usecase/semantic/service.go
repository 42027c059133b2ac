// Package semantic implements similarity retrieval with rank-preserving hydration.
package semantic

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/neighbor"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// Result limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var tracer = otel.Tracer("github.com/kailas-cloud/shopsearch/internal/usecase/semantic")

// Service runs semantic search over the vector index and hydrates hits from the catalog.
type Service struct {
	index        Index
	catalog      Catalog
	defaultLimit int
	maxLimit     int
}

// New creates a semantic search service. Non-positive limits fall back to the package defaults.
func New(index Index, catalog Catalog, defaultLimit, maxLimit int) *Service {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultLimit, maxLimit)
	}
	return &Service{
		index:        index,
		catalog:      catalog,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Search returns up to k catalog products in nearest-first order.
// A blank query lists the whole catalog unranked. k = 0 selects the default limit.
func (s *Service) Search(ctx context.Context, query string, k int) ([]result.Hit, error) {
	if k == 0 {
		k = s.defaultLimit
	}
	if k < 1 || k > s.maxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidRequest, s.maxLimit)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return s.listAll(ctx)
	}

	ctx, span := tracer.Start(ctx, "semantic.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("search.k", k))

	neighbors, err := s.index.Query(ctx, query, k)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	if len(neighbors) == 0 {
		return []result.Hit{}, nil
	}

	products, err := s.catalog.FindByIDs(ctx, neighbor.IDs(neighbors))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("hydrate hits: %w", err)
	}

	hits := hydrate(ctx, neighbors, products)
	span.SetAttributes(
		attribute.Int("search.neighbors", len(neighbors)),
		attribute.Int("search.hits", len(hits)),
	)
	return hits, nil
}

func (s *Service) listAll(ctx context.Context) ([]result.Hit, error) {
	products, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	hits := make([]result.Hit, len(products))
	for i, p := range products {
		hits[i] = result.Unranked(p)
	}
	return hits, nil
}

// hydrate orders products by neighbor rank. Ids missing from the catalog are dropped.
func hydrate(ctx context.Context, neighbors []neighbor.Neighbor, products []product.Product) []result.Hit {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID()] = p
	}

	hits := make([]result.Hit, 0, len(neighbors))
	for _, n := range neighbors {
		p, ok := byID[n.ID()]
		if !ok {
			metrics.SemanticDriftTotal.Inc()
			logger.FromContext(ctx).Debug("vector hit not in catalog",
				zap.String("product_id", n.ID()),
				zap.Error(domain.ErrStoreDrift),
			)
			continue
		}
		hits = append(hits, result.New(p, n.Distance()))
	}
	return hits
}
