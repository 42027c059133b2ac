// Package product implements catalog mutations and listings.
package product

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domprod "github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/logger"
)

// PerPage is the page size of SortedList.
const PerPage = 3

// Sort orders accepted by SortedList.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Service handles catalog CRUD. Mutations commit to the catalog first and then
// hand the change to the index sync without waiting for it.
type Service struct {
	repo  Repository
	index IndexSync
}

// New creates a product service.
func New(repo Repository, index IndexSync) *Service {
	return &Service{repo: repo, index: index}
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, a domprod.Attrs) (domprod.Product, error) {
	p, err := domprod.New(a)
	if err != nil {
		return domprod.Product{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("create product: %w", err)
	}
	s.index.OnCreate(ctx, created)
	logger.FromContext(ctx).Info("product created",
		zap.String("product_id", created.ID()),
		zap.String("slug", created.Slug()),
	)
	return created, nil
}

// Get returns a populated product by slug.
func (s *Service) Get(ctx context.Context, slug string) (domprod.Product, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("get product %q: %w", slug, err)
	}
	return p, nil
}

// Update replaces the attributes of the product with the given slug.
// The slug is regenerated from the new title.
func (s *Service) Update(ctx context.Context, slug string, a domprod.Attrs) (domprod.Product, error) {
	current, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("update product %q: %w", slug, err)
	}
	next, err := current.WithAttrs(a)
	if err != nil {
		return domprod.Product{}, err
	}
	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("update product %q: %w", slug, err)
	}
	s.index.OnUpdate(ctx, updated)
	return updated, nil
}

// Delete removes the product with the given slug and returns it.
func (s *Service) Delete(ctx context.Context, slug string) (domprod.Product, error) {
	deleted, err := s.repo.Delete(ctx, slug)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("delete product %q: %w", slug, err)
	}
	s.index.OnDelete(ctx, deleted.ID())
	logger.FromContext(ctx).Info("product deleted", zap.String("product_id", deleted.ID()))
	return deleted, nil
}

// List returns the newest products, at most limit.
func (s *Service) List(ctx context.Context, limit int) ([]domprod.Product, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: count must be non-negative", domain.ErrInvalidRequest)
	}
	ps, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return ps, nil
}

// SortedList returns one page of PerPage products. Empty sort and order default
// to createdAt and desc; page below 1 selects the first page.
func (s *Service) SortedList(ctx context.Context, sort, order string, page int) ([]domprod.Product, error) {
	if sort == "" {
		sort = "createdAt"
	}
	var desc bool
	switch strings.ToLower(order) {
	case "", OrderDesc:
		desc = true
	case OrderAsc:
	default:
		return nil, fmt.Errorf("%w: order must be %q or %q", domain.ErrInvalidRequest, OrderAsc, OrderDesc)
	}
	ps, err := s.repo.SortedList(ctx, sort, desc, max(page, 1), PerPage)
	if err != nil {
		return nil, fmt.Errorf("sorted list: %w", err)
	}
	return ps, nil
}

// Count returns the total number of products.
func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Rate adds or replaces the rating of userID. The caller is already authenticated.
func (s *Service) Rate(ctx context.Context, productID, userID string, star int) (domprod.Product, error) {
	if strings.TrimSpace(userID) == "" {
		return domprod.Product{}, fmt.Errorf("rate product: %w", domain.ErrUnauthorized)
	}
	if err := domprod.ValidateStar(star); err != nil {
		return domprod.Product{}, err
	}
	p, err := s.repo.UpsertRating(ctx, productID, userID, star)
	if err != nil {
		return domprod.Product{}, fmt.Errorf("rate product: %w", err)
	}
	return p, nil
}

// Related returns up to three products from the same category.
func (s *Service) Related(ctx context.Context, productID string) ([]domprod.Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	ps, err := s.repo.Related(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	return ps, nil
}

// InCategory lists the products of a category.
func (s *Service) InCategory(ctx context.Context, categoryID string) ([]domprod.Product, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, fmt.Errorf("%w: category id is required", domain.ErrInvalidRequest)
	}
	ps, err := s.repo.FindByCategories(ctx, []string{categoryID})
	if err != nil {
		return nil, fmt.Errorf("products in category %q: %w", categoryID, err)
	}
	return ps, nil
}

// InSubCategory lists the products tagged with a sub-category.
func (s *Service) InSubCategory(ctx context.Context, subCategoryID string) ([]domprod.Product, error) {
	if strings.TrimSpace(subCategoryID) == "" {
		return nil, fmt.Errorf("%w: sub-category id is required", domain.ErrInvalidRequest)
	}
	ps, err := s.repo.FindBySubCategory(ctx, subCategoryID)
	if err != nil {
		return nil, fmt.Errorf("products in sub-category %q: %w", subCategoryID, err)
	}
	return ps, nil
}

// AdjustInventory applies stock and sales deltas. Returns the number of matched products.
func (s *Service) AdjustInventory(ctx context.Context, ops []domprod.CounterDelta) (int, error) {
	if err := domprod.ValidateDeltas(ops); err != nil {
		return 0, err
	}
	n, err := s.repo.BulkUpdateCounters(ctx, ops)
	if err != nil {
		return 0, fmt.Errorf("adjust inventory: %w", err)
	}
	if n < len(ops) {
		logger.FromContext(ctx).Warn("inventory operations skipped unknown products",
			zap.Int("requested", len(ops)),
			zap.Int("matched", n),
		)
	}
	return n, nil
}
