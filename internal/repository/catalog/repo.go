// Package catalog is the primary product store backed by gorm.
package catalog

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// RelatedLimit caps the related-products listing.
const RelatedLimit = 3

// Repo implements the catalog contracts of the product, dispatch, semantic and indexsync usecases.
type Repo struct {
	db *gorm.DB
}

// New creates a catalog repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// populated preloads category, sub-categories and rating authors.
func (r *Repo) populated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("SubCategories").
		Preload("Ratings", func(db *gorm.DB) *gorm.DB { return db.Order("ratings.id") }).
		Preload("Ratings.Rater")
}

// Create inserts a product with its sub-category links and returns the populated record.
func (r *Repo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	m, err := toModel(p)
	if err != nil {
		return product.Product{}, err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if rows := joinRows(m.ID, p.Attrs().SubCategoryIDs); len(rows) > 0 {
			return tx.Create(&rows).Error
		}
		return nil
	})
	if err != nil {
		return product.Product{}, mapErr("create product", err)
	}
	return r.FindByID(ctx, m.ID)
}

// Update replaces the attributes of an existing product. Sales counter and ratings are untouched.
func (r *Repo) Update(ctx context.Context, p product.Product) (product.Product, error) {
	m, err := toModel(p)
	if err != nil {
		return product.Product{}, err
	}
	m.UpdatedAt = time.Now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&productModel{ID: m.ID}).
			Select("title", "slug", "description", "price", "category_id",
				"quantity", "shipping", "color", "brand", "specifications", "updated_at").
			Updates(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("product_id = ?", m.ID).Delete(&productSubCategory{}).Error; err != nil {
			return err
		}
		if rows := joinRows(m.ID, p.Attrs().SubCategoryIDs); len(rows) > 0 {
			return tx.Create(&rows).Error
		}
		return nil
	})
	if err != nil {
		return product.Product{}, mapErr("update product "+m.ID, err)
	}
	return r.FindByID(ctx, m.ID)
}

// Delete removes the product identified by slug and returns its last state.
func (r *Repo) Delete(ctx context.Context, slug string) (product.Product, error) {
	p, err := r.FindBySlug(ctx, slug)
	if err != nil {
		return product.Product{}, err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", p.ID()).Delete(&ratingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID()).Delete(&productSubCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&productModel{ID: p.ID()}).Error
	})
	if err != nil {
		return product.Product{}, mapErr("delete product "+slug, err)
	}
	return p, nil
}

// FindByID returns a populated product.
func (r *Repo) FindByID(ctx context.Context, id string) (product.Product, error) {
	var m productModel
	if err := r.populated(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return product.Product{}, mapErr("find product "+id, err)
	}
	return toDomain(&m)
}

// FindBySlug returns a populated product.
func (r *Repo) FindBySlug(ctx context.Context, slug string) (product.Product, error) {
	var m productModel
	if err := r.populated(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		return product.Product{}, mapErr("find product "+slug, err)
	}
	return toDomain(&m)
}

// FindByIDs loads all given ids in one round trip. Unknown ids are skipped; order is unspecified.
func (r *Repo) FindByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []productModel
	if err := r.populated(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, mapErr("find products by ids", err)
	}
	return toDomainList(ms)
}

// List returns the newest products, at most limit.
func (r *Repo) List(ctx context.Context, limit int) ([]product.Product, error) {
	var ms []productModel
	q := r.populated(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, mapErr("list products", err)
	}
	return toDomainList(ms)
}

// SortedList returns one page of products ordered by sortField.
func (r *Repo) SortedList(ctx context.Context, sortField string, desc bool, page, perPage int) ([]product.Product, error) {
	column, ok := sortColumns[sortField]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort field %q", domain.ErrInvalidRequest, sortField)
	}
	if page < 1 {
		page = 1
	}

	var ms []productModel
	err := r.populated(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&ms).Error
	if err != nil {
		return nil, mapErr("sorted list", err)
	}
	return toDomainList(ms)
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"price":     "price",
	"sold":      "sold",
	"title":     "title",
	"quantity":  "quantity",
}

// Count returns the total number of products.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&productModel{}).Count(&n).Error; err != nil {
		return 0, mapErr("count products", err)
	}
	return n, nil
}

// Related returns up to RelatedLimit products of the same category, excluding p itself.
func (r *Repo) Related(ctx context.Context, p product.Product) ([]product.Product, error) {
	if p.Attrs().CategoryID == "" {
		return nil, nil
	}
	var ms []productModel
	err := r.populated(ctx).
		Where("category_id = ? AND id <> ?", p.Attrs().CategoryID, p.ID()).
		Limit(RelatedLimit).
		Find(&ms).Error
	if err != nil {
		return nil, mapErr("related products", err)
	}
	return toDomainList(ms)
}

// UpsertRating adds or replaces the rating of userID on a product.
func (r *Repo) UpsertRating(ctx context.Context, productID, userID string, star int) (product.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&productModel{}).Where("id = ?", productID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		rating := ratingModel{ProductID: productID, PostedBy: userID, Star: star}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "posted_by"}},
			DoUpdates: clause.AssignmentColumns([]string{"star"}),
		}).Create(&rating).Error
	})
	if err != nil {
		return product.Product{}, mapErr("rate product "+productID, err)
	}
	return r.FindByID(ctx, productID)
}

// BulkUpdateCounters applies stock and sales deltas in one transaction.
// Unknown product ids are skipped; the number of matched products is returned.
func (r *Repo) BulkUpdateCounters(ctx context.Context, ops []product.CounterDelta) (int, error) {
	matched := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			res := tx.Model(&productModel{}).
				Where("id = ?", op.ProductID).
				UpdateColumns(map[string]any{
					"quantity": gorm.Expr("quantity + ?", op.Quantity),
					"sold":     gorm.Expr("sold + ?", op.Sold),
				})
			if res.Error != nil {
				return res.Error
			}
			matched += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, mapErr("bulk update counters", err)
	}
	return matched, nil
}

// FindInBatches pages through the whole catalog in primary key order.
func (r *Repo) FindInBatches(ctx context.Context, size int, fn func([]product.Product) error) error {
	var (
		batch []productModel
		fnErr error
	)
	res := r.populated(ctx).FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
		ps, err := toDomainList(batch)
		if err != nil {
			return err
		}
		if err := fn(ps); err != nil {
			fnErr = err
			return err
		}
		return nil
	})
	if fnErr != nil {
		return fnErr
	}
	if res.Error != nil {
		return mapErr("find in batches", res.Error)
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping catalog: %w", err)
	}
	return nil
}
