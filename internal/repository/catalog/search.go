package catalog

import (
	"context"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// SearchText runs lexical search over title and description. A product matches when any term matches.
// PostgreSQL uses the english full-text configuration ranked by ts_rank; other dialects fall back to LIKE.
func (r *Repo) SearchText(ctx context.Context, text string) ([]product.Product, error) {
	terms := searchTerms(text)
	if len(terms) == 0 {
		return nil, nil
	}

	q := r.populated(ctx)
	if isPostgres(r.db) {
		const doc = "to_tsvector('english', title || ' ' || description)"
		tsq := strings.Join(terms, " | ")
		q = q.Where(doc+" @@ to_tsquery('english', ?)", tsq).
			Order(clause.OrderBy{Expression: clause.Expr{
				SQL:                "ts_rank(" + doc + ", to_tsquery('english', ?)) DESC",
				Vars:               []any{tsq},
				WithoutParentheses: true,
			}})
	} else {
		var (
			conds []string
			args  []any
		)
		for _, t := range terms {
			like := "%" + t + "%"
			conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
			args = append(args, like, like)
		}
		q = q.Where(strings.Join(conds, " OR "), args...).Order("created_at DESC")
	}

	var ms []productModel
	if err := q.Find(&ms).Error; err != nil {
		return nil, mapErr("search text", err)
	}
	return toDomainList(ms)
}

// searchTerms lower-cases the query and splits it into alphanumeric terms.
func searchTerms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// FindByPriceRange returns products with min ≤ price ≤ max.
func (r *Repo) FindByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]product.Product, error) {
	return r.find(ctx, "find by price", func(q *gorm.DB) *gorm.DB {
		return q.Where("price BETWEEN ? AND ?", minPrice, maxPrice)
	})
}

// FindByCategories returns products whose category is one of ids.
func (r *Repo) FindByCategories(ctx context.Context, ids []string) ([]product.Product, error) {
	return r.find(ctx, "find by categories", func(q *gorm.DB) *gorm.DB {
		return q.Where("category_id IN ?", ids)
	})
}

// FindByStarBucket returns products whose mean rating lies in [bucket, bucket+1).
// Unrated products never match.
func (r *Repo) FindByStarBucket(ctx context.Context, bucket int) ([]product.Product, error) {
	return r.find(ctx, "find by stars", func(q *gorm.DB) *gorm.DB {
		rated := r.db.Model(&ratingModel{}).
			Select("product_id").
			Group("product_id").
			Having("AVG(star) >= ? AND AVG(star) < ?", bucket, bucket+1)
		return q.Where("id IN (?)", rated)
	})
}

// FindBySubCategory returns products linked to the sub-category.
func (r *Repo) FindBySubCategory(ctx context.Context, id string) ([]product.Product, error) {
	return r.find(ctx, "find by sub-category", func(q *gorm.DB) *gorm.DB {
		linked := r.db.Model(&productSubCategory{}).Select("product_id").Where("sub_category_id = ?", id)
		return q.Where("id IN (?)", linked)
	})
}

// FindByShipping returns products with the given shipping flag.
func (r *Repo) FindByShipping(ctx context.Context, shipping string) ([]product.Product, error) {
	return r.findEq(ctx, "shipping", shipping)
}

// FindByColor returns products of the given color.
func (r *Repo) FindByColor(ctx context.Context, color string) ([]product.Product, error) {
	return r.findEq(ctx, "color", color)
}

// FindByBrand returns products of the given brand.
func (r *Repo) FindByBrand(ctx context.Context, brand string) ([]product.Product, error) {
	return r.findEq(ctx, "brand", brand)
}

// FindAll returns every product, newest first.
func (r *Repo) FindAll(ctx context.Context) ([]product.Product, error) {
	return r.List(ctx, 0)
}

func (r *Repo) findEq(ctx context.Context, column, value string) ([]product.Product, error) {
	return r.find(ctx, "find by "+column, func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" = ?", value)
	})
}

func (r *Repo) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]product.Product, error) {
	var ms []productModel
	if err := scope(r.populated(ctx)).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, mapErr(op, err)
	}
	return toDomainList(ms)
}
