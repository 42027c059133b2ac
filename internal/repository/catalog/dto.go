package catalog

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

type categoryModel struct {
	ID   string `gorm:"type:varchar(36);primaryKey"`
	Name string `gorm:"size:64;not null"`
	Slug string `gorm:"size:64;uniqueIndex;not null"`
}

func (categoryModel) TableName() string { return "categories" }

type subCategoryModel struct {
	ID       string `gorm:"type:varchar(36);primaryKey"`
	Name     string `gorm:"size:64;not null"`
	Slug     string `gorm:"size:64;uniqueIndex;not null"`
	ParentID string `gorm:"type:varchar(36);index"`
}

func (subCategoryModel) TableName() string { return "sub_categories" }

// raterModel maps the user records owned by the account service; only id and name are read.
type raterModel struct {
	ID   string `gorm:"type:varchar(36);primaryKey"`
	Name string `gorm:"size:128"`
}

func (raterModel) TableName() string { return "users" }

type ratingModel struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"`
	ProductID string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_product_user"`
	PostedBy  string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_ratings_product_user"`
	Star      int         `gorm:"not null"`
	Rater     *raterModel `gorm:"foreignKey:PostedBy;references:ID"`
	CreatedAt time.Time
}

func (ratingModel) TableName() string { return "ratings" }

// productSubCategory is a row of the product ↔ sub-category join table.
type productSubCategory struct {
	ProductID     string `gorm:"type:varchar(36);primaryKey"`
	SubCategoryID string `gorm:"type:varchar(36);primaryKey"`
}

func (productSubCategory) TableName() string { return "product_sub_categories" }

type productModel struct {
	ID             string             `gorm:"type:varchar(36);primaryKey"`
	Title          string             `gorm:"size:32;not null"`
	Slug           string             `gorm:"size:96;uniqueIndex;not null"`
	Description    string             `gorm:"size:2000;not null"`
	Price          float64            `gorm:"not null;index"`
	CategoryID     *string            `gorm:"type:varchar(36);index"`
	Category       *categoryModel     `gorm:"foreignKey:CategoryID"`
	SubCategories  []subCategoryModel `gorm:"many2many:product_sub_categories;joinForeignKey:ProductID;joinReferences:SubCategoryID"`
	Quantity       int                `gorm:"not null;default:0"`
	Sold           int                `gorm:"not null;default:0"`
	Shipping       string             `gorm:"size:3;index"`
	Color          string             `gorm:"size:16;index"`
	Brand          string             `gorm:"size:16;index"`
	Specifications datatypes.JSON
	Ratings        []ratingModel `gorm:"foreignKey:ProductID"`
	CreatedAt      time.Time     `gorm:"index"`
	UpdatedAt      time.Time
}

func (productModel) TableName() string { return "products" }

func toModel(p product.Product) (*productModel, error) {
	a := p.Attrs()
	m := &productModel{
		ID:          p.ID(),
		Title:       a.Title,
		Slug:        p.Slug(),
		Description: a.Description,
		Price:       a.Price,
		Quantity:    a.Quantity,
		Sold:        p.Sold(),
		Shipping:    a.Shipping,
		Color:       a.Color,
		Brand:       a.Brand,
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
	if a.CategoryID != "" {
		id := a.CategoryID
		m.CategoryID = &id
	}
	if a.Specifications != nil {
		raw, err := a.Specifications.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal specifications: %w", err)
		}
		m.Specifications = datatypes.JSON(raw)
	}
	return m, nil
}

func joinRows(productID string, subIDs []string) []productSubCategory {
	rows := make([]productSubCategory, 0, len(subIDs))
	seen := make(map[string]bool, len(subIDs))
	for _, id := range subIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, productSubCategory{ProductID: productID, SubCategoryID: id})
	}
	return rows
}

func toDomain(m *productModel) (product.Product, error) {
	var specs product.Specs
	if len(m.Specifications) > 0 {
		if err := specs.UnmarshalJSON(m.Specifications); err != nil {
			return product.Product{}, fmt.Errorf("product %s: decode specifications: %w", m.ID, err)
		}
	}

	s := product.Snapshot{
		ID:   m.ID,
		Slug: m.Slug,
		Attrs: product.Attrs{
			Title:          m.Title,
			Description:    m.Description,
			Price:          m.Price,
			Quantity:       m.Quantity,
			Shipping:       m.Shipping,
			Color:          m.Color,
			Brand:          m.Brand,
			Specifications: specs,
		},
		Sold:      m.Sold,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.CategoryID != nil {
		s.Attrs.CategoryID = *m.CategoryID
	}
	if m.Category != nil {
		s.Category = &product.Category{ID: m.Category.ID, Name: m.Category.Name, Slug: m.Category.Slug}
	}
	for _, sc := range m.SubCategories {
		s.Attrs.SubCategoryIDs = append(s.Attrs.SubCategoryIDs, sc.ID)
		s.SubCategories = append(s.SubCategories, product.SubCategory{
			ID: sc.ID, Name: sc.Name, Slug: sc.Slug, ParentID: sc.ParentID,
		})
	}
	for _, r := range m.Ratings {
		rating := product.Rating{Star: r.Star, PostedBy: r.PostedBy}
		if r.Rater != nil {
			rating.Rater = &product.Rater{ID: r.Rater.ID, Name: r.Rater.Name}
		}
		s.Ratings = append(s.Ratings, rating)
	}
	return product.Reconstruct(s), nil
}

func toDomainList(ms []productModel) ([]product.Product, error) {
	out := make([]product.Product, 0, len(ms))
	for i := range ms {
		p, err := toDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
