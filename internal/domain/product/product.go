package product

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Shipping flag values.
const (
	ShippingYes = "Yes"
	ShippingNo  = "No"
)

// Field limits.
const (
	MaxTitleLen       = 32
	MaxDescriptionLen = 2000
	MinStar           = 1
	MaxStar           = 5
)

var (
	// Colors lists the accepted color values.
	Colors = []string{"Black", "Brown", "Silver", "White", "Blue"}
	// Brands lists the accepted brand values.
	Brands = []string{"Apple", "Samsung", "Microsoft", "Lenovo", "Asus", "Dell"}
)

// Category is a hydrated category reference.
type Category struct {
	ID   string
	Name string
	Slug string
}

// SubCategory is a hydrated sub-category reference.
type SubCategory struct {
	ID       string
	Name     string
	Slug     string
	ParentID string
}

// Rater is a hydrated rating author.
type Rater struct {
	ID   string
	Name string
}

// Rating is a single star rating left by a user.
type Rating struct {
	Star     int
	PostedBy string
	Rater    *Rater // nil when the author was not populated
}

// Attrs holds the client-supplied product attributes.
type Attrs struct {
	Title          string
	Description    string
	Price          float64
	CategoryID     string
	SubCategoryIDs []string
	Quantity       int
	Shipping       string
	Color          string
	Brand          string
	Specifications Specs
}

// Validate checks field limits and enum values.
func (a Attrs) Validate() error {
	title := strings.TrimSpace(a.Title)
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidRequest)
	case utf8.RuneCountInString(title) > MaxTitleLen:
		return fmt.Errorf("%w: title too long (max %d)", domain.ErrInvalidRequest, MaxTitleLen)
	case strings.TrimSpace(a.Description) == "":
		return fmt.Errorf("%w: description is required", domain.ErrInvalidRequest)
	case utf8.RuneCountInString(a.Description) > MaxDescriptionLen:
		return fmt.Errorf("%w: description too long (max %d)", domain.ErrInvalidRequest, MaxDescriptionLen)
	case a.Price < 0 || math.IsNaN(a.Price) || math.IsInf(a.Price, 0):
		return fmt.Errorf("%w: price must be a non-negative number", domain.ErrInvalidRequest)
	case a.Quantity < 0:
		return fmt.Errorf("%w: quantity must be non-negative", domain.ErrInvalidRequest)
	}
	if a.Shipping != "" && a.Shipping != ShippingYes && a.Shipping != ShippingNo {
		return fmt.Errorf("%w: shipping must be %q or %q", domain.ErrInvalidRequest, ShippingYes, ShippingNo)
	}
	if a.Color != "" && !slices.Contains(Colors, a.Color) {
		return fmt.Errorf("%w: unknown color %q", domain.ErrInvalidRequest, a.Color)
	}
	if a.Brand != "" && !slices.Contains(Brands, a.Brand) {
		return fmt.Errorf("%w: unknown brand %q", domain.ErrInvalidRequest, a.Brand)
	}
	return nil
}

// ValidateStar checks a rating value.
func ValidateStar(star int) error {
	if star < MinStar || star > MaxStar {
		return fmt.Errorf("%w: star must be between %d and %d", domain.ErrInvalidRequest, MinStar, MaxStar)
	}
	return nil
}

// Product is the catalog product aggregate. The id is the join key with the vector index.
type Product struct {
	id            string
	slug          string
	attrs         Attrs
	category      *Category
	subCategories []SubCategory
	sold          int
	ratings       []Rating
	createdAt     time.Time
	updatedAt     time.Time
}

// New validates attributes and creates a product with a fresh id and a slug derived from the title.
func New(a Attrs) (Product, error) {
	if err := a.Validate(); err != nil {
		return Product{}, err
	}
	a.Title = strings.TrimSpace(a.Title)
	return Product{
		id:    uuid.NewString(),
		slug:  slug.Make(a.Title),
		attrs: a,
	}, nil
}

// Snapshot is the full stored state of a product.
type Snapshot struct {
	ID            string
	Slug          string
	Attrs         Attrs
	Category      *Category
	SubCategories []SubCategory
	Sold          int
	Ratings       []Rating
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(s Snapshot) Product {
	return Product{
		id:            s.ID,
		slug:          s.Slug,
		attrs:         s.Attrs,
		category:      s.Category,
		subCategories: s.SubCategories,
		sold:          s.Sold,
		ratings:       s.Ratings,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
	}
}

// WithAttrs returns a copy with replaced attributes and a regenerated slug.
// Identity, sales counter and ratings are kept.
func (p Product) WithAttrs(a Attrs) (Product, error) {
	if err := a.Validate(); err != nil {
		return Product{}, err
	}
	a.Title = strings.TrimSpace(a.Title)
	p.attrs = a
	p.slug = slug.Make(a.Title)
	return p, nil
}

// ID returns the product identifier.
func (p Product) ID() string { return p.id }

// Slug returns the URL slug.
func (p Product) Slug() string { return p.slug }

// Attrs returns the client-supplied attributes.
func (p Product) Attrs() Attrs { return p.attrs }

// Title returns the product title.
func (p Product) Title() string { return p.attrs.Title }

// Description returns the product description.
func (p Product) Description() string { return p.attrs.Description }

// Price returns the product price.
func (p Product) Price() float64 { return p.attrs.Price }

// Quantity returns the stock quantity.
func (p Product) Quantity() int { return p.attrs.Quantity }

// Shipping returns the shipping flag.
func (p Product) Shipping() string { return p.attrs.Shipping }

// Color returns the product color.
func (p Product) Color() string { return p.attrs.Color }

// Brand returns the product brand.
func (p Product) Brand() string { return p.attrs.Brand }

// Specifications returns the key-specification tree.
func (p Product) Specifications() Specs { return p.attrs.Specifications }

// Category returns the populated category, nil when absent.
func (p Product) Category() *Category { return p.category }

// CategoryName returns the category name or an empty string.
func (p Product) CategoryName() string {
	if p.category == nil {
		return ""
	}
	return p.category.Name
}

// SubCategories returns the populated sub-categories.
func (p Product) SubCategories() []SubCategory { return p.subCategories }

// Sold returns the sales counter.
func (p Product) Sold() int { return p.sold }

// Ratings returns the rating list.
func (p Product) Ratings() []Rating { return p.ratings }

// CreatedAt returns the creation time.
func (p Product) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last modification time.
func (p Product) UpdatedAt() time.Time { return p.updatedAt }

// StarBucket returns the floor of the mean star value.
// ok is false for a product without ratings: it belongs to no bucket.
func (p Product) StarBucket() (bucket int, ok bool) {
	if len(p.ratings) == 0 {
		return 0, false
	}
	sum := 0
	for _, r := range p.ratings {
		sum += r.Star
	}
	return int(math.Floor(float64(sum) / float64(len(p.ratings)))), true
}
