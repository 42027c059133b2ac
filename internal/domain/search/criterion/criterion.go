// Package criterion decodes a filter search body into exactly one search strategy.
package criterion

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// Kind names the selected search strategy.
type Kind string

// Strategies in precedence order. KindAll is the fallback.
const (
	KindQuery       Kind = "query"
	KindPrice       Kind = "price"
	KindCategory    Kind = "category"
	KindStars       Kind = "stars"
	KindSubCategory Kind = "sub_category"
	KindShipping    Kind = "shipping"
	KindColor       Kind = "color"
	KindBrand       Kind = "brand"
	KindAll         Kind = "all"
)

// Body is the raw filter request. Field names follow the public API.
type Body struct {
	Query       string    `json:"query,omitempty"`
	Price       []float64 `json:"price,omitempty"`
	Category    []string  `json:"category,omitempty"`
	Stars       int       `json:"stars,omitempty"`
	SubCategory string    `json:"subCategory,omitempty"`
	Shipping    string    `json:"shipping,omitempty"`
	Color       string    `json:"color,omitempty"`
	Brand       string    `json:"brand,omitempty"`
}

// Criterion is a tagged union: only the fields of Kind are meaningful.
type Criterion struct {
	kind        Kind
	text        string
	priceMin    float64
	priceMax    float64
	categoryIDs []string
	stars       int
	ignored     []string
}

type field struct {
	name string
	set  bool
}

// populated lists body fields in precedence order with their presence.
func (b Body) populated() []field {
	return []field{
		{"query", strings.TrimSpace(b.Query) != ""},
		{"price", len(b.Price) > 0},
		{"category", len(b.Category) > 0},
		{"stars", b.Stars != 0},
		{"subCategory", strings.TrimSpace(b.SubCategory) != ""},
		{"shipping", strings.TrimSpace(b.Shipping) != ""},
		{"color", strings.TrimSpace(b.Color) != ""},
		{"brand", strings.TrimSpace(b.Brand) != ""},
	}
}

// Decode selects the first populated field in precedence order.
// Remaining populated fields are not combined; they are reported by Ignored.
func Decode(b Body) (Criterion, error) {
	fields := b.populated()
	winner := -1
	var ignored []string
	for i, f := range fields {
		if !f.set {
			continue
		}
		if winner < 0 {
			winner = i
			continue
		}
		ignored = append(ignored, f.name)
	}
	if winner < 0 {
		return All(), nil
	}

	var (
		c   Criterion
		err error
	)
	switch fields[winner].name {
	case "query":
		c = Text(b.Query)
	case "price":
		c, err = decodePrice(b.Price)
	case "category":
		c, err = decodeCategories(b.Category)
	case "stars":
		c, err = Stars(b.Stars)
	case "subCategory":
		c = Criterion{kind: KindSubCategory, text: strings.TrimSpace(b.SubCategory)}
	case "shipping":
		c, err = decodeShipping(b.Shipping)
	case "color":
		c = Criterion{kind: KindColor, text: strings.TrimSpace(b.Color)}
	case "brand":
		c = Criterion{kind: KindBrand, text: strings.TrimSpace(b.Brand)}
	}
	if err != nil {
		return Criterion{}, err
	}
	c.ignored = ignored
	return c, nil
}

func decodePrice(bounds []float64) (Criterion, error) {
	if len(bounds) != 2 {
		return Criterion{}, fmt.Errorf("%w: price must be [min, max]", domain.ErrInvalidRequest)
	}
	return PriceRange(bounds[0], bounds[1])
}

func decodeCategories(ids []string) (Criterion, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return Criterion{}, fmt.Errorf("%w: category ids must not be blank", domain.ErrInvalidRequest)
	}
	return Criterion{kind: KindCategory, categoryIDs: out}, nil
}

func decodeShipping(v string) (Criterion, error) {
	v = strings.TrimSpace(v)
	if v != product.ShippingYes && v != product.ShippingNo {
		return Criterion{}, fmt.Errorf("%w: shipping must be %q or %q",
			domain.ErrInvalidRequest, product.ShippingYes, product.ShippingNo)
	}
	return Criterion{kind: KindShipping, text: v}, nil
}

// All creates the unfiltered listing criterion.
func All() Criterion { return Criterion{kind: KindAll} }

// Text creates a lexical query criterion.
func Text(q string) Criterion { return Criterion{kind: KindQuery, text: strings.TrimSpace(q)} }

// PriceRange creates an inclusive price range criterion.
func PriceRange(minPrice, maxPrice float64) (Criterion, error) {
	if math.IsNaN(minPrice) || math.IsNaN(maxPrice) || minPrice > maxPrice {
		return Criterion{}, fmt.Errorf("%w: invalid price range [%v, %v]", domain.ErrInvalidRequest, minPrice, maxPrice)
	}
	return Criterion{kind: KindPrice, priceMin: minPrice, priceMax: maxPrice}, nil
}

// Stars creates a star-bucket criterion.
func Stars(bucket int) (Criterion, error) {
	if err := product.ValidateStar(bucket); err != nil {
		return Criterion{}, err
	}
	return Criterion{kind: KindStars, stars: bucket}, nil
}

// Kind returns the selected strategy.
func (c Criterion) Kind() Kind { return c.kind }

// Text returns the lexical query, sub-category id, shipping flag, color or brand.
func (c Criterion) Text() string { return c.text }

// PriceRange returns the inclusive price bounds.
func (c Criterion) PriceRange() (minPrice, maxPrice float64) { return c.priceMin, c.priceMax }

// CategoryIDs returns the category id set.
func (c Criterion) CategoryIDs() []string { return c.categoryIDs }

// Stars returns the requested star bucket.
func (c Criterion) Stars() int { return c.stars }

// Ignored returns populated body fields that lost to a higher-precedence field.
func (c Criterion) Ignored() []string { return c.ignored }
