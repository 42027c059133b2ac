// Package projection derives the retrieval document indexed for a product.
package projection

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// Metadata is the lightweight display projection stored next to the vector.
type Metadata struct {
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
}

// Document is the retrieval document of one product.
type Document struct {
	ID       string
	Text     string
	Metadata Metadata
}

// Project builds the retrieval document. Pure: the same snapshot always yields the same document.
func Project(p product.Product) Document {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. %s. Category: %s. Brand: %s",
		p.Title(), p.Description(), p.CategoryName(), p.Brand())

	if specs := FlattenSpecs(p.Specifications()); len(specs) > 0 {
		b.WriteString(". ")
		b.WriteString(strings.Join(specs, ". "))
	}

	return Document{
		ID:   p.ID(),
		Text: strings.TrimSpace(b.String()),
		Metadata: Metadata{
			Title:    p.Title(),
			Slug:     p.Slug(),
			Price:    p.Price(),
			Category: p.CategoryName(),
			Brand:    p.Brand(),
		},
	}
}

// FlattenSpecs turns the specification tree into "Label: value" entries.
// Nested mappings are spliced in place without a parent prefix.
func FlattenSpecs(specs product.Specs) []string {
	var out []string
	for _, s := range specs {
		if s.IsMapping() {
			out = append(out, FlattenSpecs(s.Children)...)
			continue
		}
		out = append(out, Label(s.Key)+": "+FormatValue(s.Value))
	}
	return out
}

// Label converts a compact identifier into a human-readable label: a space goes
// before every ASCII uppercase letter and the first letter is capitalized.
func Label(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	spaced := b.String()

	first, size := utf8.DecodeRuneInString(spaced)
	if size == 0 {
		return ""
	}
	return strings.TrimSpace(string(unicode.ToUpper(first)) + spaced[size:])
}

// FormatValue renders a specification leaf the way it appears in retrieval text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case []any:
		parts := make([]string, len(val))
		for i, el := range val {
			parts[i] = formatListElement(el)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}

func formatListElement(v any) string {
	switch el := v.(type) {
	case nil:
		return ""
	case product.Specs:
		raw, err := json.Marshal(el)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return FormatValue(el)
	}
}
