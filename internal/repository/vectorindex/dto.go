package vectorindex

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain/projection"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/neighbor"
)

// Hash field names of an index entry.
const (
	fieldText     = "text"
	fieldTitle    = "title"
	fieldSlug     = "slug"
	fieldPrice    = "price"
	fieldCategory = "category"
	fieldBrand    = "brand"
	fieldVector   = "vector"
)

var returnFields = []string{fieldText, fieldTitle, fieldSlug, fieldPrice, fieldCategory, fieldBrand}

func entryKey(prefix, id string) string {
	return prefix + "product:" + id
}

func buildHash(doc projection.Document, vec []float32) map[string]string {
	return map[string]string{
		fieldText:     doc.Text,
		fieldTitle:    doc.Metadata.Title,
		fieldSlug:     doc.Metadata.Slug,
		fieldPrice:    strconv.FormatFloat(doc.Metadata.Price, 'f', -1, 64),
		fieldCategory: doc.Metadata.Category,
		fieldBrand:    doc.Metadata.Brand,
		fieldVector:   db.VectorToBytes(vec),
	}
}

func parseEntry(prefix string, e db.SearchEntry) neighbor.Neighbor {
	id := strings.TrimPrefix(e.Key, prefix+"product:")
	price, _ := strconv.ParseFloat(e.Fields[fieldPrice], 64)
	return neighbor.New(id, e.Distance, projection.Metadata{
		Title:    e.Fields[fieldTitle],
		Slug:     e.Fields[fieldSlug],
		Price:    price,
		Category: e.Fields[fieldCategory],
		Brand:    e.Fields[fieldBrand],
	}, e.Fields[fieldText])
}
