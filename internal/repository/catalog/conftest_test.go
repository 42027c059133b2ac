package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// newTestRepo opens a private in-memory SQLite catalog. Skips when the driver is unavailable (CGO disabled).
func newTestRepo(t *testing.T) (*Repo, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(context.Background(), db); err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	seed := []any{
		&categoryModel{ID: "cat-laptops", Name: "Laptops", Slug: "laptops"},
		&categoryModel{ID: "cat-phones", Name: "Phones", Slug: "phones"},
		&subCategoryModel{ID: "sub-ultra", Name: "Ultrabooks", Slug: "ultrabooks", ParentID: "cat-laptops"},
		&subCategoryModel{ID: "sub-gaming", Name: "Gaming", Slug: "gaming", ParentID: "cat-laptops"},
		&raterModel{ID: "u-1", Name: "Ada"},
		&raterModel{ID: "u-2", Name: "Linus"},
	}
	for _, s := range seed {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return New(db), db
}

func attrs(title string, price float64) product.Attrs {
	return product.Attrs{
		Title:       title,
		Description: title + " description",
		Price:       price,
		CategoryID:  "cat-laptops",
		Quantity:    10,
		Shipping:    product.ShippingYes,
		Color:       "Black",
		Brand:       "Lenovo",
	}
}

func mustCreate(t *testing.T, r *Repo, a product.Attrs) product.Product {
	t.Helper()
	p, err := product.New(a)
	if err != nil {
		t.Fatalf("new product: %v", err)
	}
	created, err := r.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create %q: %v", a.Title, err)
	}
	return created
}

func ids(ps []product.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title()
	}
	return out
}
