package dispatch

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/criterion"
)

// mockCatalog records which strategy was called and with what argument.
type mockCatalog struct {
	called string
	arg    any
	err    error
}

func (m *mockCatalog) hit(name string, arg any) ([]product.Product, error) {
	m.called, m.arg = name, arg
	if m.err != nil {
		return nil, m.err
	}
	return []product.Product{product.Reconstruct(product.Snapshot{ID: name})}, nil
}

func (m *mockCatalog) SearchText(_ context.Context, text string) ([]product.Product, error) {
	return m.hit("text", text)
}

func (m *mockCatalog) FindByPriceRange(_ context.Context, lo, hi float64) ([]product.Product, error) {
	return m.hit("price", [2]float64{lo, hi})
}

func (m *mockCatalog) FindByCategories(_ context.Context, ids []string) ([]product.Product, error) {
	return m.hit("category", ids)
}

func (m *mockCatalog) FindByStarBucket(_ context.Context, bucket int) ([]product.Product, error) {
	return m.hit("stars", bucket)
}

func (m *mockCatalog) FindBySubCategory(_ context.Context, id string) ([]product.Product, error) {
	return m.hit("sub", id)
}

func (m *mockCatalog) FindByShipping(_ context.Context, v string) ([]product.Product, error) {
	return m.hit("shipping", v)
}

func (m *mockCatalog) FindByColor(_ context.Context, v string) ([]product.Product, error) {
	return m.hit("color", v)
}

func (m *mockCatalog) FindByBrand(_ context.Context, v string) ([]product.Product, error) {
	return m.hit("brand", v)
}

func (m *mockCatalog) FindAll(_ context.Context) ([]product.Product, error) {
	return m.hit("all", nil)
}

func TestDispatch_Routes(t *testing.T) {
	tests := []struct {
		name string
		body criterion.Body
		want string
	}{
		{"empty body lists all", criterion.Body{}, "all"},
		{"query wins over everything", criterion.Body{Query: "laptop", Price: []float64{1, 2}, Brand: "Dell"}, "text"},
		{"price beats category", criterion.Body{Price: []float64{5, 15}, Category: []string{"X"}}, "price"},
		{"category", criterion.Body{Category: []string{"X", "Y"}}, "category"},
		{"stars", criterion.Body{Stars: 4, Color: "Black"}, "stars"},
		{"sub-category", criterion.Body{SubCategory: "s-1", Shipping: "Yes"}, "sub"},
		{"shipping", criterion.Body{Shipping: "No", Color: "Blue"}, "shipping"},
		{"color", criterion.Body{Color: "Blue", Brand: "Asus"}, "color"},
		{"brand", criterion.Body{Brand: "Asus"}, "brand"},
		{"blank strings are absent", criterion.Body{Query: "  ", Brand: "Apple"}, "brand"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := criterion.Decode(tt.body)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			cat := &mockCatalog{}
			ps, err := New(cat).Dispatch(context.Background(), c)
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if cat.called != tt.want {
				t.Fatalf("strategy = %q, want %q", cat.called, tt.want)
			}
			if len(ps) != 1 || ps[0].ID() != tt.want {
				t.Fatalf("unexpected products: %v", ps)
			}
		})
	}
}

func TestDispatch_PriceIgnoresCategory(t *testing.T) {
	c, err := criterion.Decode(criterion.Body{Price: []float64{5, 15}, Category: []string{"X"}})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cat := &mockCatalog{}
	if _, err := New(cat).Dispatch(context.Background(), c); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if cat.arg != [2]float64{5, 15} {
		t.Fatalf("price bounds = %v", cat.arg)
	}
	if !slices.Equal(c.Ignored(), []string{"category"}) {
		t.Fatalf("ignored = %v", c.Ignored())
	}
}

func TestDispatch_Deterministic(t *testing.T) {
	body := criterion.Body{Stars: 3, Brand: "Dell"}
	for range 3 {
		c, _ := criterion.Decode(body)
		cat := &mockCatalog{}
		_, _ = New(cat).Dispatch(context.Background(), c)
		if cat.called != "stars" || cat.arg != 3 {
			t.Fatalf("strategy = %q(%v)", cat.called, cat.arg)
		}
	}
}

func TestDispatch_CatalogError(t *testing.T) {
	boom := errors.New("db down")
	_, err := New(&mockCatalog{err: boom}).Dispatch(context.Background(), criterion.All())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped catalog error, got %v", err)
	}
}
