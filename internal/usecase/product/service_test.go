package product

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domprod "github.com/kailas-cloud/shopsearch/internal/domain/product"
)

func TestCreate_CommitsThenIndexes(t *testing.T) {
	repo, idx := newMockRepo(), &mockSync{}
	svc := New(repo, idx)

	p, err := svc.Create(context.Background(), validAttrs("Gaming Laptop X"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Slug() != "gaming-laptop-x" || p.ID() == "" {
		t.Fatalf("unexpected product: id=%q slug=%q", p.ID(), p.Slug())
	}
	if _, ok := repo.bySlug["gaming-laptop-x"]; !ok {
		t.Fatal("product not committed")
	}
	if len(idx.calls) != 1 || idx.calls[0] != (syncCall{"create", p.ID()}) {
		t.Fatalf("sync calls = %+v", idx.calls)
	}
}

func TestCreate_InvalidSkipsStoreAndIndex(t *testing.T) {
	repo, idx := newMockRepo(), &mockSync{}
	a := validAttrs("")
	if _, err := New(repo, idx).Create(context.Background(), a); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(repo.bySlug) != 0 || len(idx.calls) != 0 {
		t.Fatal("invalid product must not be stored or indexed")
	}
}

func TestCreate_StoreFailureSkipsIndex(t *testing.T) {
	repo, idx := newMockRepo(), &mockSync{}
	repo.createFn = func(context.Context, domprod.Product) (domprod.Product, error) {
		return domprod.Product{}, domain.ErrAlreadyExists
	}
	if _, err := New(repo, idx).Create(context.Background(), validAttrs("Dup")); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if len(idx.calls) != 0 {
		t.Fatalf("index must not see uncommitted writes: %+v", idx.calls)
	}
}

func TestUpdate_RegeneratesSlugAndReindexes(t *testing.T) {
	repo, idx := newMockRepo(), &mockSync{}
	svc := New(repo, idx)
	p, err := svc.Create(context.Background(), validAttrs("Old Name"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a := validAttrs("New Name")
	a.Price = 250
	updated, err := svc.Update(context.Background(), "old-name", a)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID() != p.ID() || updated.Slug() != "new-name" || updated.Price() != 250 {
		t.Fatalf("unexpected update: %s %s %v", updated.ID(), updated.Slug(), updated.Price())
	}
	if len(idx.calls) != 2 || idx.calls[1] != (syncCall{"update", p.ID()}) {
		t.Fatalf("sync calls = %+v", idx.calls)
	}
}

func TestUpdate_Missing(t *testing.T) {
	idx := &mockSync{}
	_, err := New(newMockRepo(), idx).Update(context.Background(), "ghost", validAttrs("Ghost"))
	if !errors.Is(err, domain.ErrProductNotFound) || len(idx.calls) != 0 {
		t.Fatalf("err = %v calls = %+v", err, idx.calls)
	}
}

func TestDelete_HandsOffID(t *testing.T) {
	repo, idx := newMockRepo(), &mockSync{}
	svc := New(repo, idx)
	p, _ := svc.Create(context.Background(), validAttrs("Gone Soon"))

	deleted, err := svc.Delete(context.Background(), "gone-soon")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID() != p.ID() {
		t.Fatalf("deleted id = %q", deleted.ID())
	}
	if last := idx.calls[len(idx.calls)-1]; last != (syncCall{"delete", p.ID()}) {
		t.Fatalf("last sync call = %+v", last)
	}

	if _, err := svc.Delete(context.Background(), "gone-soon"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestGet(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockSync{})
	_, _ = svc.Create(context.Background(), validAttrs("Phone"))

	p, err := svc.Get(context.Background(), "phone")
	if err != nil || p.Title() != "Phone" {
		t.Fatalf("Get: %v %q", err, p.Title())
	}
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestList_NegativeCount(t *testing.T) {
	if _, err := New(newMockRepo(), &mockSync{}).List(context.Background(), -1); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSortedList_Params(t *testing.T) {
	type call struct {
		sort    string
		desc    bool
		page    int
		perPage int
	}
	tests := []struct {
		name    string
		sort    string
		order   string
		page    int
		want    call
		wantErr bool
	}{
		{"defaults", "", "", 0, call{"createdAt", true, 1, PerPage}, false},
		{"ascending price", "price", "asc", 2, call{"price", false, 2, PerPage}, false},
		{"case-insensitive order", "sold", "DESC", 3, call{"sold", true, 3, PerPage}, false},
		{"bad order", "price", "sideways", 1, call{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got call
			repo := newMockRepo()
			repo.sortedListFn = func(_ context.Context, sort string, desc bool, page, perPage int) ([]domprod.Product, error) {
				got = call{sort, desc, page, perPage}
				return nil, nil
			}
			_, err := New(repo, &mockSync{}).SortedList(context.Background(), tt.sort, tt.order, tt.page)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SortedList: %v", err)
			}
			if got != tt.want {
				t.Fatalf("repo call = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCount(t *testing.T) {
	svc := New(newMockRepo(), &mockSync{})
	_, _ = svc.Create(context.Background(), validAttrs("One"))
	_, _ = svc.Create(context.Background(), validAttrs("Two"))
	n, err := svc.Count(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestRate(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockSync{})
	p, _ := svc.Create(context.Background(), validAttrs("Rated"))

	var gotUser string
	var gotStar int
	repo.rateFn = func(ctx context.Context, productID, userID string, star int) (domprod.Product, error) {
		gotUser, gotStar = userID, star
		return repo.FindByID(ctx, productID)
	}

	if _, err := svc.Rate(context.Background(), p.ID(), "u-1", 4); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if gotUser != "u-1" || gotStar != 4 {
		t.Fatalf("rating = %s/%d", gotUser, gotStar)
	}

	if _, err := svc.Rate(context.Background(), p.ID(), "", 4); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("missing user: %v", err)
	}
	for _, star := range []int{0, 6} {
		if _, err := svc.Rate(context.Background(), p.ID(), "u-1", star); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("star %d: %v", star, err)
		}
	}
}

func TestRelated(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockSync{})
	p, _ := svc.Create(context.Background(), validAttrs("Anchor"))

	var gotID string
	repo.relatedFn = func(_ context.Context, q domprod.Product) ([]domprod.Product, error) {
		gotID = q.ID()
		return []domprod.Product{q}, nil
	}
	if _, err := svc.Related(context.Background(), p.ID()); err != nil || gotID != p.ID() {
		t.Fatalf("Related: %v (%q)", err, gotID)
	}
	if _, err := svc.Related(context.Background(), "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("missing product: %v", err)
	}
}

func TestInCategoryAndSubCategory(t *testing.T) {
	repo := newMockRepo()
	var gotCategories []string
	var gotSub string
	repo.categoriesFn = func(_ context.Context, ids []string) ([]domprod.Product, error) {
		gotCategories = ids
		return nil, nil
	}
	repo.subFn = func(_ context.Context, id string) ([]domprod.Product, error) {
		gotSub = id
		return nil, nil
	}
	svc := New(repo, &mockSync{})
	ctx := context.Background()

	if _, err := svc.InCategory(ctx, "cat-1"); err != nil || len(gotCategories) != 1 || gotCategories[0] != "cat-1" {
		t.Fatalf("InCategory: %v (%v)", err, gotCategories)
	}
	if _, err := svc.InSubCategory(ctx, "sub-1"); err != nil || gotSub != "sub-1" {
		t.Fatalf("InSubCategory: %v (%q)", err, gotSub)
	}
	if _, err := svc.InCategory(ctx, " "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("blank category: %v", err)
	}
	if _, err := svc.InSubCategory(ctx, ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("blank sub-category: %v", err)
	}
}

func TestAdjustInventory(t *testing.T) {
	repo := newMockRepo()
	var got []domprod.CounterDelta
	repo.countersFn = func(_ context.Context, ops []domprod.CounterDelta) (int, error) {
		got = ops
		return 1, nil
	}
	svc := New(repo, &mockSync{})

	ops := []domprod.CounterDelta{{ProductID: "p-1", Quantity: -2, Sold: 2}, {ProductID: "p-x", Quantity: -1, Sold: 1}}
	n, err := svc.AdjustInventory(context.Background(), ops)
	if err != nil || n != 1 || len(got) != 2 {
		t.Fatalf("AdjustInventory = %d, %v (%v)", n, err, got)
	}

	if _, err := svc.AdjustInventory(context.Background(), nil); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("empty ops: %v", err)
	}
}
