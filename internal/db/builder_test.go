package db

import (
	"strings"
	"testing"
)

func productIndex(t *testing.T) *IndexDefinition {
	t.Helper()
	idx, err := NewIndex("shop:products:idx").
		Prefix("shop:product:").
		Tag("slug", "category", "brand").
		Numeric("price").
		VectorHNSW("vector", 1536, DistanceCosine, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return idx
}

func TestIndexBuilder_ProductSchema(t *testing.T) {
	idx := productIndex(t)

	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Prefixes) != 1 || idx.Prefixes[0] != "shop:product:" {
		t.Errorf("prefixes = %v", idx.Prefixes)
	}
	wantNames := []string{"slug", "category", "brand", "price", "vector"}
	if len(idx.Fields) != len(wantNames) {
		t.Fatalf("fields count = %d, want %d", len(idx.Fields), len(wantNames))
	}
	for i, n := range wantNames {
		if idx.Fields[i].Name != n {
			t.Errorf("field[%d] = %q, want %q", i, idx.Fields[i].Name, n)
		}
	}
	if idx.Fields[3].Type != IndexFieldNumeric {
		t.Errorf("price type = %d, want NUMERIC", idx.Fields[3].Type)
	}

	v := idx.Fields[4]
	if v.VectorAlgo != VectorHNSW || v.VectorDim != 1536 || v.VectorDistance != DistanceCosine {
		t.Errorf("vector field = %+v", v)
	}
	if v.VectorM != 16 || v.VectorEFConstruct != 200 {
		t.Errorf("HNSW params = M %d EF %d", v.VectorM, v.VectorEFConstruct)
	}
}

func TestIndexBuilder_BuildReturnsCopy(t *testing.T) {
	b := NewIndex("idx").Tag("a")
	first, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Tag("b")
	if len(first.Fields) != 1 {
		t.Errorf("built definition mutated by builder: %+v", first.Fields)
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		b    *IndexBuilder
		want string
	}{
		{"empty name", NewIndex("").Tag("a"), "name is required"},
		{"invalid name", NewIndex("bad name!").Tag("a"), "invalid characters"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"duplicate field", NewIndex("idx").Tag("a").Numeric("a"), "duplicate field"},
		{"zero dim", NewIndex("idx").VectorHNSW("v", 0, DistanceCosine, 0, 0), "positive DIM"},
		{"two vectors", NewIndex("idx").VectorHNSW("v1", 4, DistanceCosine, 0, 0).VectorHNSW("v2", 4, DistanceCosine, 0, 0), "at most one vector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"idx", "shop:products:idx", "a-b_c", "X1"}
	invalid := []string{"", "has space", "semi;colon", "ünicode"}
	for _, s := range valid {
		if !IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = false", s)
		}
	}
	for _, s := range invalid {
		if IsValidIdentifier(s) {
			t.Errorf("IsValidIdentifier(%q) = true", s)
		}
	}
}

func TestIndexDefinition_String(t *testing.T) {
	got := productIndex(t).String()
	want := "FT.CREATE shop:products:idx ON HASH PREFIX shop:product: SCHEMA " +
		"slug TAG category TAG brand TAG price NUMERIC vector VECTOR HNSW"
	if got != want {
		t.Errorf("String() = %q\nwant       %q", got, want)
	}
}
