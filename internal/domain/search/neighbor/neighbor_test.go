package neighbor

import (
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain/projection"
)

func TestNew(t *testing.T) {
	md := projection.Metadata{Title: "Widget", Price: 10}
	n := New("p-1", 0.25, md, "Widget. Small")

	if n.ID() != "p-1" {
		t.Errorf("ID() = %q", n.ID())
	}
	if n.Distance() != 0.25 {
		t.Errorf("Distance() = %f", n.Distance())
	}
	if n.Metadata() != md {
		t.Errorf("Metadata() = %+v", n.Metadata())
	}
	if n.Text() != "Widget. Small" {
		t.Errorf("Text() = %q", n.Text())
	}
}

func TestNew_ClampsNegativeDistance(t *testing.T) {
	n := New("p-1", -1e-7, projection.Metadata{}, "")
	if n.Distance() != 0 {
		t.Errorf("Distance() = %g, want 0", n.Distance())
	}
}

func TestIDs(t *testing.T) {
	ns := []Neighbor{
		New("b", 0.1, projection.Metadata{}, ""),
		New("a", 0.2, projection.Metadata{}, ""),
	}
	ids := IDs(ns)
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Errorf("IDs() = %v", ids)
	}
}
