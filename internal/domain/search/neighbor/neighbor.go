package neighbor

import "github.com/kailas-cloud/shopsearch/internal/domain/projection"

// Neighbor is one nearest-neighbor hit returned by the vector index.
type Neighbor struct {
	id       string
	distance float64
	metadata projection.Metadata
	text     string
}

// New creates a neighbor. Negative distances are clamped to zero (0 = identical).
func New(id string, distance float64, metadata projection.Metadata, text string) Neighbor {
	if distance < 0 {
		distance = 0
	}
	return Neighbor{id: id, distance: distance, metadata: metadata, text: text}
}

// ID returns the product identifier.
func (n Neighbor) ID() string { return n.id }

// Distance returns the embedding distance.
func (n Neighbor) Distance() float64 { return n.distance }

// Metadata returns the stored display projection.
func (n Neighbor) Metadata() projection.Metadata { return n.metadata }

// Text returns the indexed retrieval text.
func (n Neighbor) Text() string { return n.text }

// IDs collects identifiers in neighbor order.
func IDs(ns []Neighbor) []string {
	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = n.id
	}
	return ids
}
