package result

import "github.com/kailas-cloud/shopsearch/internal/domain/product"

// Hit is a hydrated search hit: a full catalog product plus its similarity.
type Hit struct {
	product  product.Product
	score    float64
	distance float64
	ranked   bool
}

// New creates a ranked hit. Score is 1 - distance, clamped to [0, 1].
func New(p product.Product, distance float64) Hit {
	return Hit{product: p, score: Similarity(distance), distance: distance, ranked: true}
}

// Unranked wraps a product returned without similarity ranking (empty-query listing).
func Unranked(p product.Product) Hit {
	return Hit{product: p}
}

// Similarity converts a cosine distance into a [0, 1] similarity score.
func Similarity(distance float64) float64 {
	s := 1 - distance
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Product returns the hydrated product.
func (h Hit) Product() product.Product { return h.product }

// Score returns the similarity score.
func (h Hit) Score() float64 { return h.score }

// Distance returns the raw embedding distance.
func (h Hit) Distance() float64 { return h.distance }

// Ranked reports whether the hit came from similarity ranking.
func (h Hit) Ranked() bool { return h.ranked }
