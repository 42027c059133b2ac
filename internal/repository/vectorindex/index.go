package vectorindex

import "github.com/kailas-cloud/shopsearch/internal/db"

// buildIndex describes the product index: metadata as TAG/NUMERIC, the embedding as HNSW/COSINE.
// text and title are stored on the hash but not indexed.
func buildIndex(cfg Config, dim int) (*db.IndexDefinition, error) {
	return db.NewIndex(cfg.IndexName).
		Prefix(entryKey(cfg.KeyPrefix, "")).
		Tag(fieldSlug, fieldCategory, fieldBrand).
		Numeric(fieldPrice).
		VectorHNSW(fieldVector, dim, db.DistanceCosine, cfg.HNSWM, cfg.HNSWEF).
		Build()
}
