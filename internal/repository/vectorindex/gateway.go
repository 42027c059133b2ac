// Package vectorindex keeps product retrieval documents in the vector index
// and answers nearest-neighbor queries over them.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/projection"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/neighbor"
)

// store is the consumer interface for the vector index (ISP).
type store interface {
	Ping(ctx context.Context) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Config holds index naming and HNSW parameters.
type Config struct {
	KeyPrefix    string
	IndexName    string
	Dimensions   int // 0 probes the embedder once on EnsureIndex
	HNSWM        int
	HNSWEF       int
	QueryTimeout time.Duration
	WriteTimeout time.Duration // bounds Upsert and Delete, including the embedding call
}

// Gateway implements the vector index contract on top of db.Store and an embedder.
type Gateway struct {
	store    store
	embedder domain.Embedder
	cfg      Config
	logger   *zap.Logger
}

// New creates a vector index gateway.
func New(s store, embedder domain.Embedder, cfg Config, logger *zap.Logger) *Gateway {
	if cfg.IndexName == "" {
		cfg.IndexName = cfg.KeyPrefix + "products:idx"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{store: s, embedder: embedder, cfg: cfg, logger: logger}
}

// EnsureIndex creates the product index unless it already exists.
func (g *Gateway) EnsureIndex(ctx context.Context) error {
	exists, err := g.store.IndexExists(ctx, g.cfg.IndexName)
	if err != nil {
		return unavailable("check index", err)
	}
	if exists {
		return nil
	}

	dim := g.cfg.Dimensions
	if dim <= 0 {
		probe, err := g.embedder.Embed(ctx, "dimension probe")
		if err != nil {
			return unavailable("probe embedding dimensions", err)
		}
		dim = len(probe.Embedding)
	}

	def, err := buildIndex(g.cfg, dim)
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}
	if err := g.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return unavailable("create index", err)
	}

	g.logger.Info("Vector index created",
		zap.String("index", g.cfg.IndexName),
		zap.Int("dimensions", dim),
	)
	return nil
}

// Upsert embeds the document text and writes the entry. Re-upserting an id replaces it.
func (g *Gateway) Upsert(ctx context.Context, doc projection.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("upsert: empty id: %w", domain.ErrInvalidRequest)
	}
	ctx, cancel := withTimeout(ctx, g.cfg.WriteTimeout)
	defer cancel()

	emb, err := g.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return unavailable("embed document "+doc.ID, err)
	}

	if err := g.store.HSet(ctx, g.key(doc.ID), buildHash(doc, emb.Embedding)); err != nil {
		return unavailable("hset "+doc.ID, err)
	}
	return nil
}

// Delete removes the entry for id. A missing entry is not an error.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, g.cfg.WriteTimeout)
	defer cancel()
	if err := g.store.Del(ctx, g.key(id)); err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return unavailable("del "+id, err)
	}
	return nil
}

// Query returns up to k neighbors of text, nearest first.
func (g *Gateway) Query(ctx context.Context, text string, k int) ([]neighbor.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("query: k must be positive: %w", domain.ErrInvalidRequest)
	}
	ctx, cancel := withTimeout(ctx, g.cfg.QueryTimeout)
	defer cancel()

	emb, err := g.embedder.Embed(ctx, text)
	if err != nil {
		return nil, unavailable("embed query", err)
	}

	res, err := g.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    g.cfg.IndexName,
		VectorField:  fieldVector,
		Vector:       emb.Embedding,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, unavailable("knn search", err)
	}
	if res == nil {
		return nil, nil
	}

	out := make([]neighbor.Neighbor, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, parseEntry(g.cfg.KeyPrefix, e))
	}
	return out, nil
}

// Ping checks that the index store responds.
func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.store.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (g *Gateway) key(id string) string {
	return entryKey(g.cfg.KeyPrefix, id)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrIndexUnavailable, err)
}
