// Package db describes the Valkey/Redis operations the service relies on:
// product entry hashes and FT vector search for the index, plain keys for the embedding cache.
// Consumers declare narrower interfaces; Store is what a driver must provide.
package db

import (
	"context"
	"time"
)

// Store is implemented by the Valkey/Redis driver.
//
//nolint:interfacebloat // driver surface; consumers depend on subsets
type Store interface {
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()

	// Index entries.
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error

	// Embedding cache.
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// FT index lifecycle and search.
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
