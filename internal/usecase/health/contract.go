package health

import "context"

// Pinger checks store availability (catalog, vector index).
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an upstream model provider (embedding, generation).
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
