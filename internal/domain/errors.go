package domain

import "errors"

var (
	// ErrInvalidRequest signals malformed or empty client input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
	// ErrAlreadyExists signals a duplicate resource (e.g. slug collision).
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnauthorized signals a missing caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrIndexUnavailable signals that the vector index could not be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrStoreDrift signals an id resolvable in the vector index but not in the catalog.
	// Never surfaced to clients.
	ErrStoreDrift = errors.New("store drift")

	// ErrGenerationFailure signals a failed or non-successful text generation call.
	ErrGenerationFailure = errors.New("generation failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit on an upstream provider.
	ErrRateLimited = errors.New("rate limited")
)
