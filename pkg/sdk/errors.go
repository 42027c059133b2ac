package shopsearch

import (
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrAlreadyExists          = domain.ErrAlreadyExists
	ErrUnauthorized           = domain.ErrUnauthorized
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
	ErrGenerationFailure      = domain.ErrGenerationFailure
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrRateLimited            = domain.ErrRateLimited
)

var codeErrors = map[string]error{
	"invalid_request":          ErrInvalidRequest,
	"bad_request":              ErrInvalidRequest,
	"not_found":                ErrProductNotFound,
	"already_exists":           ErrAlreadyExists,
	"unauthorized":             ErrUnauthorized,
	"index_unavailable":        ErrIndexUnavailable,
	"generation_failure":       ErrGenerationFailure,
	"embedding_provider_error": ErrEmbeddingProviderError,
	"rate_limited":             ErrRateLimited,
}

// APIError is a non-2xx response of the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("shopsearch: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("shopsearch: %s (http %d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap maps the server error code onto a sentinel error.
func (e *APIError) Unwrap() error {
	return codeErrors[e.Code]
}
