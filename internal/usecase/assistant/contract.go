package assistant

import (
	"context"

	dom "github.com/kailas-cloud/shopsearch/internal/domain/assistant"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// Retriever supplies grounding candidates (ISP).
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]result.Hit, error)
}

// Generator is the external text-generation service (ISP).
type Generator interface {
	Generate(ctx context.Context, p dom.Prompt) (string, error)
}
