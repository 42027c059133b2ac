// Package assistant implements the retrieval-augmented shopping assistant.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	dom "github.com/kailas-cloud/shopsearch/internal/domain/assistant"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	"github.com/kailas-cloud/shopsearch/internal/logger"
)

// Config defaults. Zero MaxHistoryTurns disables history; a negative value selects the default.
const (
	DefaultCandidates      = 5
	DefaultSurfaced        = 3
	DefaultMaxHistoryTurns = 6
)

// NoMatchAnswer is returned without calling the generator when retrieval finds nothing.
const NoMatchAnswer = "I couldn't find any products matching your request. " +
	"Try describing what you need differently, for example by brand, budget or use case."

var tracer = otel.Tracer("github.com/kailas-cloud/shopsearch/internal/usecase/assistant")

// Config tunes retrieval depth and conversation memory.
type Config struct {
	Candidates      int
	Surfaced        int
	MaxHistoryTurns int
}

// Service answers shopping questions grounded in retrieved catalog products.
type Service struct {
	retriever Retriever
	generator Generator
	cfg       Config
	now       func() time.Time
}

// New creates the assistant.
func New(retriever Retriever, generator Generator, cfg Config) *Service {
	if cfg.Candidates <= 0 {
		cfg.Candidates = DefaultCandidates
	}
	if cfg.Surfaced <= 0 {
		cfg.Surfaced = DefaultSurfaced
	}
	if cfg.MaxHistoryTurns < 0 {
		cfg.MaxHistoryTurns = DefaultMaxHistoryTurns
	}
	return &Service{
		retriever: retriever,
		generator: generator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Answer retrieves candidates for query, asks the generator for a recommendation
// and returns it with the top surfaced products.
func (s *Service) Answer(ctx context.Context, query string, history []dom.Turn) (dom.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return dom.Answer{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	ctx, span := tracer.Start(ctx, "assistant.Answer")
	defer span.End()

	hits, err := s.retriever.Search(ctx, query, s.cfg.Candidates)
	if err != nil {
		span.RecordError(err)
		return dom.Answer{}, fmt.Errorf("retrieve candidates: %w", err)
	}
	span.SetAttributes(attribute.Int("assistant.candidates", len(hits)))

	if len(hits) == 0 {
		return dom.Answer{Text: NoMatchAnswer, Products: []result.Hit{}, Timestamp: s.now()}, nil
	}

	prompt := dom.Prompt{
		History: trimHistory(history, s.cfg.MaxHistoryTurns),
		User:    buildPrompt(query, hits),
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Warn("assistant generation failed", zap.Error(err))
		return dom.Answer{}, fmt.Errorf("answer: %w", err)
	}

	return dom.Answer{
		Text:      text,
		Products:  hits[:min(len(hits), s.cfg.Surfaced)],
		Timestamp: s.now(),
	}, nil
}

// trimHistory keeps the last max valid turns.
func trimHistory(history []dom.Turn, maxTurns int) []dom.Turn {
	valid := make([]dom.Turn, 0, len(history))
	for _, t := range history {
		if t.Valid() {
			valid = append(valid, t)
		}
	}
	if len(valid) > maxTurns {
		valid = valid[len(valid)-maxTurns:]
	}
	return valid
}
