package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/assistant"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, content string, got *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "llama-3.3-70b-versatile",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
		})
	}))
}

func newTestGenerator(url string) *Generator {
	return NewGenerator(&GeneratorConfig{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.7,
		MaxTokens:   500,
		Timeout:     5 * time.Second,
		Logger:      zap.NewNop(),
	})
}

func TestGenerator_Generate(t *testing.T) {
	var req chatRequest
	server := chatServer(t, "  The ThinkPad X1 fits best.  ", &req)
	defer server.Close()

	text, err := newTestGenerator(server.URL).Generate(context.Background(), assistant.Prompt{
		History: []assistant.Turn{
			{Role: assistant.RoleUser, Content: "I need a laptop"},
			{Role: assistant.RoleAssistant, Content: "What budget?"},
		},
		User: "Products: ...",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "The ThinkPad X1 fits best." {
		t.Errorf("text = %q", text)
	}

	if req.Model != "llama-3.3-70b-versatile" || req.MaxTokens != 500 {
		t.Errorf("request = %+v", req)
	}
	if req.Temperature < 0.69 || req.Temperature > 0.71 {
		t.Errorf("temperature = %v", req.Temperature)
	}
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}
	if req.Messages[1].Role != "assistant" || req.Messages[2].Role != "user" || req.Messages[2].Content != "Products: ..." {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestGenerator_EmptyCompletion(t *testing.T) {
	server := chatServer(t, "   ", nil)
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), assistant.Prompt{User: "q"})
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Errorf("expected ErrGenerationFailure, got %v", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Generate(context.Background(), assistant.Prompt{User: "q"})
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Errorf("expected ErrGenerationFailure, got %v", err)
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("500 must not be reported as rate limited: %v", err)
	}
}

func TestGenerator_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	g.timeout = 50 * time.Millisecond

	_, err := g.Generate(context.Background(), assistant.Prompt{User: "q"})
	if !errors.Is(err, domain.ErrGenerationFailure) {
		t.Errorf("expected ErrGenerationFailure on timeout, got %v", err)
	}
}

func TestGenerator_HealthCheck(t *testing.T) {
	var up bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" || !up {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	if err := g.HealthCheck(context.Background()); err == nil {
		t.Error("expected error while provider is down")
	}
	up = true
	if err := g.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
}
