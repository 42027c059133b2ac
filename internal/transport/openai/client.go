package openai

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// newClient builds an OpenAI-compatible client with a bounded HTTP timeout.
func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(clientCfg)
}
