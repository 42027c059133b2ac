package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// parseAPIError extracts a human-readable error from the API response and wraps it with kind.
// HTTP 429 additionally carries domain.ErrRateLimited.
func parseAPIError(what string, err error, kind error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return wrapStatus(what, reqErr.HTTPStatusCode, detail, kind)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapStatus(what, apiErr.HTTPStatusCode, apiErr.Message, kind)
	}

	return fmt.Errorf("%s request failed: %w: %w", what, kind, err)
}

func wrapStatus(what string, status int, detail string, kind error) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s API error %d: %s: %w: %w", what, status, detail, kind, domain.ErrRateLimited)
	}
	return fmt.Errorf("%s API error %d: %s: %w", what, status, detail, kind)
}

// extractDetail reads the "detail" field some providers use instead of the OpenAI error object.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
