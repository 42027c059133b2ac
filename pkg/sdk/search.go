package shopsearch

import (
	"context"
	"net/http"
	"strings"
)

// FilterSearch selects products through the catalog filters.
// An empty Filters value lists the whole catalog.
func (c *Client) FilterSearch(ctx context.Context, f Filters) (FilterResult, error) {
	var products []Product
	hdr, err := c.do(ctx, call{
		op:     "filter_search",
		method: http.MethodPost,
		path:   "/api/product/search/filters",
		body:   f,
		out:    &products,
	})
	if err != nil {
		return FilterResult{}, err
	}
	res := FilterResult{Products: products}
	if ignored := hdr.Get(ignoredHeader); ignored != "" {
		res.Ignored = strings.Split(ignored, ",")
	}
	return res, nil
}

// SemanticSearch returns up to limit products nearest to query. limit 0 uses the server default.
func (c *Client) SemanticSearch(ctx context.Context, query string, limit int) ([]Hit, error) {
	var resp struct {
		Products []Hit `json:"products"`
		Count    int   `json:"count"`
	}
	_, err := c.do(ctx, call{
		op:     "semantic_search",
		method: http.MethodPost,
		path:   "/api/product/semantic-search",
		body: struct {
			Query string `json:"query"`
			Limit int    `json:"limit,omitempty"`
		}{Query: query, Limit: limit},
		out: &resp,
	})
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Chat asks the shopping assistant. history holds prior turns, oldest first.
func (c *Client) Chat(ctx context.Context, query string, history []Turn) (ChatReply, error) {
	var reply ChatReply
	_, err := c.do(ctx, call{
		op:     "chat",
		method: http.MethodPost,
		path:   "/api/product/chat-assistant",
		body: struct {
			Query               string `json:"query"`
			ConversationHistory []Turn `json:"conversationHistory,omitempty"`
		}{Query: query, ConversationHistory: history},
		out: &reply,
	})
	return reply, err
}

// SyncEmbeddings rebuilds the vector index from the catalog. Admin only.
func (c *Client) SyncEmbeddings(ctx context.Context) (SyncSummary, error) {
	var sum SyncSummary
	_, err := c.do(ctx, call{
		op:     "sync_embeddings",
		method: http.MethodPost,
		path:   "/api/product/sync-embeddings",
		out:    &sum,
	})
	return sum, err
}

// Health returns the server health. An unhealthy server is reported, not returned as an error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var report HealthReport
	_, err := c.do(ctx, call{
		op:     "health",
		method: http.MethodGet,
		path:   "/health",
		out:    &report,
		accept: []int{http.StatusServiceUnavailable},
	})
	return report, err
}
