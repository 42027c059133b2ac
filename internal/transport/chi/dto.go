package chi

import (
	"time"

	domassist "github.com/kailas-cloud/shopsearch/internal/domain/assistant"
	dombatch "github.com/kailas-cloud/shopsearch/internal/domain/batch"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// ProductRequest is the body of product create and update.
type ProductRequest struct {
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	Price             float64       `json:"price"`
	Category          string        `json:"category,omitempty"`
	SubCategories     []string      `json:"subCategories,omitempty"`
	Quantity          int           `json:"quantity"`
	Shipping          string        `json:"shipping,omitempty"`
	Color             string        `json:"color,omitempty"`
	Brand             string        `json:"brand,omitempty"`
	KeySpecifications product.Specs `json:"keySpecifications,omitempty"`
}

// CategoryRef is a populated category or sub-category reference.
type CategoryRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent string `json:"parent,omitempty"`
}

// RaterRef is a populated rating author.
type RaterRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RatingResponse is one star rating.
type RatingResponse struct {
	Star     int       `json:"star"`
	PostedBy string    `json:"postedBy"`
	Rater    *RaterRef `json:"rater,omitempty"`
}

// ProductResponse is a fully populated catalog product.
type ProductResponse struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Slug              string           `json:"slug"`
	Description       string           `json:"description"`
	Price             float64          `json:"price"`
	Category          *CategoryRef     `json:"category,omitempty"`
	SubCategories     []CategoryRef    `json:"subCategories"`
	Quantity          int              `json:"quantity"`
	Sold              int              `json:"sold"`
	Shipping          string           `json:"shipping,omitempty"`
	Color             string           `json:"color,omitempty"`
	Brand             string           `json:"brand,omitempty"`
	KeySpecifications product.Specs    `json:"keySpecifications,omitempty"`
	Ratings           []RatingResponse `json:"ratings"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// HitResponse is a product with its similarity. Unranked hits omit the score.
type HitResponse struct {
	ProductResponse
	SimilarityScore *float64 `json:"similarityScore,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
}

// SemanticSearchRequest is the body of POST /product/semantic-search.
type SemanticSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SemanticSearchResponse lists hits nearest-first.
type SemanticSearchResponse struct {
	Products []HitResponse `json:"products"`
	Count    int           `json:"count"`
}

// ChatTurn is one prior conversation message.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /product/chat-assistant.
type ChatRequest struct {
	Query               string     `json:"query"`
	ConversationHistory []ChatTurn `json:"conversationHistory,omitempty"`
}

// ChatResponse is the grounded assistant reply.
type ChatResponse struct {
	Response  string        `json:"response"`
	Products  []HitResponse `json:"products"`
	Timestamp time.Time     `json:"timestamp"`
}

// SortedListRequest is the body of POST /products.
type SortedListRequest struct {
	Sort  string `json:"sort"`
	Order string `json:"order"`
	Page  int    `json:"page"`
}

// StarRequest is the body of PUT /product/star/{productId}.
type StarRequest struct {
	Star int `json:"star"`
}

// InventoryOperation adjusts the counters of one product.
type InventoryOperation struct {
	ProductID     string `json:"productId"`
	QuantityDelta int    `json:"quantityDelta"`
	SoldDelta     int    `json:"soldDelta"`
}

// InventoryRequest is the body of POST /product/inventory.
type InventoryRequest struct {
	Operations []InventoryOperation `json:"operations"`
}

// InventoryResponse reports how many products were matched.
type InventoryResponse struct {
	Matched int `json:"matched"`
}

// SyncResponse summarizes a full index resync.
type SyncResponse struct {
	Message      string   `json:"message"`
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	Total        int      `json:"total"`
	Cancelled    bool     `json:"cancelled"`
	FailedIDs    []string `json:"failedIds,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (req ProductRequest) toAttrs() product.Attrs {
	return product.Attrs{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		CategoryID:     req.Category,
		SubCategoryIDs: req.SubCategories,
		Quantity:       req.Quantity,
		Shipping:       req.Shipping,
		Color:          req.Color,
		Brand:          req.Brand,
		Specifications: req.KeySpecifications,
	}
}

func productToResponse(p product.Product) ProductResponse {
	resp := ProductResponse{
		ID:                p.ID(),
		Title:             p.Title(),
		Slug:              p.Slug(),
		Description:       p.Description(),
		Price:             p.Price(),
		SubCategories:     make([]CategoryRef, 0, len(p.SubCategories())),
		Quantity:          p.Quantity(),
		Sold:              p.Sold(),
		Shipping:          p.Shipping(),
		Color:             p.Color(),
		Brand:             p.Brand(),
		KeySpecifications: p.Specifications(),
		Ratings:           make([]RatingResponse, 0, len(p.Ratings())),
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
	if c := p.Category(); c != nil {
		resp.Category = &CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	for _, sc := range p.SubCategories() {
		resp.SubCategories = append(resp.SubCategories, CategoryRef{
			ID: sc.ID, Name: sc.Name, Slug: sc.Slug, Parent: sc.ParentID,
		})
	}
	for _, r := range p.Ratings() {
		rr := RatingResponse{Star: r.Star, PostedBy: r.PostedBy}
		if r.Rater != nil {
			rr.Rater = &RaterRef{ID: r.Rater.ID, Name: r.Rater.Name}
		}
		resp.Ratings = append(resp.Ratings, rr)
	}
	return resp
}

func productsToResponse(ps []product.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i, p := range ps {
		out[i] = productToResponse(p)
	}
	return out
}

func hitToResponse(h result.Hit) HitResponse {
	resp := HitResponse{ProductResponse: productToResponse(h.Product())}
	if h.Ranked() {
		score, dist := h.Score(), h.Distance()
		resp.SimilarityScore = &score
		resp.Distance = &dist
	}
	return resp
}

func hitsToResponse(hits []result.Hit) []HitResponse {
	out := make([]HitResponse, len(hits))
	for i, h := range hits {
		out[i] = hitToResponse(h)
	}
	return out
}

func turnsFromRequest(turns []ChatTurn) []domassist.Turn {
	out := make([]domassist.Turn, len(turns))
	for i, t := range turns {
		out[i] = domassist.Turn{Role: domassist.Role(t.Role), Content: t.Content}
	}
	return out
}

func deltasFromRequest(ops []InventoryOperation) []product.CounterDelta {
	out := make([]product.CounterDelta, len(ops))
	for i, op := range ops {
		out[i] = product.CounterDelta{ProductID: op.ProductID, Quantity: op.QuantityDelta, Sold: op.SoldDelta}
	}
	return out
}

func summaryToResponse(s dombatch.Summary) SyncResponse {
	msg := "embeddings synced"
	if s.Cancelled {
		msg = "embedding sync cancelled"
	}
	return SyncResponse{
		Message:      msg,
		SuccessCount: s.Succeeded,
		ErrorCount:   s.Failed,
		Total:        s.Total,
		Cancelled:    s.Cancelled,
		FailedIDs:    s.FailedIDs,
	}
}
