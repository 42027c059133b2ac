package shopsearch

import (
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// Specs is an ordered key-specification tree. JSON key order is preserved.
type Specs = product.Specs

// Spec is one key of a Specs tree.
type Spec = product.Spec

// ProductInput is the body of product create and update.
type ProductInput struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Price             float64  `json:"price"`
	Category          string   `json:"category,omitempty"`
	SubCategories     []string `json:"subCategories,omitempty"`
	Quantity          int      `json:"quantity"`
	Shipping          string   `json:"shipping,omitempty"`
	Color             string   `json:"color,omitempty"`
	Brand             string   `json:"brand,omitempty"`
	KeySpecifications Specs    `json:"keySpecifications,omitempty"`
}

// CategoryRef is a category or sub-category reference.
type CategoryRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent string `json:"parent,omitempty"`
}

// Rating is one star rating.
type Rating struct {
	Star     int    `json:"star"`
	PostedBy string `json:"postedBy"`
}

// Product is a catalog product.
type Product struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Slug              string        `json:"slug"`
	Description       string        `json:"description"`
	Price             float64       `json:"price"`
	Category          *CategoryRef  `json:"category,omitempty"`
	SubCategories     []CategoryRef `json:"subCategories"`
	Quantity          int           `json:"quantity"`
	Sold              int           `json:"sold"`
	Shipping          string        `json:"shipping,omitempty"`
	Color             string        `json:"color,omitempty"`
	Brand             string        `json:"brand,omitempty"`
	KeySpecifications Specs         `json:"keySpecifications,omitempty"`
	Ratings           []Rating      `json:"ratings"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Hit is a semantic search result. Score and Distance are nil for unranked results.
type Hit struct {
	Product
	SimilarityScore *float64 `json:"similarityScore,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
}

// Filters selects products through the catalog filter endpoint.
// Only the highest-precedence non-empty field applies.
type Filters struct {
	Query       string    `json:"query,omitempty"`
	Price       []float64 `json:"price,omitempty"`
	Category    []string  `json:"category,omitempty"`
	Stars       int       `json:"stars,omitempty"`
	SubCategory string    `json:"subCategory,omitempty"`
	Shipping    string    `json:"shipping,omitempty"`
	Color       string    `json:"color,omitempty"`
	Brand       string    `json:"brand,omitempty"`
}

// FilterResult lists matching products and the filters that lost to a higher-precedence one.
type FilterResult struct {
	Products []Product
	Ignored  []string
}

// Turn is one prior conversation message.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the grounded assistant answer.
type ChatReply struct {
	Response  string    `json:"response"`
	Products  []Hit     `json:"products"`
	Timestamp time.Time `json:"timestamp"`
}

// InventoryOp adjusts the counters of one product.
type InventoryOp struct {
	ProductID     string `json:"productId"`
	QuantityDelta int    `json:"quantityDelta"`
	SoldDelta     int    `json:"soldDelta"`
}

// SyncSummary reports a full index resync.
type SyncSummary struct {
	Message      string   `json:"message"`
	SuccessCount int      `json:"successCount"`
	ErrorCount   int      `json:"errorCount"`
	Total        int      `json:"total"`
	Cancelled    bool     `json:"cancelled"`
	FailedIDs    []string `json:"failedIds,omitempty"`
}

// HealthReport is the server health.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
