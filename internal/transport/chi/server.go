// Package chi is the HTTP surface of the product search API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/criterion"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// IgnoredFiltersHeader lists filter fields that lost to a higher-precedence field.
const IgnoredFiltersHeader = "X-Ignored-Filters"

// Services bundles the usecases behind the HTTP surface.
type Services struct {
	Products  ProductService
	Filters   FilterDispatcher
	Semantic  SemanticSearcher
	Assistant Assistant
	Sync      Resyncer
	Health    HealthChecker
}

// Server serves the product search API.
type Server struct {
	products      ProductService
	filters       FilterDispatcher
	semantic      SemanticSearcher
	assistant     Assistant
	sync          Resyncer
	health        HealthChecker
	adminKeys     []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. Admin routes require one of adminKeys;
// an empty list disables admin authentication.
func NewServer(svc Services, adminKeys []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		products:      svc.Products,
		filters:       svc.Filters,
		semantic:      svc.Semantic,
		assistant:     svc.Assistant,
		sync:          svc.Sync,
		health:        svc.Health,
		adminKeys:     adminKeys,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Handler builds the router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/product/search/filters", s.SearchFilters)
		r.Post("/product/semantic-search", s.SemanticSearch)
		r.Post("/product/chat-assistant", s.ChatAssistant)

		r.Get("/product/{slug}", s.GetProduct)
		r.Get("/products/total", s.CountProducts)
		r.Get("/products/{count}", s.ListProducts)
		r.Post("/products", s.SortedProducts)
		r.Put("/product/star/{productId}", s.RateProduct)
		r.Get("/product/related/{productId}", s.RelatedProducts)
		r.Get("/product/category/{categoryId}", s.CategoryProducts)
		r.Get("/product/sub-category/{subCategoryId}", s.SubCategoryProducts)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(s.adminKeys))
			r.Post("/product", s.CreateProduct)
			r.Put("/product/{slug}", s.UpdateProduct)
			r.Delete("/product/{slug}", s.DeleteProduct)
			r.Post("/product/sync-embeddings", s.SyncEmbeddings)
			r.Post("/product/inventory", s.AdjustInventory)
		})
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	)
}

// SearchFilters handles POST /api/product/search/filters.
func (s *Server) SearchFilters(w http.ResponseWriter, r *http.Request) {
	var body criterion.Body
	if !decodeJSON(w, r, &body) {
		return
	}

	c, err := criterion.Decode(body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if ignored := c.Ignored(); len(ignored) > 0 {
		w.Header().Set(IgnoredFiltersHeader, strings.Join(ignored, ","))
		logger.FromContext(r.Context()).Debug("filters ignored",
			zap.String("strategy", string(c.Kind())),
			zap.Strings("ignored", ignored),
		)
	}

	ps, err := s.filters.Dispatch(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(ps))
}

// SemanticSearch handles POST /api/product/semantic-search.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req SemanticSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	hits, err := s.semantic.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SemanticSearchResponse{
		Products: hitsToResponse(hits),
		Count:    len(hits),
	})
}

// ChatAssistant handles POST /api/product/chat-assistant.
func (s *Server) ChatAssistant(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ans, err := s.assistant.Answer(r.Context(), req.Query, turnsFromRequest(req.ConversationHistory))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  ans.Text,
		Products:  hitsToResponse(ans.Products),
		Timestamp: ans.Timestamp,
	})
}

// SyncEmbeddings handles POST /api/product/sync-embeddings.
// The request blocks until the full catalog has been re-indexed or the client goes away.
func (s *Server) SyncEmbeddings(w http.ResponseWriter, r *http.Request) {
	sum, err := s.sync.SyncAll(r.Context(), nil)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(sum))
}

// CreateProduct handles POST /api/product.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.products.Create(r.Context(), req.toAttrs())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/product/"+p.Slug())
	writeJSON(w, http.StatusCreated, productToResponse(p))
}

// GetProduct handles GET /api/product/{slug}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(p))
}

// UpdateProduct handles PUT /api/product/{slug}.
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.products.Update(r.Context(), chi.URLParam(r, "slug"), req.toAttrs())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(p))
}

// DeleteProduct handles DELETE /api/product/{slug}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Delete(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(p))
}

// ListProducts handles GET /api/products/{count}.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	count, err := strconv.Atoi(chi.URLParam(r, "count"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "count must be an integer")
		return
	}
	ps, err := s.products.List(r.Context(), count)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(ps))
}

// SortedProducts handles POST /api/products.
func (s *Server) SortedProducts(w http.ResponseWriter, r *http.Request) {
	var req SortedListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ps, err := s.products.SortedList(r.Context(), req.Sort, req.Order, req.Page)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(ps))
}

// CountProducts handles GET /api/products/total.
func (s *Server) CountProducts(w http.ResponseWriter, r *http.Request) {
	n, err := s.products.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// RateProduct handles PUT /api/product/star/{productId}.
func (s *Server) RateProduct(w http.ResponseWriter, r *http.Request) {
	var req StarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.products.Rate(r.Context(), chi.URLParam(r, "productId"), r.Header.Get(UserIDHeader), req.Star)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(p))
}

// RelatedProducts handles GET /api/product/related/{productId}.
func (s *Server) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.products.Related(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(ps))
}

// CategoryProducts handles GET /api/product/category/{categoryId}.
func (s *Server) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.products.InCategory(r.Context(), chi.URLParam(r, "categoryId"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(ps))
}

// SubCategoryProducts handles GET /api/product/sub-category/{subCategoryId}.
func (s *Server) SubCategoryProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.products.InSubCategory(r.Context(), chi.URLParam(r, "subCategoryId"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToResponse(ps))
}

// AdjustInventory handles POST /api/product/inventory.
func (s *Server) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	var req InventoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := s.products.AdjustInventory(r.Context(), deltasFromRequest(req.Operations))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InventoryResponse{Matched: n})
}

// HealthCheck handles GET /health. Only a total outage answers 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// decodeJSON reads a bounded JSON body; an empty body leaves v untouched.
// On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}
