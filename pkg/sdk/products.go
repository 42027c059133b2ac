package shopsearch

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// GetProduct returns the product with the given slug.
func (c *Client) GetProduct(ctx context.Context, slug string) (Product, error) {
	var p Product
	_, err := c.do(ctx, call{
		op:     "get_product",
		method: http.MethodGet,
		path:   "/api/product/" + url.PathEscape(slug),
		out:    &p,
	})
	return p, err
}

// CreateProduct adds a product. Admin only.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var p Product
	_, err := c.do(ctx, call{
		op:     "create_product",
		method: http.MethodPost,
		path:   "/api/product",
		body:   in,
		out:    &p,
	})
	return p, err
}

// UpdateProduct replaces the product attributes. Admin only.
func (c *Client) UpdateProduct(ctx context.Context, slug string, in ProductInput) (Product, error) {
	var p Product
	_, err := c.do(ctx, call{
		op:     "update_product",
		method: http.MethodPut,
		path:   "/api/product/" + url.PathEscape(slug),
		body:   in,
		out:    &p,
	})
	return p, err
}

// DeleteProduct removes a product and returns it. Admin only.
func (c *Client) DeleteProduct(ctx context.Context, slug string) (Product, error) {
	var p Product
	_, err := c.do(ctx, call{
		op:     "delete_product",
		method: http.MethodDelete,
		path:   "/api/product/" + url.PathEscape(slug),
		out:    &p,
	})
	return p, err
}

// ListProducts returns up to limit products, newest first.
func (c *Client) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	var ps []Product
	_, err := c.do(ctx, call{
		op:     "list_products",
		method: http.MethodGet,
		path:   "/api/products/" + strconv.Itoa(limit),
		out:    &ps,
	})
	return ps, err
}

// SortedProducts returns one page of the catalog sorted by field.
func (c *Client) SortedProducts(ctx context.Context, sort, order string, page int) ([]Product, error) {
	var ps []Product
	_, err := c.do(ctx, call{
		op:     "sorted_products",
		method: http.MethodPost,
		path:   "/api/products",
		body: struct {
			Sort  string `json:"sort"`
			Order string `json:"order"`
			Page  int    `json:"page"`
		}{Sort: sort, Order: order, Page: page},
		out: &ps,
	})
	return ps, err
}

// CountProducts returns the catalog size.
func (c *Client) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	_, err := c.do(ctx, call{
		op:     "count_products",
		method: http.MethodGet,
		path:   "/api/products/total",
		out:    &n,
	})
	return n, err
}

// RateProduct records the star rating of userID for a product.
func (c *Client) RateProduct(ctx context.Context, productID, userID string, star int) (Product, error) {
	var p Product
	_, err := c.do(ctx, call{
		op:      "rate_product",
		method:  http.MethodPut,
		path:    "/api/product/star/" + url.PathEscape(productID),
		body:    struct{ Star int `json:"star"` }{Star: star},
		out:     &p,
		headers: map[string]string{userIDHeader: userID},
	})
	return p, err
}

// RelatedProducts returns products of the same category.
func (c *Client) RelatedProducts(ctx context.Context, productID string) ([]Product, error) {
	var ps []Product
	_, err := c.do(ctx, call{
		op:     "related_products",
		method: http.MethodGet,
		path:   "/api/product/related/" + url.PathEscape(productID),
		out:    &ps,
	})
	return ps, err
}

// CategoryProducts lists the products of a category.
func (c *Client) CategoryProducts(ctx context.Context, categoryID string) ([]Product, error) {
	var ps []Product
	_, err := c.do(ctx, call{
		op:     "category_products",
		method: http.MethodGet,
		path:   "/api/product/category/" + url.PathEscape(categoryID),
		out:    &ps,
	})
	return ps, err
}

// SubCategoryProducts lists the products tagged with a sub-category.
func (c *Client) SubCategoryProducts(ctx context.Context, subCategoryID string) ([]Product, error) {
	var ps []Product
	_, err := c.do(ctx, call{
		op:     "sub_category_products",
		method: http.MethodGet,
		path:   "/api/product/sub-category/" + url.PathEscape(subCategoryID),
		out:    &ps,
	})
	return ps, err
}

// AdjustInventory applies stock and sales deltas in bulk. Admin only.
// It returns how many products matched.
func (c *Client) AdjustInventory(ctx context.Context, ops []InventoryOp) (int, error) {
	var resp struct {
		Matched int `json:"matched"`
	}
	_, err := c.do(ctx, call{
		op:     "adjust_inventory",
		method: http.MethodPost,
		path:   "/api/product/inventory",
		body:   struct{ Operations []InventoryOp `json:"operations"` }{Operations: ops},
		out:    &resp,
	})
	return resp.Matched, err
}
