// Package batch describes the outcome of indexing many products in one run.
package batch

// Result is the outcome of indexing one product.
type Result struct {
	productID string
	err       error
}

// Indexed records a product written to the index.
func Indexed(productID string) Result { return Result{productID: productID} }

// Failed records a product that could not be indexed.
func Failed(productID string, err error) Result { return Result{productID: productID, err: err} }

// ProductID returns the product the result refers to.
func (r Result) ProductID() string { return r.productID }

// OK reports whether the product was indexed.
func (r Result) OK() bool { return r.err == nil }

// Err returns the indexing error, if any.
func (r Result) Err() error { return r.err }
