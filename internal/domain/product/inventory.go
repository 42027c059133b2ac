package product

import (
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// CounterDelta adjusts stock and sales counters of one product, e.g. after an order is placed.
type CounterDelta struct {
	ProductID string
	Quantity  int
	Sold      int
}

// ValidateDeltas rejects an empty batch and entries without a product id.
func ValidateDeltas(ops []CounterDelta) error {
	if len(ops) == 0 {
		return fmt.Errorf("%w: at least one operation is required", domain.ErrInvalidRequest)
	}
	for i, op := range ops {
		if op.ProductID == "" {
			return fmt.Errorf("%w: operation %d: productId is required", domain.ErrInvalidRequest, i)
		}
	}
	return nil
}
