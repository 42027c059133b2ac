package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/projection"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

const instructions = `Task: Provide a helpful recommendation that:
1. Identifies which product(s) best match the user's needs
2. Explains WHY they're suitable (reference specific specifications)
3. Mentions any important trade-offs or considerations
4. Keeps the response friendly, concise, and easy to understand (2-3 paragraphs maximum)

Do not make up information. Only recommend products from the list above.`

// buildPrompt renders the grounded instruction for the generator.
func buildPrompt(query string, hits []result.Hit) string {
	blocks := make([]string, len(hits))
	for i, h := range hits {
		blocks[i] = productBlock(i+1, h.Product())
	}

	var b strings.Builder
	b.WriteString("You are a helpful shopping assistant for an e-commerce store. ")
	b.WriteString("Your role is to recommend products based on customer needs.\n\n")
	b.WriteString("User Query: \"" + query + "\"\n\n")
	b.WriteString("Relevant Products Found:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\n")
	b.WriteString(instructions)
	return b.String()
}

func productBlock(n int, p product.Product) string {
	return fmt.Sprintf("%d. %s - %s\n   Category: %s\n   Brand: %s\n   Specifications: %s\n   Description: %s",
		n, p.Title(), formatPrice(p.Price()),
		orNA(p.CategoryName()), orNA(p.Brand()),
		formatSpecs(p.Specifications()), orDefault(p.Description(), "No description available"))
}

func formatPrice(price float64) string {
	if price <= 0 {
		return "Price not available"
	}
	return "$" + strconv.FormatFloat(price, 'f', -1, 64)
}

// formatSpecs renders top-level keys as "key: value" joined by "; ".
// A nested mapping renders its direct children as "k: v" joined by ", ".
func formatSpecs(specs product.Specs) string {
	if len(specs) == 0 {
		return "N/A"
	}
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Key + ": " + specValue(s)
	}
	return strings.Join(parts, "; ")
}

func specValue(s product.Spec) string {
	if !s.IsMapping() {
		return projection.FormatValue(s.Value)
	}
	inner := make([]string, len(s.Children))
	for i, c := range s.Children {
		if c.IsMapping() {
			raw, err := c.Children.MarshalJSON()
			if err != nil {
				inner[i] = c.Key + ": "
				continue
			}
			inner[i] = c.Key + ": " + string(raw)
			continue
		}
		inner[i] = c.Key + ": " + projection.FormatValue(c.Value)
	}
	return strings.Join(inner, ", ")
}

func orNA(s string) string { return orDefault(s, "N/A") }

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
