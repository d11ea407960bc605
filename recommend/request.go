package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/richinex/shopwise/catalog"
)

// MaxBudget is the largest budget accepted, in USD.
const MaxBudget = 10000

// Request is the user's selection.
type Request struct {
	Category string   `json:"category"`
	Budget   float64  `json:"budget"`
	Features []string `json:"features,omitempty"`
	FreeText string   `json:"free_text,omitempty"`
}

// Normalize resolves the category case-insensitively and trims free text.
func (r Request) Normalize() Request {
	if c, err := catalog.Resolve(r.Category); err == nil {
		r.Category = c.Name
	}
	r.FreeText = strings.TrimSpace(r.FreeText)
	return r
}

// Validate checks the category, the budget range, and that every feature
// belongs to the category.
func (r Request) Validate() error {
	category, ok := catalog.Lookup(r.Category)
	if !ok {
		return fmt.Errorf("%w: unknown category %q (known: %s)",
			ErrInvalidRequest, r.Category, strings.Join(catalog.Names(), ", "))
	}
	if math.IsNaN(r.Budget) || math.IsInf(r.Budget, 0) || r.Budget < 0 || r.Budget > MaxBudget {
		return fmt.Errorf("%w: budget must be between 0 and %d, got %v", ErrInvalidRequest, MaxBudget, r.Budget)
	}

	seen := make(map[string]bool, len(r.Features))
	for _, f := range r.Features {
		if !category.HasFeature(f) {
			return fmt.Errorf("%w: %q is not a %s feature", ErrInvalidRequest, f, category.Name)
		}
		if seen[f] {
			return fmt.Errorf("%w: feature %q selected twice", ErrInvalidRequest, f)
		}
		seen[f] = true
	}
	return nil
}
