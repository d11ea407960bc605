// Package query assembles the natural-language request handed to the agent.
package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/richinex/shopwise/catalog"
)

// Query is the single string the agent receives.
type Query string

// String returns the query text.
func (q Query) String() string {
	return string(q)
}

var (
	// ErrUnknownCategory is returned for a category not in the catalog.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidBudget is returned for a negative or non-finite budget.
	ErrInvalidBudget = errors.New("invalid budget")
)

// Build concatenates category, budget, features and free text, in that
// order. Features are joined with ", " and the free text is appended only
// when it is non-empty.
func Build(category string, budget float64, features []string, freeText string) (Query, error) {
	if !catalog.Known(category) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if math.IsNaN(budget) || math.IsInf(budget, 0) || budget < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidBudget, budget)
	}

	var b strings.Builder
	b.WriteString("Looking for a ")
	b.WriteString(strings.ToLower(category))
	b.WriteString(" under $")
	b.WriteString(FormatBudget(budget))
	if len(features) > 0 {
		b.WriteString(" with ")
		b.WriteString(strings.Join(features, ", "))
	}
	if freeText != "" {
		b.WriteString(". Additional requirements: ")
		b.WriteString(freeText)
	}
	return Query(b.String()), nil
}

// FormatBudget renders the budget with the fewest digits that round-trip,
// so 1000 prints as "1000" and 999.5 as "999.5".
func FormatBudget(budget float64) string {
	return strconv.FormatFloat(budget, 'f', -1, 64)
}
