// Package domain defines the core business types for grocery-autopilot.
package domain

import (
	"strings"
	"time"
)

// ProductRecord represents one purchasable Hy-Vee product.
type ProductRecord struct {
	CanonicalKey string `json:"canonical_key"`
	DisplayName  string `json:"display_name"`

	// ExternalID is the retailer product identifier, parsed from a /p/
	// product URL. It is the strongest signal for cart presence checks.
	ExternalID string `json:"product_id,omitempty"`
	URL        string `json:"url,omitempty"`

	// Aliases are the free-text phrasings known to resolve to this
	// product. Order is preserved for display; matching is
	// case-insensitive.
	Aliases []string `json:"original_requests,omitempty"`

	AddedAt time.Time `json:"added,omitzero"`
}

// HasAlias reports whether alias is already present, case-insensitively.
func (p *ProductRecord) HasAlias(alias string) bool {
	want := NormalizeKey(alias)
	for _, a := range p.Aliases {
		if NormalizeKey(a) == want {
			return true
		}
	}
	return false
}

// NormalizeKey produces the canonical form used for catalog keys and
// alias comparison: trimmed and lower-cased.
func NormalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// NormalizedItem is the per-run result of parsing one raw task title.
// It is never persisted.
type NormalizedItem struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Quantity   int    `json:"quantity"`
}

// ResolutionKind discriminates the outcome of resolving one item.
type ResolutionKind string

// Resolution outcome constants.
const (
	ResolutionMapped          ResolutionKind = "mapped"
	ResolutionFuzzyCandidates ResolutionKind = "fuzzy_candidates"
	ResolutionUnmapped        ResolutionKind = "unmapped"
)

// Resolution is the outcome of resolving one normalized item against a
// catalog snapshot. Product is set only when Kind is ResolutionMapped;
// Candidates only when Kind is ResolutionFuzzyCandidates.
type Resolution struct {
	Item       NormalizedItem
	Kind       ResolutionKind
	Product    *ProductRecord
	Candidates []Suggestion
}

// Suggestion pairs a candidate product with its similarity score in [0,1].
type Suggestion struct {
	Product *ProductRecord `json:"product"`
	Score   float64        `json:"score"`
}

// UnavailabilityReason classifies why an item could not be resolved or added.
type UnavailabilityReason string

// Unavailability reason constants.
const (
	ReasonNotFound     UnavailabilityReason = "not_found"
	ReasonOutOfStock   UnavailabilityReason = "out_of_stock"
	ReasonDiscontinued UnavailabilityReason = "discontinued"
	ReasonAddFailed    UnavailabilityReason = "add_failed"
	ReasonUnknown      UnavailabilityReason = "unknown"
)

// UnavailabilityRecord is one append-only log entry for an item that
// could not be resolved or added to the cart.
type UnavailabilityRecord struct {
	ID         string               `json:"id"`
	Item       string               `json:"item"`
	Reason     UnavailabilityReason `json:"reason"`
	Timestamp  time.Time            `json:"timestamp"`
	SearchTerm string               `json:"search_term,omitempty"`
}

// TargetItem is one fully resolved entry handed to the cart reconciler.
type TargetItem struct {
	Text     string
	Product  *ProductRecord
	Quantity int
}

// RunReport summarizes one reconciliation run.
type RunReport struct {
	Started         time.Time `json:"started"`
	Finished        time.Time `json:"finished"`
	TargetCount     int       `json:"target_count"`
	AlreadyPresent  int       `json:"already_present"`
	Added           int       `json:"added"`
	Failed          int       `json:"failed"`
	AddedItems      []string  `json:"added_items,omitempty"`
	SkippedItems    []string  `json:"skipped_items,omitempty"`
	FailedItems     []string  `json:"failed_items,omitempty"`
	UnexpectedItems []string  `json:"unexpected_items,omitempty"`
}
