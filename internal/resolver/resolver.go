// Package resolver decides how each normalized item maps to the product
// catalog: exact canonical-key match, exact alias match, or unmapped.
// Fuzzy candidates are computed only on demand for the escalation flow;
// automatic mapping never happens below full confidence.
package resolver

import (
	"sort"

	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
	"github.com/donaldgifford/grocery-autopilot/pkg/similarity"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// Default fuzzy suggestion parameters.
const (
	DefaultTopN          = 3
	DefaultMinSimilarity = 0.55
)

// Resolve splits items into (mapped, unmapped) against a catalog
// snapshot. The decision is deterministic: a product is attached only on
// an exact key or exact alias match. Input order is preserved.
func Resolve(items []domain.NormalizedItem, doc *catalog.Document) (mapped []domain.Resolution, unmapped []domain.NormalizedItem) {
	for _, item := range items {
		if rec := exactMatch(doc, item.Normalized); rec != nil {
			mapped = append(mapped, domain.Resolution{
				Item:    item,
				Kind:    domain.ResolutionMapped,
				Product: rec,
			})
			continue
		}
		unmapped = append(unmapped, item)
	}
	return mapped, unmapped
}

// exactMatch checks canonical keys, then aliases. Both are compared on
// the normalized form; when the same alias is claimed by several products
// the first in key order wins.
func exactMatch(doc *catalog.Document, normalized string) *domain.ProductRecord {
	key := domain.NormalizeKey(normalized)
	if rec, ok := doc.Products[key]; ok {
		return rec
	}
	for _, k := range doc.Keys() {
		if doc.Products[k].HasAlias(key) {
			return doc.Products[k]
		}
	}
	return nil
}

// Suggest returns up to topN fuzzy candidates for text, each scoring at
// least minSimilarity. The search space is the union of all canonical
// keys and all aliases; an alias match is attributed to its owning
// product, results are deduplicated per product keeping the highest
// score, and sorted descending (ties broken by key for determinism).
func Suggest(text string, doc *catalog.Document, topN int, minSimilarity float64) []domain.Suggestion {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if minSimilarity <= 0 {
		minSimilarity = DefaultMinSimilarity
	}

	needle := domain.NormalizeKey(text)
	best := make(map[string]float64)

	for _, key := range doc.Keys() {
		rec := doc.Products[key]

		score := similarity.Ratio(needle, key)
		for _, alias := range rec.Aliases {
			if s := similarity.Ratio(needle, domain.NormalizeKey(alias)); s > score {
				score = s
			}
		}
		if score >= minSimilarity && score > best[key] {
			best[key] = score
		}
	}

	out := make([]domain.Suggestion, 0, len(best))
	for key, score := range best {
		out = append(out, domain.Suggestion{Product: doc.Products[key], Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Product.CanonicalKey < out[j].Product.CanonicalKey
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
