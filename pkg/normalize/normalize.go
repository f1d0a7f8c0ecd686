// Package normalize parses raw task titles into structured grocery items:
// quantity prefixes are extracted and the remaining text is lower-cased
// for catalog matching.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

var (
	// "2 dozen eggs" / "dozen eggs"
	dozenRe = regexp.MustCompile(`(?i)^\s*(?:(\d+)\s+)?dozen\s+(.*)$`)
	// "2 bananas". Requires trailing text, so a bare number stays item text.
	leadingQtyRe = regexp.MustCompile(`^\s*(\d+)\s+(\S.*)$`)
)

// Item parses one raw title. The second return value is false for blank
// or whitespace-only input, which is dropped.
//
// Rules, first match wins:
//   - "N dozen <rest>" or "dozen <rest>" sets quantity N*12 (N defaults to 1)
//   - "N <rest>" sets quantity N
//   - otherwise quantity is 1 and the whole trimmed title is the item text
//
// Malformed numeric prefixes are kept as item text, never treated as errors.
func Item(raw string) (domain.NormalizedItem, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.NormalizedItem{}, false
	}

	qty := 1
	if m := dozenRe.FindStringSubmatch(s); m != nil {
		n := 1
		if m[1] != "" {
			if parsed, err := strconv.Atoi(m[1]); err == nil {
				n = parsed
			}
		}
		qty = n * 12
		s = strings.TrimSpace(m[2])
	} else if m := leadingQtyRe.FindStringSubmatch(s); m != nil {
		if parsed, err := strconv.Atoi(m[1]); err == nil {
			qty = parsed
			s = strings.TrimSpace(m[2])
		}
	}

	return domain.NormalizedItem{
		Original:   raw,
		Normalized: strings.ToLower(strings.TrimSpace(s)),
		Quantity:   qty,
	}, true
}

// Items parses a batch of raw titles, dropping blank entries and
// preserving input order.
func Items(raws []string) []domain.NormalizedItem {
	out := make([]domain.NormalizedItem, 0, len(raws))
	for _, raw := range raws {
		if item, ok := Item(raw); ok {
			out = append(out, item)
		}
	}
	return out
}

// SumQuantities collapses duplicate normalized texts into per-text totals,
// preserving first-seen order.
func SumQuantities(items []domain.NormalizedItem) []domain.NormalizedItem {
	index := make(map[string]int, len(items))
	out := make([]domain.NormalizedItem, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.Normalized]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.Normalized] = len(out)
		out = append(out, it)
	}
	return out
}
