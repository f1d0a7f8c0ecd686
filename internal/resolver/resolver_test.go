package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
	"github.com/donaldgifford/grocery-autopilot/internal/resolver"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func testCatalog() *catalog.Document {
	return &catalog.Document{
		Version: "1.0",
		Products: map[string]*domain.ProductRecord{
			"milk": {
				CanonicalKey: "milk",
				DisplayName:  "Hy-Vee Vitamin D Milk",
				Aliases:      []string{"Whole Milk"},
			},
			"frozen shrimp cocktail": {
				CanonicalKey: "frozen shrimp cocktail",
				DisplayName:  "Frozen Shrimp Cocktail",
				Aliases:      []string{"shrimps"},
			},
			"bread": {
				CanonicalKey: "bread",
				DisplayName:  "Hy-Vee White Bread",
			},
		},
	}
}

func TestResolve_ExactKeyAndAliasMatches(t *testing.T) {
	t.Parallel()

	items := []domain.NormalizedItem{
		{Original: "milk", Normalized: "milk", Quantity: 1},
		{Original: "Whole Milk", Normalized: "whole milk", Quantity: 1},
		{Original: "2 bananas", Normalized: "bananas", Quantity: 2},
	}

	mapped, unmapped := resolver.Resolve(items, testCatalog())

	require.Len(t, mapped, 2)
	assert.Equal(t, domain.ResolutionMapped, mapped[0].Kind)
	assert.Equal(t, "milk", mapped[0].Product.CanonicalKey)
	assert.Equal(t, "milk", mapped[1].Product.CanonicalKey, "alias resolves to owning product")

	require.Len(t, unmapped, 1)
	assert.Equal(t, "bananas", unmapped[0].Normalized)
	assert.Equal(t, 2, unmapped[0].Quantity, "quantity is carried, not part of the decision")
}

func TestResolve_IsDeterministic(t *testing.T) {
	t.Parallel()

	items := []domain.NormalizedItem{
		{Original: "milk", Normalized: "milk", Quantity: 1},
		{Original: "bananas", Normalized: "bananas", Quantity: 1},
	}
	doc := testCatalog()

	first, firstUnmapped := resolver.Resolve(items, doc)
	second, secondUnmapped := resolver.Resolve(items, doc)

	assert.Equal(t, first, second)
	assert.Equal(t, firstUnmapped, secondUnmapped)
}

func TestResolve_NeverMapsFuzzily(t *testing.T) {
	t.Parallel()

	// "milks" is very close to "milk" but no exact match exists.
	items := []domain.NormalizedItem{{Original: "milks", Normalized: "milks", Quantity: 1}}

	mapped, unmapped := resolver.Resolve(items, testCatalog())
	assert.Empty(t, mapped)
	require.Len(t, unmapped, 1)
}

func TestSuggest_FindsMisspelledProduct(t *testing.T) {
	t.Parallel()

	got := resolver.Suggest("shrmp cocktial", testCatalog(), 3, 0.5)

	require.NotEmpty(t, got)
	keys := make([]string, 0, len(got))
	for _, s := range got {
		keys = append(keys, s.Product.CanonicalKey)
		assert.Greater(t, s.Score, 0.5)
	}
	assert.Contains(t, keys, "frozen shrimp cocktail")
}

func TestSuggest_AliasMatchAttributedToOwningProduct(t *testing.T) {
	t.Parallel()

	// "shrimps" is an alias of "frozen shrimp cocktail"; a near-miss on
	// the alias must surface the owning product once, at its best score.
	got := resolver.Suggest("shrimp", testCatalog(), 3, 0.5)

	require.NotEmpty(t, got)
	seen := map[string]int{}
	for _, s := range got {
		seen[s.Product.CanonicalKey]++
	}
	assert.Equal(t, 1, seen["frozen shrimp cocktail"], "deduplicated by owning product")
}

func TestSuggest_SortedDescendingAndTruncated(t *testing.T) {
	t.Parallel()

	doc := &catalog.Document{Products: map[string]*domain.ProductRecord{
		"banana":  {CanonicalKey: "banana", DisplayName: "Bananas"},
		"bananas": {CanonicalKey: "bananas", DisplayName: "Bananas Bag"},
		"bandana": {CanonicalKey: "bandana", DisplayName: "Bandana"},
		"band":    {CanonicalKey: "band", DisplayName: "Rubber Bands"},
	}}

	got := resolver.Suggest("banana", doc, 2, 0.5)

	require.Len(t, got, 2)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
	assert.Equal(t, "banana", got[0].Product.CanonicalKey)
}

func TestSuggest_CutoffExcludesWeakCandidates(t *testing.T) {
	t.Parallel()

	got := resolver.Suggest("zucchini", testCatalog(), 3, 0.6)
	assert.Empty(t, got)
}
