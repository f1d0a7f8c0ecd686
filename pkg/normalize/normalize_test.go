package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/grocery-autopilot/pkg/normalize"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func TestItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantText string
		wantQty  int
	}{
		{name: "plain item", raw: "milk", wantText: "milk", wantQty: 1},
		{name: "lowercased", raw: "Whole Milk", wantText: "whole milk", wantQty: 1},
		{name: "leading quantity", raw: "2 bananas", wantText: "bananas", wantQty: 2},
		{name: "large quantity", raw: "12 eggs", wantText: "eggs", wantQty: 12},
		{name: "dozen", raw: "dozen eggs", wantText: "eggs", wantQty: 12},
		{name: "dozen case-insensitive", raw: "Dozen Eggs", wantText: "eggs", wantQty: 12},
		{name: "multiple dozen", raw: "2 dozen eggs", wantText: "eggs", wantQty: 24},
		{name: "surrounding whitespace", raw: "  3 apples  ", wantText: "apples", wantQty: 3},
		{name: "bare number stays text", raw: "409", wantText: "409", wantQty: 1},
		{name: "number with unit is text after qty", raw: "2 2% milk", wantText: "2% milk", wantQty: 2},
		{name: "malformed prefix kept as text", raw: "2x bananas", wantText: "2x bananas", wantQty: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item, ok := normalize.Item(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.raw, item.Original)
			assert.Equal(t, tt.wantText, item.Normalized)
			assert.Equal(t, tt.wantQty, item.Quantity)
		})
	}
}

func TestItem_DropsBlankInput(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "\t", " \n "} {
		_, ok := normalize.Item(raw)
		assert.False(t, ok, "input %q should be dropped", raw)
	}
}

func TestItems_PreservesOrderAndDropsBlanks(t *testing.T) {
	t.Parallel()

	got := normalize.Items([]string{"2 bananas", "", "milk", "   ", "dozen eggs"})

	require.Len(t, got, 3)
	assert.Equal(t, "bananas", got[0].Normalized)
	assert.Equal(t, "milk", got[1].Normalized)
	assert.Equal(t, "eggs", got[2].Normalized)
	assert.Equal(t, 12, got[2].Quantity)
}

func TestSumQuantities(t *testing.T) {
	t.Parallel()

	items := []domain.NormalizedItem{
		{Original: "2 eggs", Normalized: "eggs", Quantity: 2},
		{Original: "milk", Normalized: "milk", Quantity: 1},
		{Original: "dozen eggs", Normalized: "eggs", Quantity: 12},
	}

	got := normalize.SumQuantities(items)

	require.Len(t, got, 2)
	assert.Equal(t, "eggs", got[0].Normalized)
	assert.Equal(t, 14, got[0].Quantity)
	assert.Equal(t, "milk", got[1].Normalized)
	assert.Equal(t, 1, got[1].Quantity)
}
