package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Whole Milk", want: "whole milk"},
		{name: "trims", in: "  eggs  ", want: "eggs"},
		{name: "already normalized", in: "bread", want: "bread"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.NormalizeKey(tt.in))
		})
	}
}

func TestProductRecord_HasAlias(t *testing.T) {
	t.Parallel()

	p := &domain.ProductRecord{
		CanonicalKey: "milk",
		DisplayName:  "Hy-Vee Vitamin D Milk",
		Aliases:      []string{"Whole Milk", "vitamin d milk"},
	}

	assert.True(t, p.HasAlias("whole milk"))
	assert.True(t, p.HasAlias("  WHOLE MILK  "))
	assert.True(t, p.HasAlias("Vitamin D Milk"))
	assert.False(t, p.HasAlias("skim milk"))
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	err := domain.AddFailedError("milk", 2, "https://www.hy-vee.com/p/12345")
	got := err.Format()

	assert.Contains(t, got, "ERROR [11]: Failed to add item to cart")
	assert.Contains(t, got, `Context: Item "milk", attempted 2 times`)
	assert.Contains(t, got, "Next step: Add manually: https://www.hy-vee.com/p/12345 then re-run")
}

func TestError_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *domain.Error
		wantKind domain.ErrorKind
		wantCode int
	}{
		{
			name:     "unknown item",
			err:      domain.UnknownItemError("bananas", "https://example.test/search", "Groceries", "To Purchase"),
			wantKind: domain.KindUnknownItem,
			wantCode: domain.ExitUnknownItem,
		},
		{
			name:     "search no results",
			err:      domain.SearchNoResultsError("bananas", "https://example.test/search"),
			wantKind: domain.KindSearchNoResults,
			wantCode: domain.ExitStoreFailure,
		},
		{
			name:     "add failed",
			err:      domain.AddFailedError("bananas", 2, "https://example.test/p/1"),
			wantKind: domain.KindAddFailed,
			wantCode: domain.ExitAddFailed,
		},
		{
			name:     "auth required",
			err:      domain.AuthRequiredError("login control still visible"),
			wantKind: domain.KindAuthRequired,
			wantCode: domain.ExitStoreFailure,
		},
		{
			name:     "setup required",
			err:      domain.SetupRequiredError("chrome not found"),
			wantKind: domain.KindSetupRequired,
			wantCode: domain.ExitStoreFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantKind, tt.err.Kind)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.NotEmpty(t, tt.err.NextStep)
		})
	}
}
