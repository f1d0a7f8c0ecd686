package hyvee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  string
	}{
		{
			query: "whole milk",
			want:  "https://www.hy-vee.com/aisles-online/search?search=whole+milk",
		},
		{
			query: "  eggs  ",
			want:  "https://www.hy-vee.com/aisles-online/search?search=eggs",
		},
		{
			query: "2% milk",
			want:  "https://www.hy-vee.com/aisles-online/search?search=2%25+milk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildSearchURL(tt.query))
		})
	}
}

func TestParseAddLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		label     string
		wantName  string
		wantPrice string
	}{
		{
			name:      "name and price",
			label:     "Add to cart, Hy-Vee Large Eggs $2.99",
			wantName:  "Hy-Vee Large Eggs",
			wantPrice: "$2.99",
		},
		{
			name:      "price with unit suffix",
			label:     "Add to cart, Bananas $0.62 each",
			wantName:  "Bananas",
			wantPrice: "$0.62",
		},
		{
			name:      "no price",
			label:     "Add to cart, That's Smart Whole Milk",
			wantName:  "That's Smart Whole Milk",
			wantPrice: "",
		},
		{
			name:      "no comma after prefix",
			label:     "Add to cart Bread $1.49",
			wantName:  "Bread",
			wantPrice: "$1.49",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			name, price := ParseAddLabel(tt.label)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantPrice, price)
		})
	}
}

func TestProductIDFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "id with trailing slug",
			url:  "https://www.hy-vee.com/aisles-online/p/31772/hy-vee-large-eggs",
			want: "31772",
		},
		{
			name: "id at end",
			url:  "https://www.hy-vee.com/aisles-online/p/31772",
			want: "31772",
		},
		{
			name: "id with query string",
			url:  "/aisles-online/p/31772?src=search",
			want: "31772",
		},
		{
			name: "no product segment",
			url:  "https://www.hy-vee.com/aisles-online/cart",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ProductIDFromURL(tt.url))
		})
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://www.hy-vee.com/aisles-online/p/1",
		absoluteURL("/aisles-online/p/1"),
	)
	assert.Equal(t,
		"https://www.hy-vee.com/aisles-online/p/1",
		absoluteURL("https://www.hy-vee.com/aisles-online/p/1"),
	)
	assert.Empty(t, absoluteURL(""))
}

func TestCSSEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `Add to cart, That\"s it $1.00`, cssEscape(`Add to cart, That"s it $1.00`))
	assert.Equal(t, `a\\b`, cssEscape(`a\b`))
}
