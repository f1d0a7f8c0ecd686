package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
	"github.com/donaldgifford/grocery-autopilot/internal/resolver"
	"github.com/donaldgifford/grocery-autopilot/pkg/normalize"
)

// SuggestHandler serves fuzzy catalog match suggestions for unmapped items.
type SuggestHandler struct {
	catalog       *catalog.Store
	topN          int
	minSimilarity float64
}

// NewSuggestHandler creates a new SuggestHandler. topN and minSimilarity
// are the defaults applied when a request does not override them.
func NewSuggestHandler(cat *catalog.Store, topN int, minSimilarity float64) *SuggestHandler {
	return &SuggestHandler{catalog: cat, topN: topN, minSimilarity: minSimilarity}
}

// SuggestInput is the request body for the suggestions endpoint.
type SuggestInput struct {
	Body struct {
		Item          string  `json:"item" minLength:"1" doc:"Free-text item to match against the catalog" example:"2 gal whole milk"`
		Limit         int     `json:"limit,omitempty" minimum:"1" doc:"Maximum suggestions to return" example:"3"`
		MinSimilarity float64 `json:"min_similarity,omitempty" minimum:"0" maximum:"1" doc:"Minimum similarity score" example:"0.55"`
	}
}

// SuggestionEntry is one scored catalog candidate.
type SuggestionEntry struct {
	Key         string  `json:"key" doc:"Canonical catalog key"`
	DisplayName string  `json:"display_name" doc:"Product display name"`
	Score       float64 `json:"score" doc:"Similarity score in [0,1]"`
}

// SuggestOutput is the response body for the suggestions endpoint.
type SuggestOutput struct {
	Body struct {
		Normalized  string            `json:"normalized" doc:"Item text after quantity normalization"`
		Suggestions []SuggestionEntry `json:"suggestions" doc:"Candidates ordered by descending score"`
	}
}

// Suggest normalizes the item text and scores it against every catalog entry.
func (h *SuggestHandler) Suggest(_ context.Context, input *SuggestInput) (*SuggestOutput, error) {
	doc, err := h.catalog.Load()
	if err != nil {
		return nil, huma.Error500InternalServerError("loading catalog: " + err.Error())
	}

	limit := input.Body.Limit
	if limit <= 0 {
		limit = h.topN
	}
	minSim := input.Body.MinSimilarity
	if minSim <= 0 {
		minSim = h.minSimilarity
	}

	item, ok := normalize.Item(input.Body.Item)
	if !ok {
		return nil, huma.Error422UnprocessableEntity("item is blank")
	}

	out := &SuggestOutput{}
	out.Body.Normalized = item.Normalized
	out.Body.Suggestions = []SuggestionEntry{}
	for _, s := range resolver.Suggest(item.Normalized, doc, limit, minSim) {
		out.Body.Suggestions = append(out.Body.Suggestions, SuggestionEntry{
			Key:         s.Product.CanonicalKey,
			DisplayName: s.Product.DisplayName,
			Score:       s.Score,
		})
	}
	return out, nil
}

// RegisterSuggestRoutes registers the suggestions endpoint with the Huma API.
func RegisterSuggestRoutes(api huma.API, h *SuggestHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "suggest-products",
		Method:      http.MethodPost,
		Path:        "/api/v1/suggestions",
		Summary:     "Suggest catalog matches for an item",
		Description: "Normalizes a free-text item and returns the closest catalog products by similarity.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusInternalServerError},
	}, h.Suggest)
}
