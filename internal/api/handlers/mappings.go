package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/grocery-autopilot/internal/catalog"
	"github.com/donaldgifford/grocery-autopilot/internal/metrics"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// MappingHandler handles product catalog read and mutation endpoints.
type MappingHandler struct {
	catalog *catalog.Store
}

// NewMappingHandler creates a new MappingHandler.
func NewMappingHandler(cat *catalog.Store) *MappingHandler {
	return &MappingHandler{catalog: cat}
}

// ListMappingsOutput is the response body for the mapping list endpoint.
type ListMappingsOutput struct {
	Body struct {
		Products []domain.ProductRecord `json:"products" doc:"Catalog products in key order"`
	}
}

// ListMappings returns every catalog product in canonical key order.
func (h *MappingHandler) ListMappings(_ context.Context, _ *struct{}) (*ListMappingsOutput, error) {
	doc, err := h.catalog.Load()
	if err != nil {
		return nil, huma.Error500InternalServerError("loading catalog: " + err.Error())
	}

	out := &ListMappingsOutput{}
	out.Body.Products = []domain.ProductRecord{}
	for _, key := range doc.Keys() {
		out.Body.Products = append(out.Body.Products, *doc.Products[key])
	}
	return out, nil
}

// UpsertMappingInput is the request body for creating or updating a mapping.
type UpsertMappingInput struct {
	Body struct {
		Key         string   `json:"key" minLength:"1" doc:"Canonical product key" example:"whole milk"`
		DisplayName string   `json:"display_name,omitempty" doc:"Retailer product name" example:"Hy-Vee Whole Milk Gallon"`
		ProductID   string   `json:"product_id,omitempty" doc:"Retailer product identifier" example:"31772"`
		URL         string   `json:"url,omitempty" doc:"Retailer product page URL"`
		Aliases     []string `json:"aliases,omitempty" doc:"Free-text phrasings that resolve to this product"`
	}
}

// UpsertMappingOutput is the response body after a mapping upsert.
type UpsertMappingOutput struct {
	Body struct {
		Product domain.ProductRecord `json:"product" doc:"The stored product after the merge"`
	}
}

// UpsertMapping merges a product record into the catalog.
func (h *MappingHandler) UpsertMapping(_ context.Context, input *UpsertMappingInput) (*UpsertMappingOutput, error) {
	rec := domain.ProductRecord{
		DisplayName: input.Body.DisplayName,
		ExternalID:  input.Body.ProductID,
		URL:         input.Body.URL,
		Aliases:     input.Body.Aliases,
	}
	if err := h.catalog.Upsert(input.Body.Key, rec, ""); err != nil {
		return nil, huma.Error500InternalServerError("saving catalog: " + err.Error())
	}

	stored, err := h.catalog.Lookup(input.Body.Key)
	if err != nil || stored == nil {
		return nil, huma.Error500InternalServerError("reloading catalog after upsert")
	}

	out := &UpsertMappingOutput{}
	out.Body.Product = *stored
	return out, nil
}

// AddAliasInput is the request body for confirming an alias.
type AddAliasInput struct {
	Key  string `path:"key" doc:"Canonical product key"`
	Body struct {
		Alias string `json:"alias" minLength:"1" doc:"Free-text phrasing to bind to the product" example:"2% milk"`
	}
}

// AddAliasOutput is the response body after an alias confirmation.
type AddAliasOutput struct {
	Body struct {
		Added bool `json:"added" doc:"Whether the alias was new"`
	}
}

// AddAlias binds a human-confirmed phrasing to an existing product, so
// the next run resolves it exactly instead of fuzzily.
func (h *MappingHandler) AddAlias(_ context.Context, input *AddAliasInput) (*AddAliasOutput, error) {
	added, err := h.catalog.AddAlias(input.Key, input.Body.Alias)
	if err != nil {
		return nil, huma.Error500InternalServerError("saving catalog: " + err.Error())
	}
	if added {
		metrics.AliasesAddedTotal.Inc()
	}

	out := &AddAliasOutput{}
	out.Body.Added = added
	return out, nil
}

// RegisterMappingRoutes registers the catalog mapping endpoints with the Huma API.
func RegisterMappingRoutes(api huma.API, h *MappingHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-mappings",
		Method:      http.MethodGet,
		Path:        "/api/v1/mappings",
		Summary:     "List catalog mappings",
		Description: "Returns every product mapping in the catalog.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListMappings)

	huma.Register(api, huma.Operation{
		OperationID: "upsert-mapping",
		Method:      http.MethodPost,
		Path:        "/api/v1/mappings",
		Summary:     "Create or update a catalog mapping",
		Description: "Merges a product record into the catalog under its canonical key.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.UpsertMapping)

	huma.Register(api, huma.Operation{
		OperationID: "add-alias",
		Method:      http.MethodPost,
		Path:        "/api/v1/mappings/{key}/aliases",
		Summary:     "Add an alias to a mapping",
		Description: "Binds a confirmed free-text phrasing to an existing product.",
		Tags:        []string{"catalog"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.AddAlias)
}
