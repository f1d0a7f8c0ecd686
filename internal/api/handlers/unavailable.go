package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/grocery-autopilot/internal/unavailable"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// UnavailableHandler serves the unavailability log.
type UnavailableHandler struct {
	log *unavailable.Log
}

// NewUnavailableHandler creates a new UnavailableHandler.
func NewUnavailableHandler(l *unavailable.Log) *UnavailableHandler {
	return &UnavailableHandler{log: l}
}

// ListUnavailableOutput is the response body for the unavailability endpoint.
type ListUnavailableOutput struct {
	Body struct {
		Records []domain.UnavailabilityRecord `json:"records" doc:"Items that could not be added, oldest first"`
	}
}

// ListUnavailable returns every recorded unavailability entry.
func (h *UnavailableHandler) ListUnavailable(_ context.Context, _ *struct{}) (*ListUnavailableOutput, error) {
	records, err := h.log.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("loading unavailability log: " + err.Error())
	}

	out := &ListUnavailableOutput{}
	out.Body.Records = records
	if out.Body.Records == nil {
		out.Body.Records = []domain.UnavailabilityRecord{}
	}
	return out, nil
}

// RegisterUnavailableRoutes registers the unavailability endpoint with the Huma API.
func RegisterUnavailableRoutes(api huma.API, h *UnavailableHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-unavailable",
		Method:      http.MethodGet,
		Path:        "/api/v1/unavailable",
		Summary:     "List unavailable items",
		Description: "Returns the append-only log of items that could not be resolved or added.",
		Tags:        []string{"cart"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListUnavailable)
}
