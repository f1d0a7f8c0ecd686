package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/grocery-autopilot/internal/engine"
	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// Runner triggers a full list-to-cart run. Satisfied by *engine.Engine.
type Runner interface {
	Run(ctx context.Context, opts engine.RunOptions) (*engine.RunResult, error)
}

// RunHandler triggers pipeline runs over HTTP.
type RunHandler struct {
	runner Runner
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(r Runner) *RunHandler {
	return &RunHandler{runner: r}
}

// RunInput is the request body for the run trigger endpoint.
type RunInput struct {
	Body struct {
		DryRun            bool `json:"dry_run,omitempty" doc:"Resolve and plan without touching the cart"`
		IgnoreUnavailable bool `json:"ignore_unavailable,omitempty" doc:"Log add failures and continue instead of aborting"`
		IgnoreUnmapped    bool `json:"ignore_unmapped,omitempty" doc:"Skip unmapped items instead of halting"`
	}
}

// RunOutput is the response body for a completed run.
type RunOutput struct {
	Body struct {
		DryRun         bool              `json:"dry_run" doc:"Whether the run stopped after planning"`
		Planned        []string          `json:"planned" doc:"Resolved target item texts"`
		Report         *domain.RunReport `json:"report,omitempty" doc:"Reconciliation report, absent for dry runs"`
		TasksCompleted int               `json:"tasks_completed" doc:"Task titles marked complete"`
	}
}

// TriggerRun executes a synchronous run. The call blocks for the full
// browser session, so clients should use generous timeouts.
func (h *RunHandler) TriggerRun(ctx context.Context, input *RunInput) (*RunOutput, error) {
	res, err := h.runner.Run(ctx, engine.RunOptions{
		DryRun:            input.Body.DryRun,
		IgnoreUnavailable: input.Body.IgnoreUnavailable,
		IgnoreUnmapped:    input.Body.IgnoreUnmapped,
	})
	if err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			switch derr.Kind {
			case domain.KindUnknownItem:
				return nil, huma.Error422UnprocessableEntity(derr.Format())
			case domain.KindAuthRequired, domain.KindSetupRequired:
				return nil, huma.Error503ServiceUnavailable(derr.Format())
			}
		}
		return nil, huma.Error500InternalServerError("run failed: " + err.Error())
	}

	out := &RunOutput{}
	out.Body.DryRun = input.Body.DryRun
	out.Body.Planned = []string{}
	for _, t := range res.Planned {
		out.Body.Planned = append(out.Body.Planned, t.Text)
	}
	out.Body.Report = res.Report
	out.Body.TasksCompleted = res.TasksCompleted
	return out, nil
}

// RegisterRunRoutes registers the run trigger endpoint with the Huma API.
func RegisterRunRoutes(api huma.API, h *RunHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/runs",
		Summary:     "Trigger a list-to-cart run",
		Description: "Fetches open tasks, resolves them against the catalog, and reconciles the store cart.",
		Tags:        []string{"runs"},
		Errors: []int{
			http.StatusUnprocessableEntity,
			http.StatusServiceUnavailable,
			http.StatusInternalServerError,
		},
	}, h.TriggerRun)
}
