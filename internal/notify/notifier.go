// Package notify defines the notification interface and implementations
// for run result delivery.
package notify

import (
	"context"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// RunPayload contains the data needed to report one reconciliation run.
type RunPayload struct {
	ListName string
	Report   domain.RunReport
}

// Notifier defines the interface for delivering run results.
type Notifier interface {
	SendRunSummary(ctx context.Context, run *RunPayload) error
	SendUnavailable(ctx context.Context, records []domain.UnavailabilityRecord) error
}
