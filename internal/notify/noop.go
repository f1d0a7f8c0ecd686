package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded messages. It is
// used when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards messages with a log line.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendRunSummary logs and discards a run summary.
func (n *NoOpNotifier) SendRunSummary(_ context.Context, run *RunPayload) error {
	n.log.Debug("run summary discarded (no backend configured)",
		"list", run.ListName,
		"added", run.Report.Added,
		"failed", run.Report.Failed,
	)
	return nil
}

// SendUnavailable logs and discards unavailability records.
func (n *NoOpNotifier) SendUnavailable(_ context.Context, records []domain.UnavailabilityRecord) error {
	n.log.Debug("unavailability report discarded (no backend configured)",
		"count", len(records),
	)
	return nil
}
