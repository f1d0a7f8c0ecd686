package main

import "errors"

// Config controls where dashgen writes its artifacts.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig writes into the repo's deploy tree when run from tools/dashgen.
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks the config for obvious misconfiguration.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must not be empty")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboards or rules must be enabled")
	}
	return nil
}

// KnownMetrics lists every metric name the service exports plus the
// recording-rule names dashgen itself defines. Dashboard validation warns
// on any query touching a metric outside this set.
var KnownMetrics = map[string]bool{
	// HTTP middleware.
	"grocer_http_request_duration_seconds": true,
	"grocer_http_requests_total":           true,
	"grocer_healthz_up":                    true,
	"grocer_readyz_up":                     true,

	// Run engine.
	"grocer_runs_total":           true,
	"grocer_run_duration_seconds": true,

	// Resolution.
	"grocer_items_resolved_total": true,
	"grocer_items_unmapped_total": true,
	"grocer_aliases_added_total":  true,

	// Cart reconciliation.
	"grocer_cart_adds_total":            true,
	"grocer_cart_add_failures_total":    true,
	"grocer_cart_already_present_total": true,
	"grocer_reconcile_duration_seconds": true,

	// Google Tasks client.
	"grocer_tasks_api_calls_total":        true,
	"grocer_tasks_daily_limit_hits_total": true,

	// Notifications.
	"grocer_notification_failures_total": true,

	// Recording rules defined in rules/recording.go.
	"grocer:http_requests:rate5m":     true,
	"grocer:http_errors:rate5m":       true,
	"grocer:runs:rate1h":              true,
	"grocer:cart_adds:rate5m":         true,
	"grocer:cart_add_failures:rate5m": true,
	"grocer:tasks_api_calls:rate5m":   true,

	// Standard Prometheus metrics.
	"up":                         true,
	"process_start_time_seconds": true,
}
