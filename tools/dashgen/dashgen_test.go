package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/grocery-autopilot/tools/dashgen/dashboards"
	"github.com/donaldgifford/grocery-autopilot/tools/dashgen/rules"
	"github.com/donaldgifford/grocery-autopilot/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_EmptyOutputDir(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "", DashboardEnabled: true}
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_NothingEnabled(t *testing.T) {
	t.Parallel()
	cfg := Config{OutputDir: "/tmp", DashboardEnabled: false, RulesEnabled: false}
	assert.Error(t, cfg.Validate())
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	builder := dashboards.BuildOverview()
	dash, err := builder.Build()
	require.NoError(t, err)

	// Verify dashboard metadata.
	require.NotNil(t, dash.Uid)
	assert.Equal(t, "grocer-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Grocer Overview", *dash.Title)

	// Verify template variable.
	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	// Verify we have 7 rows.
	assert.Len(t, dash.Panels, 7)

	// Count total inner panels.
	totalPanels := 0
	for _, p := range dash.Panels {
		if p.RowPanel != nil {
			totalPanels += len(p.RowPanel.Panels)
		}
	}
	assert.Equal(t, 20, totalPanels)

	// Validate PromQL and metrics.
	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "grocer-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "grocer-recording", group.Name)
	require.Len(t, group.Rules, 6)

	expectedRecords := []string{
		"grocer:http_requests:rate5m",
		"grocer:http_errors:rate5m",
		"grocer:runs:rate1h",
		"grocer:cart_adds:rate5m",
		"grocer:cart_add_failures:rate5m",
		"grocer:tasks_api_calls:rate5m",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.NotEmpty(t, rule.Expr)
	}

	// Verify YAML marshaling works.
	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "grocer-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "grocer-alerts", group.Name)
	require.Len(t, group.Rules, 8)

	expectedAlerts := []string{
		"GrocerDown",
		"GrocerReadinessDown",
		"GrocerHighErrorRate",
		"GrocerRunFailures",
		"GrocerCartAddFailures",
		"GrocerTasksQuotaHigh",
		"GrocerTasksLimitReached",
		"GrocerNotificationFailures",
	}
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Expr)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, false))

	tests := []struct {
		name     string
		path     string
		contains string
	}{
		{
			name:     "grocer-overview.json",
			path:     filepath.Join(dir, "grafana", "data", "grocer-overview.json"),
			contains: `"uid": "grocer-overview"`,
		},
		{
			name:     "grocer-recording-rules.yaml",
			path:     filepath.Join(dir, "prometheus", "grocer-recording-rules.yaml"),
			contains: "record: grocer:http_requests:rate5m",
		},
		{
			name:     "grocer-alerts.yaml",
			path:     filepath.Join(dir, "prometheus", "grocer-alerts.yaml"),
			contains: "alert: GrocerDown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := os.ReadFile(tt.path)
			require.NoError(t, err, "could not read generated file %s", tt.path)
			assert.Contains(t, string(data), tt.contains)
		})
	}
}

func TestRunValidateOnlyWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
