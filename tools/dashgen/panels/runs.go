package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RunsRate returns a timeseries panel showing reconcile runs per hour by
// outcome.
func RunsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Runs / hour").
		Description("Reconcile runs per hour by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(grocer_runs_total{job="grocery-autopilot"}[1h])) by (outcome) * 3600`,
			"{{outcome}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RunFailures returns a timeseries panel showing the failed run rate.
func RunFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Run Failures").
		Description("Failed reconcile runs per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(grocer_runs_total{job="grocery-autopilot",outcome="failure"}[1h])) * 3600`,
			"failures/h", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.5, 2)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// RunDuration returns a timeseries panel showing the p95 run duration.
func RunDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Run Duration (p95)").
		Description("95th percentile end-to-end run duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(grocer_run_duration_seconds_bucket{job="grocery-autopilot"}[1h])) by (le))`,
			"p95",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
