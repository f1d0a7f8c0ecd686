package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CartAddsRate returns a timeseries panel showing successful cart adds
// alongside items already present.
func CartAddsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cart Adds / hour").
		Description("Items added to the cart versus already present, per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`grocer:cart_adds:rate5m * 3600`, "added/h", "A")).
		WithTarget(PromQuery(
			`sum(rate(grocer_cart_already_present_total{job="grocery-autopilot"}[5m])) * 3600`,
			"already present/h", "B",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// CartAddFailures returns a timeseries panel showing the cart add failure
// rate.
func CartAddFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Add Failures").
		Description("Failed cart adds per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`grocer:cart_add_failures:rate5m * 3600`, "failures/h", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.5, 2)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ReconcileDuration returns a timeseries panel showing the p95 cart
// reconcile duration.
func ReconcileDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Reconcile Duration (p95)").
		Description("95th percentile cart reconcile duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(grocer_reconcile_duration_seconds_bucket{job="grocery-autopilot"}[1h])) by (le))`,
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
