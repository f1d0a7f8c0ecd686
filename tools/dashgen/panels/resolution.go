package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// ResolvedRate returns a timeseries panel showing resolved items per hour.
func ResolvedRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Items Resolved / hour").
		Description("List items resolved to catalog products per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(grocer_items_resolved_total{job="grocery-autopilot"}[1h])) * 3600`,
			"resolved/h", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// UnmappedRate returns a timeseries panel showing unmapped items per hour.
func UnmappedRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Unmapped Items / hour").
		Description("List items with no catalog mapping per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(rate(grocer_items_unmapped_total{job="grocery-autopilot"}[1h])) * 3600`,
			"unmapped/h", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(0.5, 2)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// AliasesAdded returns a stat panel showing aliases added in the past 7 days.
func AliasesAdded() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Aliases Added (7d)").
		Description("Catalog aliases recorded in the last 7 days").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`sum(increase(grocer_aliases_added_total{job="grocery-autopilot"}[7d]))`,
			"", "A",
		)).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
