// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/grocery-autopilot/tools/dashgen/panels"
)

// BuildOverview constructs the Grocer Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Grocer Overview").
		Uid("grocer-overview").
		Tags([]string{"grocer", "grocery-autopilot"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Runs.
	b.WithRow(dashboard.NewRowBuilder("Runs").
		WithPanel(panels.RunsRate()).
		WithPanel(panels.RunFailures()).
		WithPanel(panels.RunDuration()))

	// Row 4: Resolution.
	b.WithRow(dashboard.NewRowBuilder("Resolution").
		WithPanel(panels.ResolvedRate()).
		WithPanel(panels.UnmappedRate()).
		WithPanel(panels.AliasesAdded()))

	// Row 5: Cart.
	b.WithRow(dashboard.NewRowBuilder("Cart").
		WithPanel(panels.CartAddsRate()).
		WithPanel(panels.CartAddFailures()).
		WithPanel(panels.ReconcileDuration()))

	// Row 6: Tasks API.
	b.WithRow(dashboard.NewRowBuilder("Tasks API").
		WithPanel(panels.APICallsRate()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.LimitHits()))

	// Row 7: Notifications.
	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
