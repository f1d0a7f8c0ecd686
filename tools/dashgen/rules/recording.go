package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "grocer-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "grocer-recording",
					Rules: []Rule{
						{
							Record: "grocer:http_requests:rate5m",
							Expr:   `sum(rate(grocer_http_requests_total[5m]))`,
						},
						{
							Record: "grocer:http_errors:rate5m",
							Expr:   `sum(rate(grocer_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "grocer:runs:rate1h",
							Expr:   `sum(rate(grocer_runs_total[1h]))`,
						},
						{
							Record: "grocer:cart_adds:rate5m",
							Expr:   `sum(rate(grocer_cart_adds_total[5m]))`,
						},
						{
							Record: "grocer:cart_add_failures:rate5m",
							Expr:   `sum(rate(grocer_cart_add_failures_total[5m]))`,
						},
						{
							Record: "grocer:tasks_api_calls:rate5m",
							Expr:   `sum(rate(grocer_tasks_api_calls_total[5m]))`,
						},
					},
				},
			},
		},
	}
}
