package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// grocery-autopilot operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "grocer-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "grocer-alerts",
					Rules: []Rule{
						{
							Alert: "GrocerDown",
							Expr:  `absent(up{job="grocery-autopilot"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Grocery Autopilot is down",
								"description": "The grocery-autopilot job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "GrocerReadinessDown",
							Expr:  `grocer_readyz_up == 0`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Grocery Autopilot readiness check is failing",
								"description": "The readiness probe has been reporting not-ready for more than 2 minutes. The product catalog file may be corrupt.",
							},
						},
						{
							Alert: "GrocerHighErrorRate",
							Expr:  `grocer:http_errors:rate5m / grocer:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on Grocery Autopilot",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "GrocerRunFailures",
							Expr:  `sum(rate(grocer_runs_total{outcome="failure"}[1h])) > 0`,
							For:   "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Reconcile runs are failing",
								"description": "One or more reconcile runs have failed in the last hour. Check for browser automation or store login problems.",
							},
						},
						{
							Alert: "GrocerCartAddFailures",
							Expr:  `grocer:cart_add_failures:rate5m > 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Cart add failures detected",
								"description": "Items are failing to be added to the store cart. The store page layout may have changed.",
							},
						},
						{
							Alert: "GrocerTasksQuotaHigh",
							Expr:  `sum(increase(grocer_tasks_api_calls_total[24h])) > 800`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Google Tasks API daily usage is above 80% of the budget",
								"description": "Daily Google Tasks API usage has exceeded 800 calls (budget is 1000).",
							},
						},
						{
							Alert: "GrocerTasksLimitReached",
							Expr:  `increase(grocer_tasks_daily_limit_hits_total[5m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Google Tasks API daily budget has been reached",
								"description": "The self-imposed Google Tasks daily call budget has been exhausted. Task syncing is paused until reset.",
							},
						},
						{
							Alert: "GrocerNotificationFailures",
							Expr:  `increase(grocer_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more run notifications (Discord webhooks) have failed to send.",
							},
						},
					},
				},
			},
		},
	}
}
