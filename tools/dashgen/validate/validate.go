// Package validate checks generated dashboards for broken PromQL and
// references to metrics the service does not export.
package validate

import (
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/prometheus/prometheus/promql/parser"
)

// Result aggregates validation findings. Errors are unparsable queries,
// warnings are queries touching metrics outside the known set.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation found no errors. Warnings do not fail
// validation.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

// Dashboard validates every Prometheus query target in the dashboard:
// each expression must parse as PromQL, and every metric it selects must
// appear in knownMetrics. Histogram child series (_bucket, _sum, _count)
// are checked against their base metric name.
func Dashboard(dash dashboard.Dashboard, knownMetrics map[string]bool) Result {
	var result Result

	for _, p := range dash.Panels {
		if p.Panel != nil {
			checkPanel(*p.Panel, knownMetrics, &result)
		}
		if p.RowPanel != nil {
			for _, inner := range p.RowPanel.Panels {
				checkPanel(inner, knownMetrics, &result)
			}
		}
	}

	return result
}

func checkPanel(p dashboard.Panel, knownMetrics map[string]bool, result *Result) {
	title := "untitled"
	if p.Title != nil {
		title = *p.Title
	}

	for _, target := range p.Targets {
		expr := exprOf(target)
		if expr == "" {
			continue
		}

		names, err := metricNames(expr)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("panel %q: invalid PromQL %q: %v", title, expr, err))
			continue
		}

		for _, name := range names {
			if !metricKnown(name, knownMetrics) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("panel %q: unknown metric %q", title, name))
			}
		}
	}
}

func exprOf(target any) string {
	switch q := target.(type) {
	case prometheus.Dataquery:
		return q.Expr
	case *prometheus.Dataquery:
		return q.Expr
	default:
		return ""
	}
}

// metricNames parses the expression and returns every metric name selected
// by a vector selector.
func metricNames(expr string) ([]string, error) {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, err
	}

	var names []string
	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		if vs, ok := node.(*parser.VectorSelector); ok && vs.Name != "" {
			names = append(names, vs.Name)
		}
		return nil
	})
	return names, nil
}

func metricKnown(name string, knownMetrics map[string]bool) bool {
	if knownMetrics[name] {
		return true
	}
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, ok := strings.CutSuffix(name, suffix); ok && knownMetrics[base] {
			return true
		}
	}
	return false
}
