// Package main generates Grafana dashboards and Prometheus rule files for
// grocery-autopilot from the metric definitions in code, so the deployed
// observability artifacts never drift from what the service actually exports.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/grocery-autopilot/tools/dashgen/dashboards"
	"github.com/donaldgifford/grocery-autopilot/tools/dashgen/rules"
	"github.com/donaldgifford/grocery-autopilot/tools/dashgen/validate"
)

const generatedHeader = "# Generated by tools/dashgen. DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	dash, err := dashboards.BuildOverview().Build()
	if err != nil {
		return fmt.Errorf("building overview dashboard: %w", err)
	}

	result := validate.Dashboard(dash, KnownMetrics)
	if !result.Ok() {
		return fmt.Errorf("dashboard validation failed: %v", result.Errors)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	if cfg.DashboardEnabled {
		dashJSON, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling dashboard: %w", err)
		}
		dashJSON = append(dashJSON, '\n')

		path := filepath.Join(cfg.OutputDir, "grafana", "data", "grocer-overview.json")
		if err := writeArtifact(path, dashJSON); err != nil {
			return err
		}
	}

	if cfg.RulesEnabled {
		for name, cr := range map[string]rules.PrometheusRule{
			"grocer-recording-rules.yaml": rules.RecordingRules(),
			"grocer-alerts.yaml":          rules.AlertRules(),
		} {
			data, err := yaml.Marshal(cr)
			if err != nil {
				return fmt.Errorf("marshaling %s: %w", name, err)
			}
			data = append([]byte(generatedHeader), data...)

			path := filepath.Join(cfg.OutputDir, "prometheus", name)
			if err := writeArtifact(path, data); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
