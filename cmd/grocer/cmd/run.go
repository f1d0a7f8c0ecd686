package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/grocery-autopilot/internal/engine"
)

func runCommand() *cobra.Command {
	var (
		dryRun            bool
		ignoreUnavailable bool
		ignoreUnmapped    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the task list and reconcile the store cart",
		RunE: func(c *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			res, err := app.eng.Run(c.Context(), engine.RunOptions{
				DryRun:            dryRun,
				IgnoreUnavailable: ignoreUnavailable,
				IgnoreUnmapped:    ignoreUnmapped,
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return printJSON(res)
			}

			if dryRun {
				fmt.Printf("Would reconcile %d item(s):\n", len(res.Planned))
				for _, t := range res.Planned {
					fmt.Printf("  %dx %s\n", t.Quantity, t.Text)
				}
				return nil
			}

			if res.Report != nil {
				if err := printReport(res.Report); err != nil {
					return err
				}
			}
			if res.TasksCompleted > 0 {
				fmt.Printf("Marked %d task(s) complete\n", res.TasksCompleted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and plan without touching the cart")
	cmd.Flags().BoolVar(&ignoreUnavailable, "ignore-unavailable", false,
		"log items the store cannot supply and keep going")
	cmd.Flags().BoolVar(&ignoreUnmapped, "ignore-unmapped", false,
		"skip items with no catalog mapping instead of halting")

	return cmd
}
