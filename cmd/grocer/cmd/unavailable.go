package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func unavailableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unavailable",
		Short: "List items the store could not supply",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			records, err := app.unavail.List()
			if err != nil {
				return err
			}

			if jsonOutput() {
				return printJSON(records)
			}

			if len(records) == 0 {
				fmt.Println("No unavailable items recorded")
				return nil
			}
			return printUnavailableTable(records)
		},
	}
}
