package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every open task resolves to a catalog product",
		Long: "Fetches the current task list and reports which items map to the\n" +
			"catalog and which do not, without opening the store.",
		RunE: func(c *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			mapped, unmapped, err := app.eng.VerifyMappings(c.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return printJSON(map[string][]string{
					"mapped":   mapped,
					"unmapped": unmapped,
				})
			}

			for _, item := range mapped {
				fmt.Println("ok:", item)
			}
			for _, item := range unmapped {
				fmt.Println("UNMAPPED:", item)
			}
			if len(unmapped) == 0 {
				fmt.Printf("All %d item(s) mapped\n", len(mapped))
			} else {
				fmt.Printf("%d of %d item(s) unmapped\n", len(unmapped), len(mapped)+len(unmapped))
			}
			return nil
		},
	}
}
