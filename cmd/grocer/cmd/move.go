package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func moveCommand() *cobra.Command {
	var (
		fromList string
		toList   string
		items    []string
	)

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move task titles to another list",
		Long: "Relocates non-grocery titles off the grocery list so they stop\n" +
			"blocking runs. Matching is case-insensitive on the full title.",
		RunE: func(c *cobra.Command, _ []string) error {
			if len(items) == 0 {
				return errors.New("at least one --item is required")
			}

			app, err := buildApp()
			if err != nil {
				return err
			}
			if fromList != "" {
				app.cfg.Tasks.ListName = fromList
			}

			moved, err := app.eng.MoveItems(c.Context(), toList, items)
			if err != nil {
				return err
			}

			fmt.Printf("Moved %d item(s)\n", moved)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromList, "list", "", "source list (default from config)")
	cmd.Flags().StringVar(&toList, "to", "", "destination list (default from config)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "task title to move (repeatable)")

	return cmd
}
