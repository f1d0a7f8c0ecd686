package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/grocery-autopilot/internal/resolver"
	"github.com/donaldgifford/grocery-autopilot/pkg/normalize"
)

func suggestCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <item>",
		Short: "Show the closest catalog matches for an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			doc, err := app.catalog.Load()
			if err != nil {
				return err
			}

			item, ok := normalize.Item(strings.Join(args, " "))
			if !ok {
				return fmt.Errorf("item is blank")
			}

			topN := limit
			if topN <= 0 {
				topN = app.cfg.Resolver.TopN
			}
			suggestions := resolver.Suggest(
				item.Normalized, doc, topN, app.cfg.Resolver.MinSimilarity,
			)

			if jsonOutput() {
				return printJSON(suggestions)
			}

			if len(suggestions) == 0 {
				fmt.Printf("No catalog matches for %q\n", item.Normalized)
				return nil
			}
			for _, s := range suggestions {
				fmt.Printf("%.2f  %s  (%s)\n",
					s.Score, s.Product.CanonicalKey, s.Product.DisplayName)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions (default from config)")

	return cmd
}
