package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

func mapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Manage catalog mappings",
	}

	cmd.AddCommand(mapListCommand())
	cmd.AddCommand(mapAddCommand())
	cmd.AddCommand(mapAliasCommand())

	return cmd
}

func mapListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every catalog mapping",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			doc, err := app.catalog.Load()
			if err != nil {
				return err
			}

			products := make([]*domain.ProductRecord, 0, len(doc.Products))
			for _, key := range doc.Keys() {
				products = append(products, doc.Products[key])
			}

			if jsonOutput() {
				return printJSON(products)
			}
			return printProductTable(products)
		},
	}
}

func mapAddCommand() *cobra.Command {
	var (
		displayName string
		productID   string
		productURL  string
		aliases     []string
	)

	cmd := &cobra.Command{
		Use:   "add <key>",
		Short: "Create or update a mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			rec := domain.ProductRecord{
				DisplayName: displayName,
				ExternalID:  productID,
				URL:         productURL,
				Aliases:     aliases,
			}
			if err := app.catalog.Upsert(args[0], rec, ""); err != nil {
				return err
			}

			fmt.Printf("Mapped %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "", "retailer product name")
	cmd.Flags().StringVar(&productID, "product-id", "", "retailer product identifier")
	cmd.Flags().StringVar(&productURL, "url", "", "retailer product page URL")
	cmd.Flags().StringArrayVar(&aliases, "alias", nil, "free-text phrasing (repeatable)")

	return cmd
}

func mapAliasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "alias <key> <alias>",
		Short: "Bind a confirmed phrasing to an existing mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}

			added, err := app.catalog.AddAlias(args[0], args[1])
			if err != nil {
				return err
			}
			if !added {
				fmt.Println("Nothing to do: unknown product or alias already present")
				return nil
			}

			fmt.Printf("Alias %q now resolves to %q\n", args[1], args[0])
			return nil
		},
	}
}
