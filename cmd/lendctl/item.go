package main

import (
	"context"
	"fmt"
	"strconv"

	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/core/services"

	"github.com/spf13/cobra"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Adjust item inventory",
}

var itemWriteOffCmd = &cobra.Command{
	Use:   "write-off <item-id>",
	Short: "Remove one lost copy from an item's inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		catalog := services.NewCatalogService(repositories.NewStore(db), lendingService())
		item, err := catalog.WriteOffCopy(context.Background(), uint(id))
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s: %d/%d available (%s)\n", item.Title, item.AvailableCopies, item.TotalCopies, item.Status)
		return nil
	},
}

func init() {
	itemCmd.AddCommand(itemWriteOffCmd)
	rootCmd.AddCommand(itemCmd)
}
