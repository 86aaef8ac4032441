package cmd

import (
	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/shop"
)

var wishlistCmd = &cobra.Command{
	Use:     "wishlist",
	Aliases: []string{"wl"},
	Short:   "Manage saved products",
}

var wishlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved products",
	Args:  cobra.NoArgs,
	RunE:  runWishlistList,
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <product-id> [variant-id]",
	Short: "Save or unsave a product",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runWishlistToggle,
}

var wishlistMoveCmd = &cobra.Command{
	Use:   "move <product-id> [variant-id]",
	Short: "Move a saved product into the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, variantID := args[0], optionalArg(args, 1)
		if err := app.shop.Wishlist.MoveToCart(cmd.Context(), productID, variantID); err != nil {
			return err
		}
		printer := newPrinter(cmd)
		printer.Success("Moved %s to the cart", productID)
		printBadges(printer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wishlistCmd)
	wishlistCmd.AddCommand(wishlistListCmd, wishlistToggleCmd, wishlistMoveCmd)
	addJSONFlag(wishlistListCmd)
}

func runWishlistList(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	items, err := app.shop.Wishlist.List(cmd.Context())
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), items)
	}

	if len(items) == 0 {
		printer.Empty("Your wishlist is empty")
		return nil
	}

	table := printer.NewTable("PRODUCT", "NAME", "PRICE", "ADDED")
	for _, it := range items {
		table.AddRow([]string{it.ProductID, it.Name, output.Money(it.Price), it.AddedAt})
	}
	return table.Render()
}

func runWishlistToggle(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	productID, variantID := args[0], optionalArg(args, 1)

	items, err := app.shop.Wishlist.List(cmd.Context())
	if err != nil {
		return err
	}

	state := shop.NewWishlistState(app.shop.Wishlist, items)
	liked, err := state.Toggle(cmd.Context(), productID, variantID)
	if err != nil {
		return err
	}

	if liked {
		printer.Success("Saved %s to your wishlist", productID)
	} else {
		printer.Success("Removed %s from your wishlist", productID)
	}
	printBadges(printer)
	return nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
