package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/shop"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [variant-id]",
	Short: "Add a product variant to the cart",
	Long: `Add a product variant to the cart. Without a variant id the first
in-stock variant is used.

Examples:
  shopctl cart add p1 v1
  shopctl cart add p1 --qty 3`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCartAdd,
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartUpdate,
}

var cartRemoveCmd = &cobra.Command{
	Use:     "remove <item-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a line from the cart",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.shop.Cart.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		printer := newPrinter(cmd)
		printer.Success("Removed %s from the cart", args[0])
		printBadges(printer)
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

var cartCountsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show cart and wishlist counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := newPrinter(cmd)
		app.counts.Start(cmd.Context())
		c := app.counts.Counts()
		if jsonRequested(cmd) {
			return writeJSON(cmd.OutOrStdout(), c)
		}
		fmt.Fprintln(printer.Out(), printer.Badges(c.Cart, c.Wishlist))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd, cartCountsCmd)

	cartAddCmd.Flags().Int("qty", 1, "quantity to add")
	addYesFlag(cartClearCmd)
	addJSONFlag(cartShowCmd)
	addJSONFlag(cartCountsCmd)
}

func runCartShow(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	cart, err := app.shop.Cart.Get(cmd.Context())
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), cart)
	}

	if len(cart.Items) == 0 {
		printer.Empty("Your cart is empty")
		return nil
	}

	table := printer.NewTable("ITEM", "PRODUCT", "VARIANT", "PRICE", "QTY", "TOTAL")
	for _, item := range cart.Items {
		table.AddRow([]string{
			item.ID,
			item.Name,
			item.Variant,
			output.Money(item.Price),
			strconv.Itoa(item.Quantity),
			output.Money(item.LineTotal()),
		})
	}
	if err := table.Render(); err != nil {
		return err
	}
	printer.Print("Total: %s", printer.Bold(output.Money(cart.Total())))
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)
	qty, _ := cmd.Flags().GetInt("qty")

	if !app.session.IsAuthenticated() {
		return shop.ErrLoginRequired
	}

	product, err := app.shop.Catalog.GetProduct(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	variant, err := pickVariant(product, args[1:])
	if err != nil {
		return err
	}

	button := app.shop.AddToCartButton(product.ID, variant, shop.WithStateListener(func(s shop.ButtonState) {
		logger.Debug("add to cart", "product_id", product.ID, "variant_id", variant.ID, "state", s.String())
	}))
	defer button.Close()

	if err := button.Click(cmd.Context(), qty); err != nil {
		return err
	}

	printer.Success("%s: %s (%s) x%d", button.State(), product.Name, variant.Label, qty)
	printBadges(printer)
	return nil
}

func runCartUpdate(cmd *cobra.Command, args []string) error {
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return &output.CLIError{
			Summary:  fmt.Sprintf("invalid quantity %q", args[1]),
			ExitCode: output.ExitUsageError,
		}
	}

	cart, err := app.shop.Cart.UpdateQuantity(cmd.Context(), args[0], qty)
	if err != nil {
		return err
	}

	printer := newPrinter(cmd)
	printer.Success("Updated %s to %d, cart total %s", args[0], qty, output.Money(cart.Total()))
	printBadges(printer)
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	if !app.session.IsAuthenticated() {
		return shop.ErrLoginRequired
	}

	ok, err := confirm(cmd, "Remove every item from your cart?")
	if err != nil {
		return err
	}
	if !ok {
		return aborted("clear cart")
	}

	if err := app.shop.Cart.Clear(cmd.Context()); err != nil {
		return err
	}

	printer := newPrinter(cmd)
	printer.Success("Cart cleared")
	printBadges(printer)
	return nil
}

// pickVariant returns the requested variant, or the default one when none is named
func pickVariant(p *shop.Product, args []string) (shop.Variant, error) {
	if len(args) > 0 {
		v, ok := p.Variant(args[0])
		if !ok {
			return shop.Variant{}, &output.CLIError{
				Summary:    fmt.Sprintf("product %s has no variant %s", p.ID, args[0]),
				Suggestion: fmt.Sprintf("Run 'shopctl products show %s' to list variants", p.ID),
				ExitCode:   output.ExitValidation,
			}
		}
		return v, nil
	}

	v, ok := p.DefaultVariant()
	if !ok {
		return shop.Variant{}, &output.CLIError{
			Summary:  fmt.Sprintf("product %s has no variants", p.ID),
			ExitCode: output.ExitValidation,
		}
	}
	return v, nil
}

// printBadges shows the counts refreshed by the last mutation
func printBadges(p *output.Printer) {
	c := app.counts.Counts()
	p.Info("%s", p.Badges(c.Cart, c.Wishlist))
}
