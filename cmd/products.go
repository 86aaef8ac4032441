package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/output"
	"github.com/swadbest/shopctl/internal/shop"
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product", "p"},
	Short:   "Browse the catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long: `List catalog products, optionally filtered and sorted.

Examples:
  shopctl products list
  shopctl products list --search honey --sort price
  shopctl products list --category ghee --page 2 --limit 20`,
	Args: cobra.NoArgs,
	RunE: runProductsList,
}

var productsShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show a product and its variants",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductsShow,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsShowCmd)

	productsListCmd.Flags().String("search", "", "search term")
	productsListCmd.Flags().String("category", "", "category slug")
	productsListCmd.Flags().String("sort", "", "sort order, e.g. price, -price, newest")
	productsListCmd.Flags().Int("page", 0, "page number")
	productsListCmd.Flags().Int("limit", 0, "products per page")
	addJSONFlag(productsListCmd)
	addJSONFlag(productsShowCmd)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	var q shop.ProductQuery
	q.Search, _ = cmd.Flags().GetString("search")
	q.Category, _ = cmd.Flags().GetString("category")
	q.Sort, _ = cmd.Flags().GetString("sort")
	q.Page, _ = cmd.Flags().GetInt("page")
	q.Limit, _ = cmd.Flags().GetInt("limit")

	page, err := app.shop.Catalog.ListProducts(cmd.Context(), q)
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), page)
	}

	if len(page.Products) == 0 {
		printer.Empty("No products found")
		return nil
	}

	table := printer.NewTable("ID", "NAME", "FROM", "STOCK")
	for _, p := range page.Products {
		from, stock := "-", 0
		if v, ok := p.DefaultVariant(); ok {
			from = output.Money(v.Price)
			stock = totalStock(p)
		}
		table.AddRow([]string{p.ID, p.Name, from, printer.Stock(stock)})
	}
	if err := table.Render(); err != nil {
		return err
	}

	if page.Total > len(page.Products) {
		printer.Info("Showing %d of %d products (page %d)", len(page.Products), page.Total, max(page.Page, 1))
	}
	return nil
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	product, err := app.shop.Catalog.GetProduct(cmd.Context(), args[0])
	if notFound(printer, err, "Product %s not found", args[0]) {
		return nil
	}
	if err != nil {
		return err
	}

	if jsonRequested(cmd) {
		return writeJSON(cmd.OutOrStdout(), product)
	}

	printer.Header(product.Name)
	if product.Category != "" {
		printer.Print("Category: %s", product.Category)
	}
	if product.Description != "" {
		printer.Print("%s", strings.TrimSpace(product.Description))
	}
	if product.Rating > 0 {
		printer.Print("Rating: %.1f", product.Rating)
	}

	if len(product.Variants) == 0 {
		printer.Empty("No variants available")
		return nil
	}

	fmt.Fprintln(printer.Out())
	table := printer.NewTable("VARIANT", "LABEL", "PRICE", "MRP", "STOCK")
	for _, v := range product.Variants {
		mrp := ""
		if v.MRP > v.Price {
			mrp = output.Money(v.MRP)
		}
		table.AddRow([]string{v.ID, v.Label, output.Money(v.Price), mrp, printer.Stock(v.Stock)})
	}
	return table.Render()
}

func totalStock(p shop.Product) int {
	n := 0
	for _, v := range p.Variants {
		if v.Stock > 0 {
			n += v.Stock
		}
	}
	return n
}
