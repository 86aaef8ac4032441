package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swadbest/shopctl/internal/output"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show featured products and the latest posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := newPrinter(cmd)

		app.counts.Start(cmd.Context())

		feed, err := app.shop.Home.Load(cmd.Context())
		if err != nil {
			return err
		}

		if user := app.session.User(); user != nil {
			c := app.counts.Counts()
			printer.Print("Hello, %s  %s", orDefault(user.Name, user.Email), printer.Badges(c.Cart, c.Wishlist))
		}

		printer.Header("Featured")
		if len(feed.Products) == 0 {
			printer.Empty("No products yet")
		} else {
			table := printer.NewTable("ID", "NAME", "FROM")
			for _, p := range feed.Products {
				from := "-"
				if v, ok := p.DefaultVariant(); ok {
					from = output.Money(v.Price)
				}
				table.AddRow([]string{p.ID, p.Name, from})
			}
			if err := table.Render(); err != nil {
				return err
			}
		}

		if len(feed.Blogs) > 0 {
			printer.Header("From the blog")
			for _, b := range feed.Blogs {
				line := b.Title
				if b.Excerpt != "" {
					line = fmt.Sprintf("%s: %s", b.Title, printer.Dim(b.Excerpt))
				}
				printer.Print("  %s", line)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(homeCmd)
}
