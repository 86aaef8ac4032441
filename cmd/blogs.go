package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blogsCmd = &cobra.Command{
	Use:     "blogs",
	Aliases: []string{"blog"},
	Short:   "Read the store blog",
}

var blogsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the latest posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := newPrinter(cmd)

		blogs, err := app.shop.Blogs.Latest(cmd.Context())
		if err != nil {
			return err
		}
		if len(blogs) == 0 {
			printer.Empty("No posts yet")
			return nil
		}

		table := printer.NewTable("SLUG", "TITLE", "PUBLISHED")
		for _, b := range blogs {
			published := ""
			if !b.PublishedAt.IsZero() {
				published = b.PublishedAt.Local().Format("2006-01-02")
			}
			table.AddRow([]string{b.Slug, b.Title, published})
		}
		return table.Render()
	},
}

var blogsShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Read a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printer := newPrinter(cmd)

		blog, err := app.shop.Blogs.BySlug(cmd.Context(), args[0])
		if notFound(printer, err, "Post %s not found", args[0]) {
			return nil
		}
		if err != nil {
			return err
		}

		printer.Header(blog.Title)
		if blog.Author != "" {
			printer.Print("%s", printer.Dim("by "+blog.Author))
		}
		fmt.Fprintln(printer.Out())
		printer.Print("%s", app.shop.Blogs.PlainText(*blog))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blogsCmd)
	blogsCmd.AddCommand(blogsListCmd, blogsShowCmd)
}
