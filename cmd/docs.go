package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate reference documentation",
	Long: `Generate man pages or markdown reference for every shopctl command.

Examples:
  shopctl docs --format man --output ./man
  shopctl docs --format markdown --output ./docs/cli`,
	Hidden:      true,
	Annotations: map[string]string{annotationOffline: "true"},
	Args:        cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		dir, _ := cmd.Flags().GetString("output")

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}

		root := cmd.Root()
		root.DisableAutoGenTag = true

		switch format {
		case "man":
			header := &doc.GenManHeader{Title: "SHOPCTL", Section: "1", Source: "shopctl " + version}
			if err := doc.GenManTree(root, header, dir); err != nil {
				return fmt.Errorf("generating man pages: %w", err)
			}
		case "markdown":
			if err := doc.GenMarkdownTree(root, dir); err != nil {
				return fmt.Errorf("generating markdown: %w", err)
			}
		default:
			return fmt.Errorf("unknown format %q: must be man or markdown", format)
		}

		newPrinter(cmd).Success("Wrote %s docs to %s", format, dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().String("format", "markdown", "output format: man, markdown")
	docsCmd.Flags().String("output", "docs", "output directory")
}
