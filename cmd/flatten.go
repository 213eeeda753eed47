package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egobogo/notionrag/internal/extract"
	"github.com/egobogo/notionrag/internal/notion"
	"github.com/egobogo/notionrag/internal/settings"
)

var flattenShowLinks bool

var flattenCmd = &cobra.Command{
	Use:   "flatten <page-id>",
	Short: "Flatten one Notion page to stdout",
	Long: `Flatten fetches a single Notion page, recursively expands its block
tree, and prints the flattened text. Useful for inspecting what the
pipeline would extract from a page.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secrets := settings.LoadSecrets(envFile)
		if secrets.NotionAPIKey == "" {
			return fmt.Errorf("NOTION_API_KEY is not set")
		}

		client := notion.NewClient(secrets.NotionAPIKey)
		result := extract.New(client).Flatten(args[0])

		fmt.Fprintln(cmd.OutOrStdout(), result.Text)
		if flattenShowLinks && len(result.Links) > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Links"))
			for _, link := range result.Links {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
		}
		return nil
	},
}

func init() {
	flattenCmd.Flags().BoolVar(&flattenShowLinks, "links", false, "Also print the harvested links")
	rootCmd.AddCommand(flattenCmd)
}
