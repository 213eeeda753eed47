package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egobogo/notionrag/internal/embed/openai"
	"github.com/egobogo/notionrag/internal/settings"
	"github.com/egobogo/notionrag/internal/vector/hnsw"
)

var (
	searchK         int
	searchThreshold float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the local index",
	Long: `Search embeds the query text and returns the closest indexed chunks
from the local vector store, best match first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings.Load(configFile)
		if err != nil {
			return err
		}
		secrets := settings.LoadSecrets(envFile)
		if secrets.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}

		store, err := hnsw.New(cfg.EmbeddingDimension)
		if err != nil {
			return err
		}
		if err := store.Load(cfg.IndexFile); err != nil {
			return err
		}
		if store.Len() == 0 {
			return fmt.Errorf("index %s is empty, run extract first", cfg.IndexFile)
		}

		provider := openai.NewOpenAIEmbeddingProvider(secrets.OpenAIAPIKey, cfg.EmbeddingModel)
		embedding, err := provider.ComputeEmbedding(args[0])
		if err != nil {
			return fmt.Errorf("failed to embed query: %w", err)
		}

		matches, err := store.Search(embedding, searchK, searchThreshold)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No matches."))
			return nil
		}

		for i, match := range matches {
			header := fmt.Sprintf("%d. %s", i+1, match.Entry.Metadata.Title)
			score := fmt.Sprintf("similarity %.3f, document %s", match.Similarity, match.Entry.DocumentID)
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render(header))
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render(score))
			fmt.Fprintln(cmd.OutOrStdout(), match.Entry.Text)
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "top", "k", 5, "Number of matches to return")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "Minimum similarity for a match")
	rootCmd.AddCommand(searchCmd)
}
