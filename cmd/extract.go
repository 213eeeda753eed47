package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/egobogo/notionrag/internal/chunk"
	"github.com/egobogo/notionrag/internal/clean"
	"github.com/egobogo/notionrag/internal/embed"
	"github.com/egobogo/notionrag/internal/embed/openai"
	"github.com/egobogo/notionrag/internal/extract"
	"github.com/egobogo/notionrag/internal/metrics"
	"github.com/egobogo/notionrag/internal/notion"
	"github.com/egobogo/notionrag/internal/pipeline"
	"github.com/egobogo/notionrag/internal/settings"
	"github.com/egobogo/notionrag/internal/snapshot"
	"github.com/egobogo/notionrag/internal/trello"
	"github.com/egobogo/notionrag/internal/vector"
	"github.com/egobogo/notionrag/internal/vector/hnsw"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the full extraction and indexing pipeline",
	Long: `Extract fetches every configured Notion database, flattens each page
into a document, cleans it, saves it under the data directory, and indexes
its chunks in the local vector store. With Trello enabled the configured
board is ingested the same way.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings.Load(configFile)
		if err != nil {
			return err
		}
		secrets := settings.LoadSecrets(envFile)
		if secrets.NotionAPIKey == "" {
			return fmt.Errorf("NOTION_API_KEY is not set")
		}

		if cfg.MetricsAddr != "" {
			metrics.Init()
			go func() {
				http.Handle("/metrics", promhttp.Handler())
				if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
					slog.Error("metrics listener stopped", "addr", cfg.MetricsAddr, "error", err)
				}
			}()
		}

		client := notion.NewClient(secrets.NotionAPIKey)
		clean.NotionMinLineLength = cfg.MinLineLength

		var embedder embed.Provider
		var store vector.Store
		var hnswStore *hnsw.HNSWStore
		if secrets.OpenAIAPIKey != "" {
			embedder = openai.NewOpenAIEmbeddingProvider(secrets.OpenAIAPIKey, cfg.EmbeddingModel)
			hnswStore, err = hnsw.New(cfg.EmbeddingDimension)
			if err != nil {
				return err
			}
			if err := hnswStore.Load(cfg.IndexFile); err != nil {
				return err
			}
			store = hnswStore
		} else {
			slog.Warn("OPENAI_API_KEY is not set, skipping embedding and indexing")
		}

		p := &pipeline.Pipeline{
			Fetcher:    notion.NewPageFetcher(client, cfg.TimestampFile),
			Extractor:  extract.NewExtractor(client),
			Splitter:   chunk.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
			Embedder:   embedder,
			Store:      store,
			DataDir:    cfg.DataDir,
			BatchSize:  cfg.BatchSize,
			MaxWorkers: cfg.MaxWorkers,
		}

		summary, err := p.Run(cfg.DatabaseIDs, cfg.Filter)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), "Notion extraction", summary)

		if cfg.Trello.Enabled {
			if secrets.TrelloAPIKey == "" || secrets.TrelloToken == "" {
				return fmt.Errorf("trello is enabled but TRELLO_API_KEY or TRELLO_TOKEN is not set")
			}
			source := trello.NewSource(secrets.TrelloAPIKey, secrets.TrelloToken, cfg.Trello.BoardID)
			trelloSummary, err := p.RunSource("trello_data", source)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), "Trello extraction", trelloSummary)
		}

		if hnswStore != nil {
			if err := hnswStore.Save(cfg.IndexFile); err != nil {
				return fmt.Errorf("failed to save index: %w", err)
			}
			slog.Info("saved index", "file", cfg.IndexFile, "entries", hnswStore.Len())
		}

		if cfg.Snapshot.Enabled {
			repo, err := snapshot.Open(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("failed to open snapshot repository: %w", err)
			}
			message := fmt.Sprintf("Extraction run %s", time.Now().UTC().Format(time.RFC3339))
			hash, err := repo.Commit(message, cfg.Snapshot.AuthorName, cfg.Snapshot.AuthorEmail)
			if err != nil {
				return fmt.Errorf("failed to snapshot data directory: %w", err)
			}
			if hash == "" {
				slog.Info("data directory unchanged, no snapshot taken")
			} else {
				slog.Info("snapshot committed", "hash", hash)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
