package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/egobogo/notionrag/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "notionrag",
	Short: "Extract Notion workspaces into a local searchable knowledge base",
	Long: `notionrag flattens Notion databases into plain-text documents, cleans
them, and indexes their chunks in a local vector store for semantic search.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logging.Init(os.Stderr, level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to the .env file holding API keys")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
