// Package settings loads pipeline configuration: secrets from the
// environment (optionally seeded from a .env file) and run parameters from
// a YAML file.
package settings

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the pipeline parameters loaded from the YAML config file.
type Config struct {
	DatabaseIDs   []string `yaml:"databaseIDs"`
	Filter        string   `yaml:"filter,omitempty"`
	DataDir       string   `yaml:"dataDir"`
	TimestampFile string   `yaml:"timestampFile"`
	ChunkSize     int      `yaml:"chunkSize"`
	ChunkOverlap  int      `yaml:"chunkOverlap"`
	BatchSize     int      `yaml:"batchSize"`
	MaxWorkers    int      `yaml:"maxWorkers"`
	MinLineLength int      `yaml:"minLineLength"`

	EmbeddingModel     string `yaml:"embeddingModel"`
	EmbeddingDimension int    `yaml:"embeddingDimension"`
	IndexFile          string `yaml:"indexFile"`

	MetricsAddr string `yaml:"metricsAddr,omitempty"`

	Snapshot struct {
		Enabled     bool   `yaml:"enabled"`
		AuthorName  string `yaml:"authorName"`
		AuthorEmail string `yaml:"authorEmail"`
	} `yaml:"snapshot"`

	Trello struct {
		Enabled bool   `yaml:"enabled"`
		BoardID string `yaml:"boardID"`
	} `yaml:"trello"`
}

// Secrets holds the credentials read from the environment.
type Secrets struct {
	NotionAPIKey string
	OpenAIAPIKey string
	TrelloAPIKey string
	TrelloToken  string
}

// Load reads and unmarshals the YAML configuration file, filling defaults
// for every unset parameter.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.TimestampFile == "" {
		cfg.TimestampFile = "last_run.txt"
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 100
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 4
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 2
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.EmbeddingDimension <= 0 {
		cfg.EmbeddingDimension = 1536
	}
	if cfg.IndexFile == "" {
		cfg.IndexFile = "index.json"
	}
	if cfg.Snapshot.AuthorName == "" {
		cfg.Snapshot.AuthorName = "notionrag"
	}
	if cfg.Snapshot.AuthorEmail == "" {
		cfg.Snapshot.AuthorEmail = "notionrag@localhost"
	}
}

// LoadSecrets loads the given .env file when it exists and reads the
// credentials from the environment. A missing .env file is fine; the
// process environment alone may carry everything.
func LoadSecrets(envFile string) Secrets {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	return Secrets{
		NotionAPIKey: os.Getenv("NOTION_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		TrelloAPIKey: os.Getenv("TRELLO_API_KEY"),
		TrelloToken:  os.Getenv("TRELLO_TOKEN"),
	}
}
