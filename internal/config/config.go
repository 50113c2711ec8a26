package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alfredjeanlab/blueprint/internal/model"
)

// DefaultConfigPath is the project file read when BLUEPRINT_CONFIG is unset.
const DefaultConfigPath = "blueprint.toml"

type Config struct {
	DatabaseURL string // BLUEPRINT_DATABASE_URL (optional, empty = in-memory store)
	NATSURL     string // BLUEPRINT_NATS_URL (optional, empty = no events)
	HTTPAddr    string // BLUEPRINT_HTTP_ADDR (default ":8080")
	AuthToken   string // BLUEPRINT_AUTH_TOKEN (optional, empty = auth disabled)
	ServerURL   string // BLUEPRINT_SERVER_URL (optional, board commands go through bp serve)
	ProjectID   string // BLUEPRINT_PROJECT_ID (overrides the project file)
	Category    string // BLUEPRINT_CATEGORY (overrides the project file)
	ConfigPath  string // BLUEPRINT_CONFIG (default "blueprint.toml")

	// Sync settings
	SyncInterval   time.Duration // BLUEPRINT_SYNC_INTERVAL (default 3m; 0 = disabled)
	SyncS3Bucket   string        // BLUEPRINT_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // BLUEPRINT_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // BLUEPRINT_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // BLUEPRINT_SYNC_S3_KEY (default "blueprint/{project}/board.jsonl")
	SyncGitRepo    string        // BLUEPRINT_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // BLUEPRINT_SYNC_GIT_FILE (default "boards/{project}.jsonl")
	SyncGitBranch  string        // BLUEPRINT_SYNC_GIT_BRANCH (default "main")

	// StatusMapping comes from the project file only.
	StatusMapping map[model.SourceStatus]model.BoardStatus
}

// Load reads the environment and the project file named by BLUEPRINT_CONFIG.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile reads the environment and the project file at path. An empty
// path falls back to BLUEPRINT_CONFIG, then DefaultConfigPath. A missing
// project file is not an error.
func LoadWithFile(path string) (*Config, error) {
	if path == "" {
		path = envOrDefault("BLUEPRINT_CONFIG", DefaultConfigPath)
	}
	c := &Config{
		DatabaseURL:    os.Getenv("BLUEPRINT_DATABASE_URL"),
		NATSURL:        os.Getenv("BLUEPRINT_NATS_URL"),
		HTTPAddr:       envOrDefault("BLUEPRINT_HTTP_ADDR", ":8080"),
		AuthToken:      os.Getenv("BLUEPRINT_AUTH_TOKEN"),
		ServerURL:      os.Getenv("BLUEPRINT_SERVER_URL"),
		ProjectID:      os.Getenv("BLUEPRINT_PROJECT_ID"),
		Category:       os.Getenv("BLUEPRINT_CATEGORY"),
		ConfigPath:     path,
		SyncS3Bucket:   os.Getenv("BLUEPRINT_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("BLUEPRINT_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("BLUEPRINT_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("BLUEPRINT_SYNC_S3_KEY", "blueprint/{project}/board.jsonl"),
		SyncGitRepo:    os.Getenv("BLUEPRINT_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("BLUEPRINT_SYNC_GIT_FILE", "boards/{project}.jsonl"),
		SyncGitBranch:  envOrDefault("BLUEPRINT_SYNC_GIT_BRANCH", "main"),
	}

	intervalStr := envOrDefault("BLUEPRINT_SYNC_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("BLUEPRINT_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	pf, err := LoadProjectFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.apply(pf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// apply fills settings the environment left empty from the project file.
func (c *Config) apply(pf *ProjectFile) error {
	if c.ProjectID == "" {
		c.ProjectID = pf.ProjectID
	}
	if c.Category == "" {
		c.Category = pf.Category
	}
	mapping, err := pf.Statuses()
	if err != nil {
		return err
	}
	c.StatusMapping = mapping
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
