package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"docsift/internal/chunker"
	"docsift/internal/ranker"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort           string
	DBPath            string
	LogLevel          slog.Level
	LogFormat         string // "text" or "json"
	InboxDir          string // Optional directory ingested at startup
	MaxUploadBytes    int64
	MaxConcurrentJobs int
	Retrieval         RetrievalConfig
}

// RetrievalConfig holds the chunking and ranking parameters.
// It can be provided by the YAML file named in DOCSIFT_CONFIG and is then
// overridden by CHUNK_SIZE, CHUNK_OVERLAP and MAX_CHUNKS.
type RetrievalConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MaxChunks    int `yaml:"max_chunks"`
}

// fileConfig is the layout of the optional YAML config file.
type fileConfig struct {
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// DefaultRetrieval returns the default chunking and ranking parameters.
func DefaultRetrieval() RetrievalConfig {
	return RetrievalConfig{
		ChunkSize:    chunker.DefaultChunkSize,
		ChunkOverlap: chunker.DefaultOverlap,
		MaxChunks:    ranker.DefaultMaxChunks,
	}
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the result.
// If a .env file exists in the current directory or a parent directory, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:   getEnv("API_PORT", "9000"),
		DBPath:    getEnv("DB_PATH", "./data/docsift.db"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		InboxDir:  getEnv("INBOX_DIR", ""),
		Retrieval: DefaultRetrieval(),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.MaxConcurrentJobs, err = getEnvInt("MAX_CONCURRENT_JOBS", 4); err != nil {
		return nil, err
	}

	if path := getEnv("DOCSIFT_CONFIG", ""); path != "" {
		if err := loadFile(path, &cfg.Retrieval); err != nil {
			return nil, err
		}
	}

	if cfg.Retrieval.ChunkSize, err = getEnvInt("CHUNK_SIZE", cfg.Retrieval.ChunkSize); err != nil {
		return nil, err
	}
	if cfg.Retrieval.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", cfg.Retrieval.ChunkOverlap); err != nil {
		return nil, err
	}
	if cfg.Retrieval.MaxChunks, err = getEnvInt("MAX_CHUNKS", cfg.Retrieval.MaxChunks); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create the directory holding the DB file if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks that numeric settings are usable.
func (c *Config) Validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be greater than 0")
	}
	if c.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be greater than 0")
	}
	return c.Retrieval.Validate()
}

// Validate checks that chunking and ranking parameters are usable.
func (r RetrievalConfig) Validate() error {
	if r.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if r.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative")
	}
	if r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be less than CHUNK_SIZE (%d)", r.ChunkOverlap, r.ChunkSize)
	}
	if r.MaxChunks <= 0 {
		return fmt.Errorf("MAX_CHUNKS must be greater than 0")
	}
	return nil
}

// loadFile overlays the retrieval section of a YAML config file onto rc.
// Keys absent from the file keep their current values.
func loadFile(path string, rc *RetrievalConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fc := fileConfig{Retrieval: *rc}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	*rc = fc.Retrieval
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
