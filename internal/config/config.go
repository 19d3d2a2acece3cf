// Package config loads service configuration from a YAML file and the
// environment. Environment variables override file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env  string `yaml:"env" env:"ENV" env-default:"local"`
	Port string `yaml:"port" env:"PORT" env-default:"8090"`

	// Auth
	APIKey string `yaml:"api_key" env:"CITEMATCH_API_KEY"`

	// Storage
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`
	DBPath  string `yaml:"db_path" env:"DB_PATH" env-default:"./data/citematch.db"`

	// Law registry
	TripletsPath string `yaml:"triplets_path" env:"TRIPLETS_PATH" env-default:"./registry/abbreviation_triplets.json"`
	TitlesPath   string `yaml:"titles_path" env:"TITLES_PATH" env-default:"./registry/titles_mapping.json"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count" env:"WORKER_COUNT" env-default:"2"`
	MaxQueueSize int `yaml:"max_queue_size" env:"MAX_QUEUE_SIZE" env-default:"50"`

	// Analysis
	CompareWorkers int `yaml:"compare_workers" env:"COMPARE_WORKERS" env-default:"0"`
	ContextWindow  int `yaml:"context_window" env:"CONTEXT_WINDOW" env-default:"300"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"209715200"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl" env:"JOB_TTL" env-default:"24h"`
}

// Load reads configuration from the file named by CONFIG_PATH when set, then
// applies environment overrides. Without a config file the environment and
// defaults alone apply.
func Load() (Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the invariants a running server needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CITEMATCH_API_KEY is required")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker_count must be positive")
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max_queue_size must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	return nil
}
