package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"linkpred/internal/features"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Models struct {
		Dir string `yaml:"dir"` // holds <Strategy>Classifier.yaml files
	} `yaml:"models"`
	Features features.Options `yaml:"features"`
	Log      struct {
		Level string `yaml:"level"` // debug, info, warn, error
	} `yaml:"log"`
	Storage struct {
		DBPath string `yaml:"db_path"` // empty disables the prediction log
	} `yaml:"storage"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Models.Dir = "models"
	cfg.Features.LargestN = features.DefaultLargestN
	cfg.Log.Level = "info"
	return &cfg
}

// LoadConfig reads path on top of the defaults and applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if dir := os.Getenv("LINKPRED_MODELS_DIR"); dir != "" {
		cfg.Models.Dir = dir
	}
	if n := os.Getenv("LINKPRED_LARGEST_N"); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("LINKPRED_LARGEST_N: %w", err)
		}
		cfg.Features.LargestN = v
	}
	if level := os.Getenv("LINKPRED_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if db := os.Getenv("LINKPRED_DB"); db != "" {
		cfg.Storage.DBPath = db
	}

	return cfg, nil
}
