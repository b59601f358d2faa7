// Package config loads service configuration from the environment, with an
// optional YAML file overlay for deployments that prefer files over env vars.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/exoscan-ai/exoscan-go/pkg/models"
)

// Config holds the application configuration
type Config struct {
	Environment  string  `yaml:"environment"`
	LogLevel     string  `yaml:"log_level"`
	Port         string  `yaml:"port"`
	ModelDBPath  string  `yaml:"model_db_path"`
	DatasetTTL   int     `yaml:"dataset_ttl_seconds"` // registry eviction age
	MaxUploadMB  int     `yaml:"max_upload_mb"`
	TestFraction float64 `yaml:"test_fraction"`
	RandomSeed   int64   `yaml:"random_seed"`

	Training models.Hyperparameters `yaml:"training"`
}

// Load builds the configuration from environment variables. When
// EXOSCAN_CONFIG names a YAML file, its values override the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ModelDBPath:  getEnv("MODEL_DB_PATH", "exoscan_models.db"),
		DatasetTTL:   getEnvAsInt("DATASET_TTL_SECONDS", 3600),
		MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", 100),
		TestFraction: getEnvAsFloat("TEST_FRACTION", 0.2),
		RandomSeed:   int64(getEnvAsInt("RANDOM_SEED", 42)),
		Training:     models.DefaultHyperparameters(),
	}

	if path := os.Getenv("EXOSCAN_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("TEST_FRACTION must be in (0,1), got %v", cfg.TestFraction)
	}
	if cfg.DatasetTTL <= 0 {
		return nil, fmt.Errorf("DATASET_TTL_SECONDS must be positive, got %d", cfg.DatasetTTL)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
