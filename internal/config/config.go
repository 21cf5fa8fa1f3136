package config

import (
	"os"
	"strconv"

	"protquant/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig
	Paths    PathConfig
	Seed     int64
}

// PipelineConfig holds the decision thresholds and sample layout inputs
type PipelineConfig struct {
	FDRThreshold           float64
	RelevanceFoldThreshold float64
	ConditionA             string
	ConditionB             string
}

// PathConfig holds file system paths
type PathConfig struct {
	PeptideFile    string
	AnnotationFile string
	OutDir         string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Pipeline: PipelineConfig{
			FDRThreshold:           getEnvFloatOrDefault("PROTQUANT_FDR_THRESHOLD", 0.01),
			RelevanceFoldThreshold: getEnvFloatOrDefault("PROTQUANT_RELEVANCE_FOLD", 1.25),
			ConditionA:             getEnvOrDefault("PROTQUANT_CONDITION_A", "control"),
			ConditionB:             getEnvOrDefault("PROTQUANT_CONDITION_B", "treated"),
		},
		Paths: PathConfig{
			PeptideFile:    getEnvOrDefault("PROTQUANT_PEPTIDE_FILE", ""),
			AnnotationFile: getEnvOrDefault("PROTQUANT_ANNOTATION_FILE", ""),
			OutDir:         getEnvOrDefault("PROTQUANT_OUT_DIR", "out"),
		},
		Seed: getEnvInt64OrDefault("PROTQUANT_SEED", 42),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Pipeline.FDRThreshold <= 0 || config.Pipeline.FDRThreshold >= 1 {
		return errors.ConfigInvalid("PROTQUANT_FDR_THRESHOLD must be in (0,1)")
	}
	if config.Pipeline.RelevanceFoldThreshold <= 1 {
		return errors.ConfigInvalid("PROTQUANT_RELEVANCE_FOLD must be > 1")
	}
	if config.Pipeline.ConditionA == "" || config.Pipeline.ConditionB == "" {
		return errors.ConfigInvalid("condition prefixes must be set")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
