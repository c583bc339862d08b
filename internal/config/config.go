package config

import (
	"os"
	"strconv"
	"strings"

	"labchart/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig
	Ingest   IngestConfig
	Analysis AnalysisConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `validate:"oneof=ERROR WARN WARNING INFO DEBUG TRACE"`
}

// IngestConfig holds loader settings
type IngestConfig struct {
	MissingTokens    []string
	HeaderSampleRows int    `validate:"gte=2,lte=1000"`
	Encoding         string `validate:"oneof=auto utf-8 latin-1"`
}

// AnalysisConfig holds the default parameters handed to the engines
type AnalysisConfig struct {
	IQRMultiplier   float64 `validate:"gt=0"`
	ZScoreThreshold float64 `validate:"gt=0"`
	SmoothingWindow int     `validate:"gte=1"`
	Workers         int     `validate:"gte=1,lte=256"`
}

// DefaultMissingTokens are the cell spellings read as Missing besides the empty string.
var DefaultMissingTokens = []string{"NA", "N/A", "-", "NaN", "null"}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Log: LogConfig{
			Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
		},
		Ingest: IngestConfig{
			MissingTokens:    getEnvListOrDefault("LABCHART_MISSING_TOKENS", DefaultMissingTokens),
			HeaderSampleRows: getEnvIntOrDefault("LABCHART_HEADER_SAMPLE_ROWS", 5),
			Encoding:         strings.ToLower(getEnvOrDefault("LABCHART_ENCODING", "auto")),
		},
		Analysis: AnalysisConfig{
			IQRMultiplier:   getEnvFloatOrDefault("LABCHART_IQR_K", 1.5),
			ZScoreThreshold: getEnvFloatOrDefault("LABCHART_ZSCORE_THRESHOLD", 3.0),
			SmoothingWindow: getEnvIntOrDefault("LABCHART_SMOOTHING_WINDOW", 5),
			Workers:         getEnvIntOrDefault("LABCHART_WORKERS", 4),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if config.Analysis.SmoothingWindow%2 == 0 {
		return errors.ConfigInvalid("LABCHART_SMOOTHING_WINDOW must be odd")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
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

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
