package config

import (
	"testing"

	"labchart/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"LOG_LEVEL", "LABCHART_MISSING_TOKENS", "LABCHART_HEADER_SAMPLE_ROWS", "LABCHART_ENCODING",
		"LABCHART_IQR_K", "LABCHART_ZSCORE_THRESHOLD", "LABCHART_SMOOTHING_WINDOW", "LABCHART_WORKERS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Ingest.HeaderSampleRows)
	assert.Equal(t, "auto", cfg.Ingest.Encoding)
	assert.Equal(t, 1.5, cfg.Analysis.IQRMultiplier)
	assert.Equal(t, 3.0, cfg.Analysis.ZScoreThreshold)
	assert.Equal(t, 5, cfg.Analysis.SmoothingWindow)
	assert.Equal(t, 4, cfg.Analysis.Workers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LABCHART_MISSING_TOKENS", "NA, --, ,missing")
	t.Setenv("LABCHART_ENCODING", "LATIN-1")
	t.Setenv("LABCHART_SMOOTHING_WINDOW", "7")
	t.Setenv("LABCHART_WORKERS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, []string{"NA", "--", "missing"}, cfg.Ingest.MissingTokens)
	assert.Equal(t, "latin-1", cfg.Ingest.Encoding)
	assert.Equal(t, 7, cfg.Analysis.SmoothingWindow)
	assert.Equal(t, 2, cfg.Analysis.Workers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"even window", "LABCHART_SMOOTHING_WINDOW", "4"},
		{"unknown encoding", "LABCHART_ENCODING", "ebcdic"},
		{"zero workers", "LABCHART_WORKERS", "0"},
		{"negative k", "LABCHART_IQR_K", "-1"},
		{"bad level", "LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
