package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/canvas-agent/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CANVAS_API_KEY", "GEMINI_API_KEY", "API_KEY", "CANVAS_USE_MOCK_LLM",
		"CANVAS_STORAGE_BACKEND", "CANVAS_GCP_PROJECT", "CANVAS_LANGUAGE",
		"CANVAS_THINKING_BUDGET", "CANVAS_LOG_LEVEL", "CANVAS_PORT", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestLoadMockModeWithoutKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("CANVAS_USE_MOCK_LLM", "1")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.UseMockLLM)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "vi", cfg.Language)
	assert.Equal(t, config.StorageMemory, cfg.StorageBackend)
	assert.Equal(t, int32(32768), cfg.ThinkingBudget)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("CANVAS_LANGUAGE", "English")
	t.Setenv("CANVAS_LOG_LEVEL", "debug")
	t.Setenv("CANVAS_CANVAS_MODEL", "gemini-test")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.APIKey)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "gemini-test", cfg.CanvasModel)
	assert.Equal(t, "gemini-2.5-flash", cfg.RouterModel)
}

func TestLoadFirestoreNeedsProject(t *testing.T) {
	clearEnv(t)
	t.Setenv("CANVAS_API_KEY", "k")
	t.Setenv("CANVAS_STORAGE_BACKEND", "firestore")

	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("CANVAS_GCP_PROJECT", "demo")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.GCPProjectID)
}
