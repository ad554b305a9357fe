package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, "file:invoices.db", cfg.Database.URL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "prebuilt-invoice", cfg.DocIntel.ModelID)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Deployment)
	assert.Equal(t, "body_model.txt", cfg.Paths.BodyModelsFile)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/invoices")
	t.Setenv("DB_MAX_CONNS", "3")
	t.Setenv("AZURE_OPENAI_TIMEOUT", "30s")
	t.Setenv("AZURE_OPENAI_TEMPERATURE", "0.2")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://localhost/invoices", cfg.Database.URL)
	assert.Equal(t, 3, cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.InDelta(t, 0.2, float64(cfg.LLM.Temperature), 0.001)
}

func TestValidateRequiresServiceCredentials(t *testing.T) {
	cfg := LoadConfig()
	require.Error(t, cfg.Validate())

	t.Setenv("AZURE_DOC_INTELLIGENCE_ENDPOINT", "https://di.example.com")
	t.Setenv("AZURE_DOC_INTELLIGENCE_KEY", "k")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://oa.example.com")
	t.Setenv("AZURE_OPENAI_KEY", "k")
	require.NoError(t, LoadConfig().Validate())
}

func TestAppErrorUnwraps(t *testing.T) {
	err := NewAppError("DB_ERROR", "insert failed", ErrDatabase)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.Contains(t, err.Error(), "DB_ERROR")
}
