package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL", "LLM_API_KEY",
		"SERVER_ADDR", "LOG_MODE", "HISTORY_BACKEND", "HISTORY_DSN", "DASHBOARD_PASSWORD", "JWT_SECRET", "PUBLISH_WEBHOOK_URL",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutKeysFallsBackToShowcase(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderShowcase, cfg.LLM.Provider)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, "memory", cfg.History.Backend)
	assert.Equal(t, ":8000", cfg.ServerAddr)
	assert.Equal(t, 60*time.Second, cfg.LLM.AttemptTimeout())
}

func TestLoadPicksProviderFromEnvKeys(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
		assert.Equal(t, "sk-test", cfg.LLM.APIKey)
		assert.Equal(t, DefaultModel, cfg.LLM.Model)
	})

	t.Run("gemini", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-test")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
		assert.Equal(t, DefaultGeminiModel, cfg.LLM.Model)
	})
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server_addr: ":9090"
llm:
  provider: openai
  api_key: sk-file
  model: gpt-4o
  timeout: 15s
history:
  backend: sqlite
  dsn: /tmp/history.db
`)
	t.Setenv("LLM_MODEL", "gpt-4.1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
	assert.Equal(t, "sk-file", cfg.LLM.APIKey)
	assert.Equal(t, 15*time.Second, cfg.LLM.AttemptTimeout())
	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, "data_api/contexts", cfg.Data.ContextsDir)
}

func TestValidateRejectsBadCombinations(t *testing.T) {
	cases := map[string]string{
		"deepseek without base url": "llm:\n  provider: deepseek\n  api_key: k\n",
		"unknown provider":          "llm:\n  provider: llama\n  api_key: k\n",
		"unknown backend":           "history:\n  backend: mongo\n",
		"dir without dsn":           "history:\n  backend: dir\n",
		"password without secret":   "auth:\n  password: hunter2\n",
		"bad timeout":               "llm:\n  timeout: soon\n",
		"webhook not http":          "publish:\n  webhook_url: ftp://example.com\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, "config.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.LLM.Provider = ProviderOpenAI
	cfg.LLM.APIKey = "sk-saved"
	cfg.Auth.Password = "pw"
	cfg.Auth.JWTSecret = "secret"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, loaded.LLM.Provider)
	assert.Equal(t, "sk-saved", loaded.LLM.APIKey)
	assert.Equal(t, "pw", loaded.Auth.Password)
	assert.Equal(t, 12*time.Hour, loaded.Auth.TTL())
}

func TestLoadEnvFiles(t *testing.T) {
	path := writeFile(t, ".env", "CURATOR_DOTENV_PROBE=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("CURATOR_DOTENV_PROBE") })

	require.NoError(t, LoadEnvFiles(path, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("CURATOR_DOTENV_PROBE"))
}
