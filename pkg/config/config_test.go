package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brykly/blogflow/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultOutputDir, cfg.Paths.OutputDir)
	assert.Equal(t, DefaultTempDir, cfg.Paths.TempDir)
	assert.Equal(t, DefaultOpenAIModel, cfg.OpenAI.Model)
	assert.Equal(t, DefaultOpenRouterModel, cfg.OpenRouter.Model)
	assert.Equal(t, []string{ProviderOpenAI, ProviderOpenRouter}, cfg.Blog.Providers)
	assert.Equal(t, DefaultTone, cfg.Blog.Tone)
	assert.Equal(t, DefaultStyle, cfg.Blog.Style)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blogflow.yaml")

	content := `
paths:
  output_dir: /srv/blog
blog:
  tone: casual
  providers: [openrouter]
openai:
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/blog", cfg.Paths.OutputDir)
	assert.Equal(t, DefaultTempDir, cfg.Paths.TempDir)
	assert.Equal(t, "casual", cfg.Blog.Tone)
	assert.Equal(t, DefaultStyle, cfg.Blog.Style)
	assert.Equal(t, []string{ProviderOpenRouter}, cfg.Blog.Providers)
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "paths: [unterminated"},
		{name: "unknown provider", content: "blog:\n  providers: [anthropic]\n"},
		{name: "kafka without brokers", content: "events:\n  bus: kafka\n"},
		{name: "schedule without inbox", content: "schedule:\n  cron: \"@every 1m\"\n"},
		{name: "bad base url", content: "openai:\n  base_url: not a url\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errs.IsConfigurationError(err))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"OPENAI_API_KEY":        "sk-openai",
		"OPENROUTER_API_KEY":    "sk-router",
		"OPENROUTER_MODEL":      "meta/llama",
		"BLOGFLOW_OUTPUT_DIR":   "/data/out",
		"BLOGFLOW_DATABASE_URL": "postgres://localhost/blogflow",
		"KAFKA_BROKERS":         "k1:9092,k2:9092",
		"OPENAI_MODEL":          "",
	}

	cfg := Default()
	cfg.applyEnv(func(key string) (string, bool) {
		value, ok := env[key]

		return value, ok
	})

	assert.Equal(t, "sk-openai", cfg.OpenAI.APIKey)
	assert.Equal(t, DefaultOpenAIModel, cfg.OpenAI.Model, "empty values are ignored")
	assert.Equal(t, "sk-router", cfg.OpenRouter.APIKey)
	assert.Equal(t, "meta/llama", cfg.OpenRouter.Model)
	assert.Equal(t, "/data/out", cfg.Paths.OutputDir)
	assert.Equal(t, DefaultTempDir, cfg.Paths.TempDir)
	assert.Equal(t, "postgres://localhost/blogflow", cfg.Storage.DatabaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
}

func TestLLM(t *testing.T) {
	t.Parallel()

	cfg := Default()

	openai, err := cfg.LLM(ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, openai.Model)

	router, err := cfg.LLM(ProviderOpenRouter)
	require.NoError(t, err)
	assert.Equal(t, "https://openrouter.ai/api/v1", router.BaseURL)

	_, err = cfg.LLM("anthropic")
	assert.True(t, errs.IsConfigurationError(err))
}
