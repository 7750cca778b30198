package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("FAQGEN_LLM_PROVIDER", "")

	opts, cfg, err := parseFlags([]string{
		"-chunk-size", "3000",
		"-provider", "openai",
		"-model", "gpt-4o-mini",
		"-failure-policy", "skip",
		"-json",
		"https://example.com/guide",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/guide", opts.URL)
	assert.True(t, opts.JSON)
	assert.Equal(t, 3000, cfg.Processor.ChunkSize)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.BaseURL)
	assert.Equal(t, "skip", cfg.Pipeline.FailurePolicy)
	assert.Equal(t, 2, cfg.Generator.FaqsPerChunk)
}

func TestParseFlagsProviderDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("FAQGEN_LLM_PROVIDER", "")

	tests := []struct {
		name    string
		args    []string
		model   string
		baseURL string
	}{
		{
			name:    "openai",
			args:    []string{"-provider", "openai", "https://example.com"},
			model:   "gpt-3.5-turbo",
			baseURL: "",
		},
		{
			name:    "openai with endpoint",
			args:    []string{"-provider", "openai", "-llm-url", "https://proxy.local/v1", "https://example.com"},
			model:   "gpt-3.5-turbo",
			baseURL: "https://proxy.local/v1",
		},
		{
			name:    "ollama",
			args:    []string{"-provider", "ollama", "https://example.com"},
			model:   "mistral",
			baseURL: "http://localhost:11434",
		},
		{
			name:    "no provider flag",
			args:    []string{"-model", "llama3", "https://example.com"},
			model:   "llama3",
			baseURL: "http://localhost:11434",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cfg, err := parseFlags(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.model, cfg.LLM.Model)
			assert.Equal(t, tt.baseURL, cfg.LLM.BaseURL)
		})
	}
}

func TestParseFlagsProviderSwitchDropsFileEndpoint(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("FAQGEN_LLM_PROVIDER", "")

	configPath := filepath.Join(dir, "config.yaml")
	configData := "llm:\n  provider: ollama\n  model: llama3\n  base_url: http://gpu-box:11434\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))

	_, cfg, err := parseFlags([]string{"-config", configPath, "-provider", "openai", "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.BaseURL)

	_, cfg, err = parseFlags([]string{"-config", configPath, "-provider", "ollama", "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.BaseURL)
}

func TestParseFlagsZeroTemperatureUsesDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, cfg, err := parseFlags([]string{"-temperature", "0", "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)

	_, cfg, err = parseFlags([]string{"-temperature", "0.2", "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
}

func TestParseFlagsRequiresURL(t *testing.T) {
	_, _, err := parseFlags([]string{"-chunk-size", "100"})
	assert.Error(t, err)
}
