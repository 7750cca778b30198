package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Processor ProcessorConfig `yaml:"processor"`
	Generator GeneratorConfig `yaml:"generator"`
	Parser    ParserConfig    `yaml:"parser"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type ScraperConfig struct {
	RateLimit        float64       `yaml:"rate_limit"`
	Timeout          time.Duration `yaml:"timeout"`
	UserAgent        string        `yaml:"user_agent"`
	ContentSelectors []string      `yaml:"content_selectors"`
	NoiseClasses     []string      `yaml:"noise_classes"`
	Sentinel         string        `yaml:"sentinel"`
}

type ProcessorConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

type GeneratorConfig struct {
	FaqsPerChunk      int           `yaml:"faqs_per_chunk"`
	InterRequestDelay time.Duration `yaml:"inter_request_delay"`
	Concurrency       int           `yaml:"concurrency"`
}

type ParserConfig struct {
	OddFragment      string `yaml:"odd_fragment"`
	KeepRawQuestions bool   `yaml:"keep_raw_questions"`
}

type PipelineConfig struct {
	FailurePolicy string `yaml:"failure_policy"`
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultProvider is used when neither the config file nor the environment
// names an LLM provider.
const DefaultProvider = "ollama"

// LoadConfig reads the config file and environment and fills every unset
// value with its default.
func LoadConfig(path string) (*Config, error) {
	config, err := Load(path)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(config)
	return config, nil
}

// Load reads the config file and environment without applying defaults, so
// callers can layer further overrides before calling ApplyDefaults.
func Load(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/faqgen/config.yaml"),
			"/etc/faqgen/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		config := &Config{}
		mergeWithEnv(config)
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	return &config, nil
}

// ApplyDefaults fills unset values. Model and base URL depend on the
// provider, so overrides that change the provider must be applied first.
func ApplyDefaults(config *Config) {
	if config.LLM.Provider == "" {
		config.LLM.Provider = DefaultProvider
	}
	if config.LLM.Model == "" {
		switch config.LLM.Provider {
		case "openai":
			config.LLM.Model = "gpt-3.5-turbo"
		default:
			config.LLM.Model = "mistral"
		}
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = providerBaseURL(config.LLM.Provider)
	}
	if config.LLM.BaseURL == "" && config.LLM.Provider == "ollama" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 800
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.Timeout == 0 {
		config.LLM.Timeout = 60 * time.Second
	}

	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.Timeout == 0 {
		config.Scraper.Timeout = 30 * time.Second
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 1200
	}

	if config.Generator.FaqsPerChunk == 0 {
		config.Generator.FaqsPerChunk = 2
	}
	if config.Generator.InterRequestDelay == 0 {
		config.Generator.InterRequestDelay = 3 * time.Second
	}
	if config.Generator.Concurrency == 0 {
		config.Generator.Concurrency = 1
	}

	if config.Parser.OddFragment == "" {
		config.Parser.OddFragment = "keep"
	}

	if config.Pipeline.FailurePolicy == "" {
		config.Pipeline.FailurePolicy = "fail_fast"
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

func mergeWithEnv(config *Config) {
	if provider := os.Getenv("FAQGEN_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	provider := config.LLM.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	if baseURL := providerBaseURL(provider); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if password := os.Getenv("FAQGEN_PASSWORD"); password != "" {
		config.Server.Password = password
	}
	if level := os.Getenv("FAQGEN_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}

// providerBaseURL returns the endpoint set in the environment for provider.
func providerBaseURL(provider string) string {
	switch provider {
	case "ollama":
		return os.Getenv("OLLAMA_BASE_URL")
	case "openai":
		return os.Getenv("OPENAI_BASE_URL")
	}
	return ""
}
