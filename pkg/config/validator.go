package config

import (
	"fmt"
	"net/url"

	"github.com/andybalholm/cascadia"
	"github.com/sirupsen/logrus"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	switch c.LLM.Provider {
	case "ollama":
		if c.LLM.BaseURL == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "Ollama base URL is required",
			})
		}
	case "openai":
		if c.LLM.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.api_key",
				Message: "api_key is required for the openai provider",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown provider: %s", c.LLM.Provider),
		})
	}

	if c.LLM.BaseURL != "" {
		if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "invalid base URL",
			})
		}
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.timeout",
			Message: "timeout cannot be negative",
		})
	}

	// Validate Scraper config
	if c.Scraper.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	for _, sel := range c.Scraper.ContentSelectors {
		if _, err := cascadia.Compile(sel); err != nil {
			errors = append(errors, ValidationError{
				Field:   "scraper.content_selectors",
				Message: fmt.Sprintf("invalid selector %q: %v", sel, err),
			})
		}
	}

	for _, class := range c.Scraper.NoiseClasses {
		if _, err := cascadia.Compile("." + class); err != nil {
			errors = append(errors, ValidationError{
				Field:   "scraper.noise_classes",
				Message: fmt.Sprintf("invalid class %q", class),
			})
		}
	}

	// Validate Processor config
	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	// Validate Generator config
	if c.Generator.FaqsPerChunk < 1 {
		errors = append(errors, ValidationError{
			Field:   "generator.faqs_per_chunk",
			Message: "faqs_per_chunk must be positive",
		})
	}

	if c.Generator.InterRequestDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "generator.inter_request_delay",
			Message: "inter_request_delay cannot be negative",
		})
	}

	if c.Generator.Concurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "generator.concurrency",
			Message: "concurrency must be positive",
		})
	}

	if c.Parser.OddFragment != "keep" && c.Parser.OddFragment != "drop" {
		errors = append(errors, ValidationError{
			Field:   "parser.odd_fragment",
			Message: "odd_fragment must be keep or drop",
		})
	}

	if c.Pipeline.FailurePolicy != "fail_fast" && c.Pipeline.FailurePolicy != "skip" {
		errors = append(errors, ValidationError{
			Field:   "pipeline.failure_policy",
			Message: "failure_policy must be fail_fast or skip",
		})
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level: %s", c.Log.Level),
		})
	}

	return errors
}
