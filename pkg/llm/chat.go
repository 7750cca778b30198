package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/faqgen/internal/models"
	"github.com/xhad/faqgen/internal/types"
	"golang.org/x/time/rate"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

const (
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 800
	DefaultFaqsPerChunk = 2
	DefaultDelay        = 3 * time.Second
	DefaultTimeout      = 60 * time.Second
)

const DefaultSystemTemplate = "You are a helpful Frequently Asked Questions generating assistant. " +
	"You will generate FAQs based on text provided. " +
	"The format should start with the question (Q:), followed by the answer (A:). " +
	"You will ensure that questions end with a question mark ('?'). " +
	"Answers are declarative statements and are never phrased as questions."

// DefaultUserTemplate takes the number of questions and the chunk text.
const DefaultUserTemplate = "Generate %d frequently asked questions (FAQ) from the following text from my website. " +
	"The FAQ should be succinct, informative and include the most useful information for the reader. " +
	"The format should start with the question (Q:), followed by the answer (A:). " +
	"Ensure that questions end with a question mark ('?'). Text: \n\n%s\n\nFAQ:"

// GeneratorConfig represents the configuration for a FAQ generator.
type GeneratorConfig struct {
	Provider       string
	Model          string
	BaseURL        string // Ollama server URL or OpenAI-compatible endpoint
	APIKey         string
	Temperature    float64
	MaxTokens      int
	FaqsPerChunk   int
	SystemTemplate string
	UserTemplate   string
	Timeout        time.Duration // per request
	// Delay is the minimum pause between one request returning and the
	// next one starting.
	Delay  time.Duration
	Logger logrus.FieldLogger
}

// FAQGenerator asks an LLM for FAQs about one chunk of text at a time.
// A token bucket is waited on before each request and again once it
// returns, so every call is followed by at least one Delay of quiet.
type FAQGenerator struct {
	config  GeneratorConfig
	llm     llms.Model
	limiter types.Limiter
	log     logrus.FieldLogger
}

// NewWithConfig creates a FAQGenerator backed by the configured provider.
func NewWithConfig(config GeneratorConfig) (*FAQGenerator, error) {
	config, err := applyDefaults(config)
	if err != nil {
		return nil, err
	}

	model, err := newModel(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return newGenerator(model, rate.NewLimiter(rate.Every(config.Delay), 1), config), nil
}

// NewWithModel creates a FAQGenerator around an existing model and limiter.
func NewWithModel(model llms.Model, limiter types.Limiter, config GeneratorConfig) (*FAQGenerator, error) {
	if model == nil {
		return nil, errors.New("model is required")
	}
	config, err := applyDefaults(config)
	if err != nil {
		return nil, err
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(config.Delay), 1)
	}
	return newGenerator(model, limiter, config), nil
}

func newGenerator(model llms.Model, limiter types.Limiter, config GeneratorConfig) *FAQGenerator {
	return &FAQGenerator{
		config:  config,
		llm:     model,
		limiter: limiter,
		log:     config.Logger,
	}
}

func applyDefaults(config GeneratorConfig) (GeneratorConfig, error) {
	if config.Provider == "" {
		config.Provider = ProviderOllama
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return config, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return config, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.FaqsPerChunk <= 0 {
		config.FaqsPerChunk = DefaultFaqsPerChunk
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = DefaultSystemTemplate
	}
	if config.UserTemplate == "" {
		config.UserTemplate = DefaultUserTemplate
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Delay == 0 {
		config.Delay = DefaultDelay
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	switch config.Provider {
	case ProviderOllama:
		if config.Model == "" {
			config.Model = "mistral" // Default Ollama model
		}
		if config.BaseURL == "" {
			config.BaseURL = "http://localhost:11434" // Default Ollama URL
		}
	case ProviderOpenAI:
		if config.Model == "" {
			config.Model = "gpt-3.5-turbo"
		}
	default:
		return config, fmt.Errorf("unknown provider %q", config.Provider)
	}

	return config, nil
}

func newModel(config GeneratorConfig) (llms.Model, error) {
	httpClient := &http.Client{Timeout: config.Timeout}

	switch config.Provider {
	case ProviderOpenAI:
		if config.APIKey == "" {
			return nil, errors.New("api key is required for the openai provider")
		}
		opts := []openai.Option{
			openai.WithToken(config.APIKey),
			openai.WithModel(config.Model),
			openai.WithHTTPClient(httpClient),
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		llm, err := ollama.New(
			ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		return llm, nil
	}
}

// Messages builds the system and user messages for a chunk.
func (g *FAQGenerator) Messages(chunk string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, g.config.SystemTemplate),
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf(g.config.UserTemplate, g.config.FaqsPerChunk, chunk)),
	}
}

// Generate returns the raw completion for chunk. Every failure, including a
// timeout, is reported as *models.GenerationFailure carrying index.
func (g *FAQGenerator) Generate(ctx context.Context, index int, chunk string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", &models.GenerationFailure{ChunkIndex: index, Err: err}
	}

	start := time.Now()
	response, err := g.complete(ctx, chunk)
	elapsed := time.Since(start)
	g.cooldown(ctx, index)
	if err != nil {
		return "", &models.GenerationFailure{ChunkIndex: index, Err: err}
	}

	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", &models.GenerationFailure{ChunkIndex: index, Err: models.ErrEmptyCompletion}
	}
	content := strings.TrimSpace(response.Choices[0].Content)
	if content == "" {
		return "", &models.GenerationFailure{ChunkIndex: index, Err: models.ErrEmptyCompletion}
	}

	g.log.WithFields(logrus.Fields{
		"chunk":    index,
		"provider": g.config.Provider,
		"model":    g.config.Model,
		"elapsed":  elapsed.String(),
	}).Debug("completion received")

	return content, nil
}

func (g *FAQGenerator) complete(ctx context.Context, chunk string) (*llms.ContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	return g.llm.GenerateContent(ctx, g.Messages(chunk),
		llms.WithTemperature(g.config.Temperature),
		llms.WithMaxTokens(g.config.MaxTokens),
	)
}

// cooldown takes the token that accrued while the request was in flight, or
// waits for it, leaving the bucket empty. The next request therefore starts
// no sooner than Delay after this one returned.
func (g *FAQGenerator) cooldown(ctx context.Context, index int) {
	if err := g.limiter.Wait(ctx); err != nil {
		g.log.WithField("chunk", index).WithError(err).Debug("cooldown interrupted")
	}
}
