package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xhad/faqgen/pkg/config"
	"github.com/xhad/faqgen/pkg/faq"
	"github.com/xhad/faqgen/pkg/llm"
	"github.com/xhad/faqgen/pkg/processor"
	"github.com/xhad/faqgen/pkg/scraper"
)

// NewFromConfig builds a fully wired pipeline. onProgress may be nil.
func NewFromConfig(cfg *config.Config, logger logrus.FieldLogger, onProgress func(done, total int)) (*Pipeline, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %v", errs[0])
	}

	rules := make([]scraper.ContainerRule, 0, len(cfg.Scraper.ContentSelectors))
	for _, sel := range cfg.Scraper.ContentSelectors {
		rules = append(rules, scraper.ContainerRule{Name: sel, Selector: sel})
	}

	s := scraper.NewWithConfig(scraper.ScraperConfig{
		RateLimit: cfg.Scraper.RateLimit,
		Timeout:   cfg.Scraper.Timeout,
		UserAgent: cfg.Scraper.UserAgent,
		Extractor: scraper.ExtractorConfig{
			ContainerRules: rules,
			NoiseClasses:   cfg.Scraper.NoiseClasses,
			Sentinel:       cfg.Scraper.Sentinel,
		},
		Logger: logger,
	})

	generator, err := llm.NewWithConfig(llm.GeneratorConfig{
		Provider:     cfg.LLM.Provider,
		Model:        cfg.LLM.Model,
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		Temperature:  cfg.LLM.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
		FaqsPerChunk: cfg.Generator.FaqsPerChunk,
		Timeout:      cfg.LLM.Timeout,
		Delay:        cfg.Generator.InterRequestDelay,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	parser := faq.NewWithConfig(faq.ParserConfig{
		OddFragment:      faq.OddFragmentPolicy(cfg.Parser.OddFragment),
		KeepRawQuestions: cfg.Parser.KeepRawQuestions,
	})

	return New(
		s,
		processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: cfg.Processor.ChunkSize}),
		generator,
		parser,
		PipelineConfig{
			FailurePolicy: FailurePolicy(cfg.Pipeline.FailurePolicy),
			Concurrency:   cfg.Generator.Concurrency,
			FaqsPerChunk:  cfg.Generator.FaqsPerChunk,
			OnProgress:    onProgress,
			Logger:        logger,
		},
	), nil
}
