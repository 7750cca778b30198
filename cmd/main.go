package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/faqgen/internal/models"
	cfgPkg "github.com/xhad/faqgen/pkg/config"
	"github.com/xhad/faqgen/pkg/pipeline"
)

type options struct {
	ConfigPath string
	URL        string
	JSON       bool
	ShowText   bool
}

func main() {
	opts, cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		color.Red("%v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, *cfgPkg.Config, error) {
	var opts options
	fs := flag.NewFlagSet("faqgen", flag.ContinueOnError)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to config file")
	fs.StringVar(&opts.URL, "url", "", "Page URL to generate FAQs for")
	fs.BoolVar(&opts.JSON, "json", false, "Print the result as JSON")
	fs.BoolVar(&opts.ShowText, "show-text", false, "Print the extracted article text")

	provider := fs.String("provider", "", "LLM provider (ollama or openai)")
	model := fs.String("model", "", "LLM model to use")
	baseURL := fs.String("llm-url", "", "LLM server URL")
	chunkSize := fs.Int("chunk-size", 0, "Size of text chunks in characters")
	faqs := fs.Int("faqs", 0, "FAQs requested per chunk")
	temperature := fs.Float64("temperature", 0, "LLM temperature; 0 uses the default 0.7")
	maxTokens := fs.Int("max-tokens", 0, "Maximum tokens for each LLM response")
	concurrency := fs.Int("concurrency", 0, "Chunks generated at once")
	failurePolicy := fs.String("failure-policy", "", "fail_fast or skip")
	logLevel := fs.String("log-level", "", "Log level")

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	if opts.URL == "" && fs.NArg() > 0 {
		opts.URL = fs.Arg(0)
	}
	if opts.URL == "" {
		return opts, nil, errors.New("a URL is required (-url)")
	}

	cfg, err := cfgPkg.Load(opts.ConfigPath)
	if err != nil {
		return opts, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Model and endpoint loaded for another provider do not carry over
	if set["provider"] {
		current := cfg.LLM.Provider
		if current == "" {
			current = cfgPkg.DefaultProvider
		}
		if *provider != current {
			cfg.LLM.Model = ""
			cfg.LLM.BaseURL = ""
		}
		cfg.LLM.Provider = *provider
	}

	// Command line flags override the config file when set
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.LLM.Model = *model
		case "llm-url":
			cfg.LLM.BaseURL = *baseURL
		case "chunk-size":
			cfg.Processor.ChunkSize = *chunkSize
		case "faqs":
			cfg.Generator.FaqsPerChunk = *faqs
		case "temperature":
			cfg.LLM.Temperature = *temperature
		case "max-tokens":
			cfg.LLM.MaxTokens = *maxTokens
		case "concurrency":
			cfg.Generator.Concurrency = *concurrency
		case "failure-policy":
			cfg.Pipeline.FailurePolicy = *failurePolicy
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	cfgPkg.ApplyDefaults(cfg)

	return opts, cfg, nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("chunks"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(ctx context.Context, opts options, cfg *cfgPkg.Config) error {
	logger := cfgPkg.NewLogger(cfg.Log, os.Stderr)

	var bar *progressbar.ProgressBar
	onProgress := func(done, total int) {
		if opts.JSON {
			return
		}
		if bar == nil {
			bar = getProgressBar(total, "Generating FAQs...")
		}
		bar.Set(done)
	}

	p, err := pipeline.NewFromConfig(cfg, logger, onProgress)
	if err != nil {
		return err
	}

	if !opts.JSON {
		color.Blue("\nFetching %s\n", opts.URL)
	}

	report, err := p.Run(ctx, opts.URL)
	if bar != nil {
		bar.Finish()
	}
	if report == nil {
		return err
	}
	if err != nil {
		logger.WithError(err).Warn("generation stopped early")
	}

	if opts.JSON {
		return printJSON(opts.URL, report, err)
	}

	printReport(opts, report)
	return err
}

func printReport(opts options, report *pipeline.Report) {
	heading := color.New(color.FgCyan, color.Bold).PrintfFunc()
	question := color.New(color.FgBlue, color.Bold).PrintfFunc()

	fmt.Println()
	heading("Generated FAQs\n")
	fmt.Printf("H1 Title: %s\n", report.Page.Title)
	fmt.Printf("URL: %s\n", opts.URL)

	if opts.ShowText {
		heading("\nArticle Text\n")
		fmt.Println(report.Page.Body)
	}

	fmt.Println()
	for _, r := range report.Result.Records {
		question("Q: %s\n", r.Question)
		if r.Answer != "" {
			fmt.Printf("A: %s\n\n", r.Answer)
		} else {
			color.Yellow("A: (no answer)\n\n")
		}
	}

	for _, f := range report.Result.Failures {
		color.Red("Chunk %d failed: %v\n", f.ChunkIndex, f.Err)
	}

	switch report.Status() {
	case pipeline.StatusNoContent:
		color.Yellow("No article content was found on the page.\n")
	case pipeline.StatusGenerationFailed:
		color.Red("FAQ generation failed.\n")
	case pipeline.StatusPartial:
		color.Yellow("Some chunks failed; showing partial results.\n")
	case pipeline.StatusUnderProduced:
		color.Yellow("The model produced %d of %d requested FAQs.\n", len(report.Result.Records), report.Result.Requested)
	case pipeline.StatusEmpty:
		color.Yellow("No FAQs found in the text.\n")
	default:
		color.Green("✓ Generated %d FAQs from %d chunks\n", len(report.Result.Records), report.Result.ChunkCount)
	}
}

type jsonReport struct {
	URL          string             `json:"url"`
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	ContentFound bool               `json:"content_found"`
	Status       pipeline.Status    `json:"status"`
	Records      []models.FaqRecord `json:"records"`
	Chunks       int                `json:"chunks"`
	RecordCounts []int              `json:"record_counts"`
	Failures     []jsonFailure      `json:"failures,omitempty"`
	Error        string             `json:"error,omitempty"`
}

type jsonFailure struct {
	ChunkIndex int    `json:"chunk_index"`
	Error      string `json:"error"`
}

func printJSON(url string, report *pipeline.Report, runErr error) error {
	out := jsonReport{
		URL:          url,
		Title:        report.Page.Title,
		Body:         report.Page.Body,
		ContentFound: report.Page.ContentFound,
		Status:       report.Status(),
		Records:      report.Result.Records,
		Chunks:       report.Result.ChunkCount,
		RecordCounts: report.Result.RecordCounts(),
	}
	if out.Records == nil {
		out.Records = []models.FaqRecord{}
	}
	for _, f := range report.Result.Failures {
		out.Failures = append(out.Failures, jsonFailure{ChunkIndex: f.ChunkIndex, Error: f.Err.Error()})
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	return runErr
}
