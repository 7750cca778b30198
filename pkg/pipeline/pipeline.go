// Package pipeline composes scraping, chunking, generation and parsing into
// a single FAQ run over one page.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/xhad/faqgen/internal/models"
	"github.com/xhad/faqgen/internal/types"
	"golang.org/x/sync/errgroup"
)

// FailurePolicy controls what happens when a chunk fails to generate.
type FailurePolicy string

const (
	// FailFast stops at the first failed chunk and returns the records
	// produced before it.
	FailFast FailurePolicy = "fail_fast"
	// SkipFailed records the failure and continues with the next chunk.
	SkipFailed FailurePolicy = "skip"
)

const defaultFaqsPerChunk = 2

type PipelineConfig struct {
	FailurePolicy FailurePolicy
	// Concurrency is the number of chunks generated at once. Values below 2
	// process chunks strictly in sequence.
	Concurrency int
	// FaqsPerChunk is the number of items requested per chunk, used to
	// detect under-production.
	FaqsPerChunk int
	OnProgress   func(done, total int)
	Logger       logrus.FieldLogger
}

type Pipeline struct {
	config    PipelineConfig
	scraper   types.PageScraper
	chunker   types.Chunker
	generator types.Generator
	parser    types.Parser
	log       logrus.FieldLogger
}

// New wires the pipeline stages. scraper may be nil when only GenerateFAQs is used.
func New(scraper types.PageScraper, chunker types.Chunker, generator types.Generator, parser types.Parser, config PipelineConfig) *Pipeline {
	if config.FailurePolicy == "" {
		config.FailurePolicy = FailFast
	}
	if config.FaqsPerChunk <= 0 {
		config.FaqsPerChunk = defaultFaqsPerChunk
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return &Pipeline{
		config:    config,
		scraper:   scraper,
		chunker:   chunker,
		generator: generator,
		parser:    parser,
		log:       config.Logger,
	}
}

// Run fetches url, extracts its content and generates FAQs for it. A fetch
// failure returns a nil report. Any later error is returned alongside a report
// holding the partial results.
func (p *Pipeline) Run(ctx context.Context, url string) (*Report, error) {
	if p.scraper == nil {
		return nil, errors.New("pipeline has no scraper")
	}

	page, err := p.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"url":           url,
		"title":         page.Title,
		"content_found": page.ContentFound,
		"chars":         len([]rune(page.Body)),
	}).Info("page extracted")

	result, err := p.GenerateFAQs(ctx, page.Body)
	return &Report{Page: page, Result: result}, err
}

// GenerateFAQs chunks body and generates records for every chunk in order.
func (p *Pipeline) GenerateFAQs(ctx context.Context, body string) (*Result, error) {
	chunks := p.chunker.Chunk(body)
	result := &Result{
		ChunkCount: len(chunks),
		Requested:  len(chunks) * p.config.FaqsPerChunk,
	}

	if p.config.Concurrency > 1 && len(chunks) > 1 {
		return result, p.generateParallel(ctx, chunks, result)
	}
	return result, p.generateSequential(ctx, chunks, result)
}

func (p *Pipeline) generateSequential(ctx context.Context, chunks []string, result *Result) error {
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("generation canceled before chunk %d: %w", i, err)
		}

		cr := p.processChunk(ctx, i, chunk)
		if cr.Err != nil && ctx.Err() != nil {
			return fmt.Errorf("generation canceled at chunk %d: %w", i, ctx.Err())
		}

		result.add(cr)
		p.progress(i+1, len(chunks))

		if cr.Err != nil && p.config.FailurePolicy == FailFast {
			return cr.Err
		}
	}
	return nil
}

// generateParallel keeps at most Concurrency requests outstanding. Each
// request still passes through the generator's limiter, and results are
// assembled by chunk index regardless of completion order.
func (p *Pipeline) generateParallel(ctx context.Context, chunks []string, result *Result) error {
	results := make([]*models.ChunkResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	var (
		mu   sync.Mutex
		done int
	)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cr := p.processChunk(gctx, i, chunk)
			results[i] = &cr

			mu.Lock()
			done++
			p.progress(done, len(chunks))
			mu.Unlock()

			if cr.Err != nil && p.config.FailurePolicy == FailFast {
				return cr.Err
			}
			return nil
		})
	}

	waitErr := g.Wait()
	if err := ctx.Err(); err != nil {
		p.collect(results, result, -1)
		return fmt.Errorf("generation canceled: %w", err)
	}

	if waitErr == nil {
		p.collect(results, result, -1)
		return nil
	}

	// Only the prefix of chunks ahead of the failure is kept under fail-fast.
	var failure *models.GenerationFailure
	if errors.As(waitErr, &failure) {
		p.collect(results, result, failure.ChunkIndex)
		if cr := results[failure.ChunkIndex]; cr != nil {
			result.add(*cr)
		}
	}
	return waitErr
}

// collect appends chunk results in index order. With stop >= 0 it halts at
// the first missing or failed chunk before stop.
func (p *Pipeline) collect(results []*models.ChunkResult, result *Result, stop int) {
	for i, cr := range results {
		if stop >= 0 && (i >= stop || cr == nil || cr.Err != nil) {
			return
		}
		if cr == nil {
			continue
		}
		result.add(*cr)
	}
}

func (p *Pipeline) processChunk(ctx context.Context, index int, chunk string) models.ChunkResult {
	cr := models.ChunkResult{Index: index, Text: chunk}
	entry := p.log.WithField("chunk", index)

	raw, err := p.generator.Generate(ctx, index, chunk)
	if err != nil {
		var failure *models.GenerationFailure
		if !errors.As(err, &failure) {
			failure = &models.GenerationFailure{ChunkIndex: index, Err: err}
		}
		cr.Err = failure
		entry.WithError(err).Warn("chunk generation failed")
		return cr
	}

	cr.Raw = raw
	cr.Records = p.parser.Parse(raw)

	fields := logrus.Fields{"records": len(cr.Records)}
	if len(cr.Records) < p.config.FaqsPerChunk {
		entry.WithFields(fields).Warn("fewer records than requested")
	} else {
		entry.WithFields(fields).Debug("chunk parsed")
	}
	return cr
}

func (p *Pipeline) progress(done, total int) {
	if p.config.OnProgress != nil {
		p.config.OnProgress(done, total)
	}
}
