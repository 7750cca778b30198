package types

import (
	"context"

	"github.com/xhad/faqgen/internal/models"
)

// Core interfaces

// PageScraper fetches a URL and extracts its readable content.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (models.PageContent, error)
}

// Chunker splits extracted text into bounded pieces.
type Chunker interface {
	Chunk(text string) []string
}

// Generator produces the raw completion for one chunk.
type Generator interface {
	Generate(ctx context.Context, index int, chunk string) (string, error)
}

// Parser turns a raw completion into records.
type Parser interface {
	Parse(raw string) []models.FaqRecord
}

// Limiter blocks until the next request may be issued. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}
