package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xhad/faqgen/internal/models"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "faqgen/1.0 (+https://github.com/xhad/faqgen)"

type ScraperConfig struct {
	RateLimit float64 // requests per second
	Timeout   time.Duration
	UserAgent string
	Extractor ExtractorConfig
	Logger    logrus.FieldLogger
}

type Scraper struct {
	config    ScraperConfig
	client    *http.Client
	limiter   *rate.Limiter
	extractor *Extractor
	log       logrus.FieldLogger
}

func NewWithConfig(config ScraperConfig) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		extractor: NewExtractor(config.Extractor),
		log:       config.Logger,
	}
}

func New() *Scraper {
	return NewWithConfig(ScraperConfig{})
}

// Fetch performs a GET against rawURL and returns the response body.
// Transport errors and non-2xx statuses are reported as *models.FetchError.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", &models.FetchError{URL: rawURL, Err: err}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &models.FetchError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &models.FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &models.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &models.FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.FetchError{URL: rawURL, Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"url":          rawURL,
		"status":       resp.StatusCode,
		"bytes":        len(body),
		"content_type": resp.Header.Get("Content-Type"),
	}).Debug("fetched page")

	return string(body), nil
}

// Scrape fetches rawURL and extracts its title and main text.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (models.PageContent, error) {
	html, err := s.Fetch(ctx, rawURL)
	if err != nil {
		return models.PageContent{}, err
	}

	page, err := s.extractor.Extract(html)
	if err != nil {
		return models.PageContent{}, fmt.Errorf("extract %s: %w", rawURL, err)
	}
	page.URL = rawURL

	entry := s.log.WithField("url", rawURL)
	if !page.ContentFound {
		entry.Warn("no content container matched")
	} else {
		entry.WithField("container", page.Container).Debug("content container matched")
	}

	return page, nil
}
