package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xhad/faqgen/internal/models"
)

// DefaultSentinel is the body returned when no container rule matches.
const DefaultSentinel = "No text found in the specified div."

// ContainerRule selects a candidate content container.
type ContainerRule struct {
	Name     string
	Selector string
}

// Match returns the first element matching the rule, or nil.
func (r ContainerRule) Match(doc *goquery.Document) *goquery.Selection {
	if selected := doc.Find(r.Selector); selected.Length() > 0 {
		return selected.First()
	}
	return nil
}

// DefaultContainerRules are tried in order; the first match wins.
var DefaultContainerRules = []ContainerRule{
	{Name: "bespoke page", Selector: "#bespokePage.bespokePage"},
	{Name: "bespoke page id", Selector: "#bespokePage"},
	{Name: "bespoke page class", Selector: ".bespokePage"},
}

// DefaultNoiseClasses mark regions inside the container that are not article text.
var DefaultNoiseClasses = []string{
	"table",
	"infoBox",
	"card-body",
	"territory",
	"similar-items",
}

var defaultStripTags = []string{"script", "style", "noscript"}

type ExtractorConfig struct {
	ContainerRules []ContainerRule
	NoiseClasses   []string
	StripTags      []string
	Sentinel       string
}

type Extractor struct {
	config ExtractorConfig
}

func NewExtractor(config ExtractorConfig) *Extractor {
	if len(config.ContainerRules) == 0 {
		config.ContainerRules = DefaultContainerRules
	}
	if config.NoiseClasses == nil {
		config.NoiseClasses = DefaultNoiseClasses
	}
	if config.StripTags == nil {
		config.StripTags = defaultStripTags
	}
	if config.Sentinel == "" {
		config.Sentinel = DefaultSentinel
	}

	return &Extractor{config: config}
}

// Extract parses html and returns the page title and cleaned container text.
// A page without a matching container is not an error: Body is the sentinel
// and ContentFound is false.
func (e *Extractor) Extract(html string) (models.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.PageContent{}, err
	}
	return e.ExtractDocument(doc), nil
}

func (e *Extractor) ExtractDocument(doc *goquery.Document) models.PageContent {
	page := models.PageContent{
		Title: strings.TrimSpace(doc.Find("h1").First().Text()),
	}

	container, rule := e.locateContainer(doc)
	if container == nil {
		page.Body = e.config.Sentinel
		return page
	}

	e.removeNoise(container)
	page.Body = cleanContent(container.Text())
	page.ContentFound = true
	page.Container = rule

	return page
}

// locateContainer returns the first matching element and the name of the rule
// that matched it.
func (e *Extractor) locateContainer(doc *goquery.Document) (*goquery.Selection, string) {
	for _, rule := range e.config.ContainerRules {
		if selected := rule.Match(doc); selected != nil {
			return selected, rule.Name
		}
	}
	return nil, ""
}

func (e *Extractor) removeNoise(container *goquery.Selection) {
	for _, class := range e.config.NoiseClasses {
		class = strings.TrimSpace(class)
		if class == "" {
			continue
		}
		container.Find("." + class).Remove()
	}
	for _, tag := range e.config.StripTags {
		container.Find(tag).Remove()
	}
}

func cleanContent(content string) string {
	// Remove extra whitespace
	return strings.TrimSpace(strings.Join(strings.Fields(content), " "))
}
