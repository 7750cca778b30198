// Package faq turns free-text LLM completions into question/answer records.
//
// The completion is cut at every "Q: " and "A: " marker. Text ahead of the
// first marker is ignored and empty segments are dropped. The remaining
// segments are paired by position, so the marker kind only delimits and never
// decides whether a segment is a question or an answer.
package faq

import (
	"strings"

	"github.com/xhad/faqgen/internal/models"
)

const (
	labelPrefix    = "FAQ:"
	questionMarker = "Q: "
	answerMarker   = "A: "
)

// OddFragmentPolicy decides what happens to a question left without an answer
// at the end of a completion.
type OddFragmentPolicy string

const (
	// KeepTrailingQuestion emits the lone question with an empty answer.
	KeepTrailingQuestion OddFragmentPolicy = "keep"
	// DropTrailingQuestion discards the lone question.
	DropTrailingQuestion OddFragmentPolicy = "drop"
)

type ParserConfig struct {
	OddFragment OddFragmentPolicy
	// KeepRawQuestions disables appending a missing "?" to questions.
	KeepRawQuestions bool
}

type Parser struct {
	config ParserConfig
}

func NewWithConfig(config ParserConfig) *Parser {
	if config.OddFragment == "" {
		config.OddFragment = KeepTrailingQuestion
	}
	return &Parser{config: config}
}

func New() *Parser {
	return NewWithConfig(ParserConfig{})
}

type state int

const (
	seekingQuestion state = iota
	inQuestion
	seekingAnswer
	inAnswer
)

// Parse extracts records from raw in the order they appear. It never fails:
// text without markers yields no records.
func (p *Parser) Parse(raw string) []models.FaqRecord {
	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(strings.TrimPrefix(text, labelPrefix))

	var (
		records  []models.FaqRecord
		current  models.FaqRecord
		st       = seekingQuestion
		sawFirst bool
	)

	emit := func() {
		records = append(records, p.normalize(current))
		current = models.FaqRecord{}
	}

	for _, seg := range segments(text) {
		if seg.marker {
			sawFirst = true
			switch st {
			case inQuestion:
				st = seekingAnswer
			case inAnswer:
				emit()
				st = seekingQuestion
			}
			continue
		}

		// Preamble ahead of the first marker is not part of any record.
		if !sawFirst {
			continue
		}
		fragment := strings.TrimSpace(seg.text)
		if fragment == "" {
			continue
		}

		switch st {
		case seekingQuestion:
			current.Question = fragment
			st = inQuestion
		case seekingAnswer:
			current.Answer = fragment
			st = inAnswer
		}
	}

	switch st {
	case inAnswer:
		emit()
	case inQuestion, seekingAnswer:
		if p.config.OddFragment == KeepTrailingQuestion {
			emit()
		}
	}

	return records
}

func (p *Parser) normalize(r models.FaqRecord) models.FaqRecord {
	if !p.config.KeepRawQuestions {
		r.Question = NormalizeQuestion(r.Question)
	}
	return r
}

// NormalizeQuestion appends "?" unless the question already ends with one.
func NormalizeQuestion(q string) string {
	q = strings.TrimSpace(q)
	if q == "" || strings.HasSuffix(q, "?") {
		return q
	}
	return q + "?"
}

type segment struct {
	text   string
	marker bool
}

// segments splits text into alternating runs of plain text and markers.
func segments(text string) []segment {
	var out []segment
	for {
		idx, n := nextMarker(text)
		if idx < 0 {
			out = append(out, segment{text: text})
			return out
		}
		out = append(out, segment{text: text[:idx]}, segment{text: text[idx : idx+n], marker: true})
		text = text[idx+n:]
	}
}

func nextMarker(text string) (int, int) {
	q := strings.Index(text, questionMarker)
	a := strings.Index(text, answerMarker)
	switch {
	case q < 0 && a < 0:
		return -1, 0
	case q < 0:
		return a, len(answerMarker)
	case a < 0 || q < a:
		return q, len(questionMarker)
	default:
		return a, len(answerMarker)
	}
}
