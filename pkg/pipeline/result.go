package pipeline

import (
	"errors"

	"github.com/xhad/faqgen/internal/models"
)

// Status summarizes why a run produced the records it did.
type Status string

const (
	StatusOK               Status = "ok"
	StatusNoContent        Status = "no_content"
	StatusGenerationFailed Status = "generation_failed"
	StatusPartial          Status = "partial"
	StatusUnderProduced    Status = "under_produced"
	StatusEmpty            Status = "empty"
)

// Result is the outcome of generating FAQs for one body of text.
type Result struct {
	Records    []models.FaqRecord
	Chunks     []models.ChunkResult
	Failures   []*models.GenerationFailure
	ChunkCount int
	Requested  int
}

func (r *Result) add(cr models.ChunkResult) {
	r.Chunks = append(r.Chunks, cr)
	r.Records = append(r.Records, cr.Records...)

	var failure *models.GenerationFailure
	if cr.Err != nil && errors.As(cr.Err, &failure) {
		r.Failures = append(r.Failures, failure)
	}
}

// RecordCounts returns the number of records parsed for each processed chunk.
func (r *Result) RecordCounts() []int {
	counts := make([]int, len(r.Chunks))
	for i, cr := range r.Chunks {
		counts[i] = len(cr.Records)
	}
	return counts
}

// Status reports how complete the result is.
func (r *Result) Status() Status {
	switch {
	case r == nil:
		return StatusEmpty
	case len(r.Failures) > 0 && len(r.Records) == 0:
		return StatusGenerationFailed
	case len(r.Failures) > 0:
		return StatusPartial
	case r.ChunkCount == 0:
		return StatusEmpty
	case len(r.Records) < r.Requested:
		return StatusUnderProduced
	default:
		return StatusOK
	}
}

// Report is the outcome of a full run over one URL.
type Report struct {
	Page   models.PageContent
	Result *Result
}

// Status reports StatusNoContent when extraction found nothing, otherwise the
// status of the generation result.
func (r *Report) Status() Status {
	if !r.Page.ContentFound {
		return StatusNoContent
	}
	return r.Result.Status()
}
