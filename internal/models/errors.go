package models

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the LLM answers without any usable text.
var ErrEmptyCompletion = errors.New("empty completion")

// FetchError reports a failure to retrieve a page. StatusCode is zero for
// transport errors.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: received status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// GenerationFailure reports that the LLM call for one chunk failed.
type GenerationFailure struct {
	ChunkIndex int
	Err        error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failed for chunk %d: %v", e.ChunkIndex, e.Err)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}
