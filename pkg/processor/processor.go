package processor

import (
	"errors"
)

// DefaultChunkSize matches the smaller of the two supported prompt sizes.
const DefaultChunkSize = 1200

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

type ProcessorConfig struct {
	ChunkSize int
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}

	return Processor{
		config: config,
	}
}

// ChunkSize reports the window size. A zero Processor uses DefaultChunkSize.
func (p Processor) ChunkSize() int {
	if p.config.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return p.config.ChunkSize
}

// Chunk splits text into consecutive windows of ChunkSize characters.
func (p Processor) Chunk(text string) []string {
	return split(text, p.ChunkSize())
}

// Split cuts text into non-overlapping windows of size characters. Sizes are
// counted in runes, so multi-byte characters are never cut in half. The last
// window may be shorter; empty text yields no chunks.
func Split(text string, size int) ([]string, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}
	return split(text, size), nil
}

func split(text string, size int) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
