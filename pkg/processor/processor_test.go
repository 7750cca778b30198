package processor_test

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/faqgen/pkg/processor"
)

func TestProcessor_Chunk(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 1200})

	chunks := p.Chunk(strings.Repeat("a", 2500))

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1200)
	assert.Len(t, chunks[1], 1200)
	assert.Len(t, chunks[2], 100)
}

func TestProcessor_DefaultChunkSize(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})
	assert.Equal(t, processor.DefaultChunkSize, p.ChunkSize())

	p = processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 3000})
	assert.Equal(t, 3000, p.ChunkSize())
}

func TestProcessor_ZeroValueUsesDefault(t *testing.T) {
	var p processor.Processor
	assert.Equal(t, processor.DefaultChunkSize, p.ChunkSize())

	chunks := p.Chunk(strings.Repeat("b", processor.DefaultChunkSize+5))
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], processor.DefaultChunkSize)
	assert.Len(t, chunks[1], 5)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		text string
		size int
		want []string
	}{
		{"", 3, nil},
		{"abc", 3, []string{"abc"}},
		{"abcd", 3, []string{"abc", "d"}},
		{"abcdef", 2, []string{"ab", "cd", "ef"}},
		{"héllo wörld", 4, []string{"héll", "o wö", "rld"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := processor.Split(tt.text, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := processor.Split("abc", size)
		assert.ErrorIs(t, err, processor.ErrInvalidChunkSize)
	}
}

func TestSplitReconstructsInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abc xyz\nüß日本")

	for i := 0; i < 200; i++ {
		n := rng.Intn(500)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		text := string(runes)
		size := rng.Intn(50) + 1

		chunks, err := processor.Split(text, size)
		require.NoError(t, err)

		assert.Equal(t, text, strings.Join(chunks, ""))
		assert.Equal(t, (n+size-1)/size, len(chunks))
		assert.Equal(t, n == 0, len(chunks) == 0)
		for k, chunk := range chunks {
			if k < len(chunks)-1 {
				assert.Equal(t, size, utf8.RuneCountInString(chunk))
			} else {
				assert.NotEmpty(t, chunk)
				assert.LessOrEqual(t, utf8.RuneCountInString(chunk), size)
			}
		}
	}
}
