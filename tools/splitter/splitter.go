// Package splitter chunks text on sentence boundaries under a token budget
package splitter

import (
	"strings"

	"github.com/clipperhouse/uax29/sentences"
)

const (
	DefaultChunkSize = 200
	DefaultOverlap   = 20
)

type Option func(*Splitter)

func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.chunkSize = size
	}
}

func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

func WithTokenCounter(counter TokenCounter) Option {
	return func(s *Splitter) {
		s.tokenCounter = counter
	}
}

// Splitter groups consecutive sentences into chunks of at most chunkSize tokens.
// A single sentence longer than the budget becomes its own chunk.
type Splitter struct {
	chunkSize    int
	overlap      int
	tokenCounter TokenCounter
}

func New(opts ...Option) *Splitter {
	ret := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tokenCounter == nil {
		ret.tokenCounter = WordsTokenCounter{}
	}
	ret.overlap = max(ret.overlap, 0)
	return ret
}

// Sentences segments text into trimmed, non empty sentences
func Sentences(text string) []string {
	var ret []string
	segmenter := sentences.NewSegmenter([]byte(text))
	for segmenter.Next() {
		if s := strings.TrimSpace(segmenter.Text()); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

func (s *Splitter) TokenCount(text string) int {
	return s.tokenCounter.Count(text)
}

// Split returns the chunks of text. Consecutive chunks share trailing sentences of
// the previous chunk worth at least overlap tokens.
func (s *Splitter) Split(text string) []string {
	parts := Sentences(text)
	counts := make([]int, len(parts))
	for i, part := range parts {
		counts[i] = s.tokenCounter.Count(part)
	}
	var (
		chunks       []string
		start        int
		currentCount int
	)
	for i := range parts {
		if currentCount > 0 && currentCount+counts[i] > s.chunkSize {
			chunks = append(chunks, strings.Join(parts[start:i], " "))
			next := i
			for overlapTokens := 0; next > start && overlapTokens < s.overlap; {
				next--
				overlapTokens += counts[next]
			}
			start = next
			currentCount = 0
			for j := start; j < i; j++ {
				currentCount += counts[j]
			}
		}
		currentCount += counts[i]
	}
	if start < len(parts) {
		chunks = append(chunks, strings.Join(parts[start:], " "))
	}
	return chunks
}
