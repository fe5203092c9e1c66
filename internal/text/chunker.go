package text

import (
	"fmt"
	"strings"
)

// Chunker splits transcript text into overlapping windows of tokens sized
// for the embedding model. It is deterministic and does no I/O.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the window geometry up front: an overlap equal to or
// larger than the window size would never advance through the input.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split tokenizes the input and emits windows of up to size tokens, each
// window starting overlap tokens before the previous one ended. The final
// window may be shorter and ends exactly at the last token. Empty or
// whitespace-only input yields no chunks.
func (c *Chunker) Split(input string) []string {
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + c.size
		if end >= len(tokens) {
			chunks = append(chunks, strings.Join(tokens[start:], " "))
			return chunks
		}
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
	}
}

// Size reports the configured window size in tokens.
func (c *Chunker) Size() int { return c.size }

// Overlap reports how many tokens consecutive windows share.
func (c *Chunker) Overlap() int { return c.overlap }
