package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrRetrieval  = errors.New("retrieval failed")
	ErrGeneration = errors.New("generation failed")
)

// Match is a nearest-neighbor hit returned by the vector index.
type Match struct {
	ID       string
	Distance float32
}

// Record is a chunk payload fetched from the index by ID.
type Record struct {
	ID    string
	URL   string
	Chunk string
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorSearcher interface {
	Query(ctx context.Context, vector []float32, limit int) ([]Match, error)
	Fetch(ctx context.Context, ids []string) ([]Record, error)
}

type Generator interface {
	Stream(ctx context.Context, prompt, system string, emit func(fragment string)) error
}

// Service answers questions grounded in previously indexed transcript chunks.
type Service struct {
	embedder  Embedder
	searcher  VectorSearcher
	generator Generator
	topK      int
}

func NewService(embedder Embedder, searcher VectorSearcher, generator Generator, topK int) *Service {
	return &Service{embedder: embedder, searcher: searcher, generator: generator, topK: topK}
}

// Answer embeds the question, retrieves the nearest chunks, and generates a
// grounded answer. Zero matches is not an error; the generation simply runs
// without grounding.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: embed question: %w", ErrRetrieval, err)
	}

	matches, err := s.searcher.Query(ctx, vector, s.topK)
	if err != nil {
		return "", fmt.Errorf("%w: query index: %w", ErrRetrieval, err)
	}

	chunks, err := s.fetchInRankOrder(ctx, matches)
	if err != nil {
		return "", fmt.Errorf("%w: fetch chunks: %w", ErrRetrieval, err)
	}

	grounding := strings.Join(chunks, " ")
	system := fmt.Sprintf("Given the following context, %s", grounding)

	slog.InfoContext(ctx, "answering question", "matches", len(matches))

	// The stream is drained fully before anything is returned to the caller.
	var answer strings.Builder
	if err := s.generator.Stream(ctx, question, system, func(fragment string) {
		answer.WriteString(fragment)
	}); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return answer.String(), nil
}

// fetchInRankOrder resolves match IDs to chunk texts, preserving the
// similarity ranking regardless of the order the fetch returns them in.
func (s *Service) fetchInRankOrder(ctx context.Context, matches []Match) ([]string, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	records, err := s.searcher.Fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	chunks := make([]string, 0, len(matches))
	for _, m := range matches {
		if r, ok := byID[m.ID]; ok {
			chunks = append(chunks, r.Chunk)
		}
	}
	return chunks, nil
}
