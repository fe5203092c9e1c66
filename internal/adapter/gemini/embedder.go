package gemini

import (
	"context"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
)

// Embedder produces dense vectors via the Gemini embedding API. The same
// model serves single-query embedding and whole-video batches so query and
// chunk vectors live in one space.
type Embedder struct {
	client *genai.Client
	model  string
}

func NewEmbedder(client *genai.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	slog.DebugContext(ctx, "embedding content", "model", e.model, "length", len(text))
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err)
		return nil, err
	}
	if res.Embedding == nil {
		return nil, nil
	}
	return res.Embedding.Values, nil
}

// EmbedBatch embeds all texts in a single API call, preserving order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	slog.DebugContext(ctx, "embedding batch", "model", e.model, "count", len(texts))
	em := e.client.EmbeddingModel(e.model)

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		slog.ErrorContext(ctx, "batch embedding failed", "error", err)
		return nil, err
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, emb := range res.Embeddings {
		vectors = append(vectors, emb.Values)
	}
	return vectors, nil
}
