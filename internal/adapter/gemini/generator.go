package gemini

import (
	"context"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// Generator wraps the Gemini text generation API in streaming mode.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(client *genai.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Stream generates a completion for prompt under the given system
// instruction, calling emit for each text fragment as it arrives. The stream
// is always drained to the end.
func (g *Generator) Stream(ctx context.Context, prompt, system string, emit func(fragment string)) error {
	gm := g.client.GenerativeModel(g.model)
	gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	gm.SetTemperature(0.6)
	gm.SetTopK(50)
	gm.SetTopP(0.9)
	gm.SetMaxOutputTokens(1024)

	slog.DebugContext(ctx, "generating answer", "model", g.model, "prompt_length", len(prompt))

	iter := gm.GenerateContentStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "generation stream failed", "error", err)
			return err
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					emit(string(txt))
				}
			}
		}
	}
}
