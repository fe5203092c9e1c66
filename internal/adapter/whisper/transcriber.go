package whisper

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Transcriber sends audio to the OpenAI transcription endpoint. The audio is
// streamed straight from its presigned URL without touching local disk.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
	httpc    *http.Client
}

func NewTranscriber(apiKey, model, language string) *Transcriber {
	return &Transcriber{
		client:   openai.NewClient(apiKey),
		model:    model,
		language: language,
		httpc:    http.DefaultClient,
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("build audio request: %w", err)
	}
	resp, err := t.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch audio: unexpected status %d", resp.StatusCode)
	}

	res, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   resp.Body,
		FilePath: "audio.m4a",
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}
