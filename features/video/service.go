package video

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ragtube/internal/config"
	"ragtube/internal/ingest"
	"ragtube/internal/middleware"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// Index is the slice of the vector store the video feature needs.
type Index interface {
	CountByURL(ctx context.Context, url string) (int, error)
	DeleteByURL(ctx context.Context, url string) error
}

type Service struct {
	pub   EventPublisher
	index Index
}

func NewService(pub EventPublisher, index Index) *Service {
	return &Service{pub: pub, index: index}
}

// Submit enqueues exactly one ingestion request. All real work happens in
// the consumer; submission only validates and publishes.
func (s *Service) Submit(ctx context.Context, url string) error {
	payload := ingest.TaskPayload{
		URL:           url,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := s.pub.Publish(config.TopicIngestTask, body); err != nil {
		return fmt.Errorf("publish task: %w", err)
	}
	slog.InfoContext(ctx, "video submitted", "url", url)
	return nil
}

// ChunkCount reports how many chunks are indexed for a video URL.
func (s *Service) ChunkCount(ctx context.Context, url string) (int, error) {
	return s.index.CountByURL(ctx, url)
}

// Delete removes every indexed chunk for a video URL. Because re-ingesting
// a URL appends new records instead of replacing old ones, this is the way
// to clear a video before re-submitting it.
func (s *Service) Delete(ctx context.Context, url string) error {
	if err := s.index.DeleteByURL(ctx, url); err != nil {
		return err
	}
	slog.InfoContext(ctx, "video chunks deleted", "url", url)
	return nil
}
