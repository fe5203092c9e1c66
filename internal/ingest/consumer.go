package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"ragtube/internal/middleware"
)

// TaskPayload is the message body published on the ingest topic.
type TaskPayload struct {
	URL           string `json:"url"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Consumer turns queue messages into ingestion jobs. Returning an error
// leaves the message unacknowledged so NSQ redelivers it; the redelivery
// budget lives in the consumer config, never here.
type Consumer struct {
	pipeline *Pipeline
}

func NewConsumer(p *Pipeline) *Consumer {
	return &Consumer{pipeline: p}
}

func (c *Consumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload TaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison pill: invalid JSON will never parse, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if payload.URL == "" {
		slog.ErrorContext(ctx, "missing url, dropping message")
		return nil
	}

	job := c.pipeline.NewJob(payload.URL, m.Attempts)
	slog.InfoContext(ctx, "ingestion started", "url", job.URL, "attempt", job.Attempts)

	if err := job.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "ingestion failed", "url", job.URL, "error", err)
		return err // unacknowledged: the queue redelivers per its own policy
	}
	return nil
}
