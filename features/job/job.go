package job

import (
	"context"
	"database/sql"
	"time"
)

// Job is one row of ingestion bookkeeping. It mirrors what the pipeline
// reports, it never drives the pipeline.
type Job struct {
	ID        string         `json:"id"`
	URL       string         `json:"url"`
	Stage     string         `json:"stage"`
	Attempts  int            `json:"attempts"`
	Error     sql.NullString `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// ErrorMessage is the JSON view of Error.
	ErrorMessage string `json:"error,omitempty"`
}

type Repository interface {
	Create(ctx context.Context, url string, attempts int) (string, error)
	UpdateStage(ctx context.Context, id, stage string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
	List(ctx context.Context, limit int) ([]Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	Count(ctx context.Context) (int, error)
}
