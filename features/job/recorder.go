package job

import (
	"context"
	"fmt"

	"ragtube/internal/ingest"
)

// Recorder adapts the repository to the pipeline's stage bookkeeping. Every
// call is best-effort from the pipeline's point of view; errors surface to
// the caller only so they can be logged.
type Recorder struct {
	repo Repository
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Started(ctx context.Context, url string, attempts uint16) (string, error) {
	return r.repo.Create(ctx, url, int(attempts))
}

func (r *Recorder) Advanced(ctx context.Context, id string, stage ingest.Stage) error {
	return r.repo.UpdateStage(ctx, id, string(stage))
}

func (r *Recorder) Failed(ctx context.Context, id string, stage ingest.Stage, cause error) error {
	return r.repo.MarkFailed(ctx, id, fmt.Sprintf("%s: %v", stage, cause))
}
