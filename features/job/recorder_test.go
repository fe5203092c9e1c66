package job_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ragtube/features/job"
	"ragtube/internal/ingest"
)

func TestRecorder_Started(t *testing.T) {
	repo := new(MockRepo)
	rec := job.NewRecorder(repo)

	repo.On("Create", mock.Anything, "https://example.com/v1", 2).Return("job-1", nil)

	id, err := rec.Started(context.Background(), "https://example.com/v1", 2)
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)
}

func TestRecorder_Advanced(t *testing.T) {
	repo := new(MockRepo)
	rec := job.NewRecorder(repo)

	repo.On("UpdateStage", mock.Anything, "job-1", "embedded").Return(nil)

	assert.NoError(t, rec.Advanced(context.Background(), "job-1", ingest.StageEmbedded))
}

func TestRecorder_Failed(t *testing.T) {
	repo := new(MockRepo)
	rec := job.NewRecorder(repo)

	repo.On("MarkFailed", mock.Anything, "job-1", mock.MatchedBy(func(msg string) bool {
		return msg != ""
	})).Return(nil)

	assert.NoError(t, rec.Failed(context.Background(), "job-1", ingest.StageDownloaded, assert.AnError))
	repo.AssertExpectations(t)
}
