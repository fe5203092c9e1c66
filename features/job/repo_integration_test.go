package job_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragtube/features/job"
	"ragtube/internal/testutils"
)

func TestJobRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	repo := job.NewPostgresRepo(s.DB)
	ctx := context.Background()

	// 1. Create two jobs
	id1, err := repo.Create(ctx, "https://example.com/v1", 1)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	// Sleep to ensure time difference for ordering test
	time.Sleep(100 * time.Millisecond)

	id2, err := repo.Create(ctx, "https://example.com/v2", 1)
	require.NoError(t, err)

	// 2. Advance one, fail the other
	require.NoError(t, repo.UpdateStage(ctx, id1, "indexed"))
	require.NoError(t, repo.MarkFailed(ctx, id2, "downloaded: yt-dlp exited 1"))

	// 3. Verify List ordering (DESC) and contents
	jobs, err := repo.List(ctx, 100)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, id2, jobs[0].ID)
	assert.Equal(t, "failed", jobs[0].Stage)
	assert.Equal(t, "downloaded: yt-dlp exited 1", jobs[0].ErrorMessage)
	assert.Equal(t, id1, jobs[1].ID)
	assert.Equal(t, "indexed", jobs[1].Stage)

	// 4. Get
	j, err := repo.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/v1", j.URL)
	assert.Empty(t, j.ErrorMessage)

	// 5. Count
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
