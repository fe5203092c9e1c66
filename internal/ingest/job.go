package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ragtube/internal/text"
)

// Pipeline holds the collaborators and tuning shared by all ingestion jobs.
// It is built once at startup and is safe for concurrent use; each message
// gets its own Job instance.
type Pipeline struct {
	Downloader  Downloader
	Store       ObjectStore
	Transcriber Transcriber
	Embedder    BatchEmbedder
	Index       VectorStore
	Chunker     *text.Chunker
	Recorder    StageRecorder

	AudioExpiry  time.Duration
	PresignTTL   time.Duration
	StageTimeout time.Duration
}

// Job drives a single video URL through the pipeline. A job owns its audio
// artifact exclusively and must not be shared between goroutines.
type Job struct {
	URL      string
	Stage    Stage
	Attempts uint16

	p        *Pipeline
	recordID string
}

func (p *Pipeline) NewJob(url string, attempts uint16) *Job {
	return &Job{URL: url, Stage: StageReceived, Attempts: attempts, p: p}
}

// Run advances the job to a terminal stage. On success the job ends at
// Indexed; on any collaborator failure it ends at Failed and the returned
// StageError names the failing stage. The job never retries internally,
// redelivery belongs to the queue.
func (j *Job) Run(ctx context.Context) error {
	j.start(ctx)

	audioPath, err := j.download(ctx)
	if err != nil {
		return j.fail(ctx, StageDownloaded, ErrDownload, err)
	}
	j.advance(ctx, StageDownloaded)

	audioURL, err := j.storeAudio(ctx, audioPath)
	if err != nil {
		return j.fail(ctx, StageUploaded, ErrStorage, err)
	}
	j.advance(ctx, StageUploaded)

	transcript, err := j.transcribe(ctx, audioURL)
	if err != nil {
		return j.fail(ctx, StageTranscribed, ErrTranscription, err)
	}
	j.advance(ctx, StageTranscribed)

	chunks := j.p.Chunker.Split(transcript)
	j.advance(ctx, StageChunked)

	if len(chunks) == 0 {
		// Nothing to index. An empty transcript is a successful no-op.
		slog.InfoContext(ctx, "empty transcript, nothing to index", "url", j.URL)
		j.advance(ctx, StageIndexed)
		return nil
	}

	vectors, err := j.embed(ctx, chunks)
	if err != nil {
		return j.fail(ctx, StageEmbedded, ErrEmbedding, err)
	}
	j.advance(ctx, StageEmbedded)

	if err := j.index(ctx, chunks, vectors); err != nil {
		return j.fail(ctx, StageIndexed, ErrIndex, err)
	}
	j.advance(ctx, StageIndexed)

	slog.InfoContext(ctx, "video indexed", "url", j.URL, "chunks", len(chunks))
	return nil
}

func (j *Job) download(ctx context.Context) (string, error) {
	ctx, cancel := j.stageCtx(ctx)
	defer cancel()
	return j.p.Downloader.Download(ctx, j.URL)
}

// storeAudio uploads the local artifact and exchanges the object key for a
// presigned URL. The local file is removed whether or not the upload
// succeeds; the artifact must never outlive this step.
func (j *Job) storeAudio(ctx context.Context, audioPath string) (string, error) {
	defer func() {
		if err := os.Remove(audioPath); err != nil {
			slog.WarnContext(ctx, "failed to remove audio artifact", "path", audioPath, "error", err)
		}
	}()

	ctx, cancel := j.stageCtx(ctx)
	defer cancel()

	key := filepath.Base(audioPath)
	if err := j.p.Store.Put(ctx, audioPath, key, j.p.AudioExpiry); err != nil {
		return "", err
	}
	return j.p.Store.Presign(ctx, key, j.p.PresignTTL)
}

func (j *Job) transcribe(ctx context.Context, audioURL string) (string, error) {
	ctx, cancel := j.stageCtx(ctx)
	defer cancel()
	return j.p.Transcriber.Transcribe(ctx, audioURL)
}

func (j *Job) embed(ctx context.Context, chunks []string) ([][]float32, error) {
	ctx, cancel := j.stageCtx(ctx)
	defer cancel()

	vectors, err := j.p.Embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return vectors, nil
}

// index writes the whole video in one batched upsert. Record IDs are minted
// fresh, so re-ingesting a URL adds records rather than replacing them.
func (j *Job) index(ctx context.Context, chunks []string, vectors [][]float32) error {
	records := make([]Record, 0, len(chunks))
	for i, chunk := range chunks {
		records = append(records, Record{
			ID:         uuid.New().String(),
			Vector:     vectors[i],
			URL:        j.URL,
			Chunk:      chunk,
			ChunkIndex: i,
		})
	}

	ctx, cancel := j.stageCtx(ctx)
	defer cancel()
	return j.p.Index.Upsert(ctx, records)
}

func (j *Job) stageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if j.p.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, j.p.StageTimeout)
}

func (j *Job) start(ctx context.Context) {
	if j.p.Recorder == nil {
		return
	}
	id, err := j.p.Recorder.Started(ctx, j.URL, j.Attempts)
	if err != nil {
		slog.WarnContext(ctx, "failed to record job start", "url", j.URL, "error", err)
		return
	}
	j.recordID = id
}

func (j *Job) advance(ctx context.Context, stage Stage) {
	j.Stage = stage
	if j.p.Recorder == nil || j.recordID == "" {
		return
	}
	if err := j.p.Recorder.Advanced(ctx, j.recordID, stage); err != nil {
		slog.WarnContext(ctx, "failed to record stage", "url", j.URL, "stage", stage, "error", err)
	}
}

func (j *Job) fail(ctx context.Context, attempted Stage, kind, cause error) error {
	j.Stage = StageFailed
	stageErr := &StageError{Stage: attempted, Kind: kind, Err: cause}
	if j.p.Recorder != nil && j.recordID != "" {
		if err := j.p.Recorder.Failed(ctx, j.recordID, attempted, stageErr); err != nil {
			slog.WarnContext(ctx, "failed to record job failure", "url", j.URL, "error", err)
		}
	}
	return stageErr
}
