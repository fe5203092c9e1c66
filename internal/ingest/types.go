package ingest

import (
	"context"
	"time"
)

// Stage is a position in the ingestion pipeline. Stages only move forward;
// Failed is terminal and reachable from any non-terminal stage.
type Stage string

const (
	StageReceived    Stage = "received"
	StageDownloaded  Stage = "downloaded"
	StageUploaded    Stage = "uploaded"
	StageTranscribed Stage = "transcribed"
	StageChunked     Stage = "chunked"
	StageEmbedded    Stage = "embedded"
	StageIndexed     Stage = "indexed"
	StageFailed      Stage = "failed"
)

// Record is one indexed transcript chunk: the payload written to the vector
// store together with its embedding.
type Record struct {
	ID         string
	Vector     []float32
	URL        string
	Chunk      string
	ChunkIndex int
}

type Downloader interface {
	// Download fetches the audio track of the video at videoURL into a
	// local file and returns its path. The caller owns the file.
	Download(ctx context.Context, videoURL string) (string, error)
}

type ObjectStore interface {
	Put(ctx context.Context, localPath, key string, expiry time.Duration) error
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

type BatchEmbedder interface {
	// EmbedBatch returns one vector per input text, position-aligned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorStore interface {
	Upsert(ctx context.Context, records []Record) error
}

// StageRecorder persists job progress for observability. Recorder failures
// are logged and never fail the job.
type StageRecorder interface {
	Started(ctx context.Context, url string, attempts uint16) (string, error)
	Advanced(ctx context.Context, id string, stage Stage) error
	Failed(ctx context.Context, id string, stage Stage, cause error) error
}
