package ingest_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ragtube/internal/ingest"
)

// Mocks

type MockDownloader struct{ mock.Mock }

func (m *MockDownloader) Download(ctx context.Context, videoURL string) (string, error) {
	args := m.Called(ctx, videoURL)
	return args.String(0), args.Error(1)
}

type MockObjectStore struct{ mock.Mock }

func (m *MockObjectStore) Put(ctx context.Context, localPath, key string, expiry time.Duration) error {
	args := m.Called(ctx, localPath, key, expiry)
	return args.Error(0)
}

func (m *MockObjectStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type MockTranscriber struct{ mock.Mock }

func (m *MockTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	args := m.Called(ctx, audioURL)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockVectorStore struct{ mock.Mock }

func (m *MockVectorStore) Upsert(ctx context.Context, records []ingest.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) Started(ctx context.Context, url string, attempts uint16) (string, error) {
	args := m.Called(ctx, url, attempts)
	return args.String(0), args.Error(1)
}

func (m *MockRecorder) Advanced(ctx context.Context, id string, stage ingest.Stage) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

func (m *MockRecorder) Failed(ctx context.Context, id string, stage ingest.Stage, cause error) error {
	args := m.Called(ctx, id, stage, cause)
	return args.Error(0)
}
