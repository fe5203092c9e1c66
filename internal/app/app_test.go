package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"ragtube/internal/config"
	"ragtube/internal/ingest"
	"ragtube/internal/retrieval"
)

type fakeVectorStore struct{}

func (f *fakeVectorStore) Upsert(ctx context.Context, records []ingest.Record) error { return nil }
func (f *fakeVectorStore) Query(ctx context.Context, vector []float32, limit int) ([]retrieval.Match, error) {
	return nil, nil
}
func (f *fakeVectorStore) Fetch(ctx context.Context, ids []string) ([]retrieval.Record, error) {
	return nil, nil
}
func (f *fakeVectorStore) CountByURL(ctx context.Context, url string) (int, error) { return 0, nil }
func (f *fakeVectorStore) DeleteByURL(ctx context.Context, url string) error       { return nil }

type fakePublisher struct{ published int }

func (f *fakePublisher) Publish(topic string, body []byte) error {
	f.published++
	return nil
}

type fakeDownloader struct{}

func (f *fakeDownloader) Download(ctx context.Context, videoURL string) (string, error) {
	return "", nil
}

type fakeObjectStore struct{}

func (f *fakeObjectStore) Put(ctx context.Context, localPath, key string, expiry time.Duration) error {
	return nil
}
func (f *fakeObjectStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", nil
}

type fakeTranscriber struct{}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	return "", nil
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) { return nil, nil }
func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

type fakeGenerator struct{}

func (f *fakeGenerator) Stream(ctx context.Context, prompt, system string, emit func(string)) error {
	emit("ok")
	return nil
}

func testCollaborators() Collaborators {
	return Collaborators{
		Downloader:  &fakeDownloader{},
		ObjectStore: &fakeObjectStore{},
		Transcriber: &fakeTranscriber{},
		Embedder:    &fakeEmbedder{},
		Generator:   &fakeGenerator{},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		ChunkSize:    512,
		ChunkOverlap: 50,
		TopK:         3,
	}
}

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	a, err := New(testConfig(), db, &fakeVectorStore{}, &fakePublisher{}, testCollaborators(), logger)
	assert.NoError(t, err)
	assert.NotNil(t, a)
	assert.NotNil(t, a.Handler)
	assert.NotNil(t, a.Consumer)
	assert.NotNil(t, a.VideoService)

	// Verify Routes
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	req = httptest.NewRequest("POST", "/ping", nil)
	w = httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestNew_InvalidChunkConfig(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.ChunkOverlap = cfg.ChunkSize

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	_, err = New(cfg, db, &fakeVectorStore{}, &fakePublisher{}, testCollaborators(), logger)
	assert.Error(t, err)
}

func TestNew_SubmitRoute(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	pub := &fakePublisher{}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	a, err := New(testConfig(), db, &fakeVectorStore{}, pub, testCollaborators(), logger)
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", "/videos", strings.NewReader(`{"url":"https://example.com/v1"}`))
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, pub.published)
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestNew_EmptyURLRejected(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	pub := &fakePublisher{}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	a, err := New(testConfig(), db, &fakeVectorStore{}, pub, testCollaborators(), logger)
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", "/videos", strings.NewReader(`{"url":""}`))
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, pub.published)
}
