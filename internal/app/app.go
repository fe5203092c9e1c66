package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"ragtube/features/ask"
	"ragtube/features/job"
	"ragtube/features/video"
	"ragtube/internal/config"
	"ragtube/internal/ingest"
	"ragtube/internal/middleware"
	"ragtube/internal/retrieval"
	"ragtube/internal/text"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// VectorStore is everything the app needs from the index: batch writes from
// the pipeline, similarity reads from the query path, and per-URL admin ops.
type VectorStore interface {
	Upsert(ctx context.Context, records []ingest.Record) error
	Query(ctx context.Context, vector []float32, limit int) ([]retrieval.Match, error)
	Fetch(ctx context.Context, ids []string) ([]retrieval.Record, error)
	CountByURL(ctx context.Context, url string) (int, error)
	DeleteByURL(ctx context.Context, url string) error
}

// Embedder covers both embedding shapes: single texts for questions and
// ordered batches for transcript chunks.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Collaborators are the external-service adapters the pipeline and query
// path call into. Tests substitute fakes here.
type Collaborators struct {
	Downloader  ingest.Downloader
	ObjectStore ingest.ObjectStore
	Transcriber ingest.Transcriber
	Embedder    Embedder
	Generator   retrieval.Generator
}

type App struct {
	Handler      http.Handler
	Consumer     *ingest.Consumer
	VideoService *video.Service
}

func New(
	cfg *config.Config,
	db *sql.DB,
	vecStore VectorStore,
	taskPub TaskPublisher,
	col Collaborators,
	logger *slog.Logger,
) (*App, error) {
	chunker, err := text.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("chunker config: %w", err)
	}

	// Feature: Job (bookkeeping)
	jobRepo := job.NewPostgresRepo(db)
	jobHandler := job.NewHandler(jobRepo)

	// Ingestion pipeline
	pipeline := &ingest.Pipeline{
		Downloader:   col.Downloader,
		Store:        col.ObjectStore,
		Transcriber:  col.Transcriber,
		Embedder:     col.Embedder,
		Index:        vecStore,
		Chunker:      chunker,
		Recorder:     job.NewRecorder(jobRepo),
		AudioExpiry:  cfg.AudioExpiry(),
		PresignTTL:   cfg.PresignTTL(),
		StageTimeout: cfg.StageTimeout(),
	}
	consumer := ingest.NewConsumer(pipeline)

	// Feature: Video
	videoService := video.NewService(taskPub, vecStore)
	videoHandler := video.NewHandler(videoService)

	// Feature: Ask
	retrievalService := retrieval.NewService(col.Embedder, vecStore, col.Generator, cfg.TopK)
	askHandler := ask.NewHandler(retrievalService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /videos", middleware.CorrelationID(enableCORS(videoHandler.Create)))
	mux.Handle("GET /videos", middleware.CorrelationID(enableCORS(videoHandler.Status)))
	mux.Handle("DELETE /videos", middleware.CorrelationID(enableCORS(videoHandler.Delete)))

	mux.Handle("POST /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))

	mux.Handle("GET /jobs", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("GET /jobs/{id}", middleware.CorrelationID(enableCORS(jobHandler.Get)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	logger.Info("app wired",
		"chunk_size", cfg.ChunkSize,
		"chunk_overlap", cfg.ChunkOverlap,
		"top_k", cfg.TopK,
	)

	return &App{
		Handler:      mux,
		Consumer:     consumer,
		VideoService: videoService,
	}, nil
}

func (a *App) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
