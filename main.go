package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"ragtube/internal/adapter/gemini"
	"ragtube/internal/adapter/whisper"
	"ragtube/internal/adapter/ytdlp"
	"ragtube/internal/app"
	"ragtube/internal/config"
	"ragtube/internal/logger"
)

func main() {
	log := slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer deps.DB.Close()

	col := app.Collaborators{
		Downloader:  ytdlp.NewDownloader(cfg.YTDLPPath, cfg.DownloadDir),
		ObjectStore: deps.ObjectStore,
		Transcriber: whisper.NewTranscriber(cfg.OpenAIAPIKey, cfg.WhisperModel, cfg.TranscriptionLanguage),
		Embedder:    gemini.NewEmbedder(deps.Genai, cfg.EmbeddingModel),
		Generator:   gemini.NewGenerator(deps.Genai, cfg.GenerationModel),
	}

	a, err := app.New(cfg, deps.DB, deps.VectorStore, deps.NSQProducer, col, log)
	if err != nil {
		return fmt.Errorf("app wiring: %w", err)
	}

	// Queue consumer. Redelivery budget lives here, not in the pipeline.
	nsqCfg := nsq.NewConfig()
	nsqCfg.MaxAttempts = cfg.NSQMaxAttempts
	consumer, err := nsq.NewConsumer(config.TopicIngestTask, config.ChannelIngest, nsqCfg)
	if err != nil {
		return fmt.Errorf("nsq consumer: %w", err)
	}
	consumer.AddHandler(a.Consumer)

	if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		slog.Warn("failed to connect to nsqlookupd, trying nsqd directly", "error", err)
		if err := consumer.ConnectToNSQD(cfg.NSQDHost); err != nil {
			return fmt.Errorf("nsq connect: %w", err)
		}
	}
	defer consumer.Stop()

	return a.Run(ctx, cfg.ServerPort)
}
