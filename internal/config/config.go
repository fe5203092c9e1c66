package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// DatabaseURL overrides the discrete DB_* fields when set.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"ragtube"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"ragtube"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQLookupd     string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost       string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP       string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`
	NSQMaxAttempts uint16 `envconfig:"NSQ_MAX_ATTEMPTS" default:"5"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT" default:"minio:9000"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"ragtube-audio"`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"false"`

	// Stored audio objects expire after this long; presigned GET URLs
	// handed to the transcriber share the same lifetime.
	AudioExpirySeconds int `envconfig:"AUDIO_EXPIRY_SECONDS" default:"3600"`
	PresignTTLSeconds  int `envconfig:"PRESIGN_TTL_SECONDS" default:"3600"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-1.5-flash"`

	OpenAIAPIKey          string `envconfig:"OPENAI_API_KEY"`
	WhisperModel          string `envconfig:"WHISPER_MODEL" default:"whisper-1"`
	TranscriptionLanguage string `envconfig:"TRANSCRIPTION_LANGUAGE" default:"en"`

	YTDLPPath   string `envconfig:"YTDLP_PATH" default:"yt-dlp"`
	DownloadDir string `envconfig:"DOWNLOAD_DIR" default:"./tmp/audio"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"512"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`
	TopK         int `envconfig:"TOP_K" default:"3"`

	StageTimeoutSeconds int `envconfig:"STAGE_TIMEOUT_SECONDS" default:"300"`

	ServerPort    int    `envconfig:"SERVER_PORT" default:"8081"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		if c.DBHost == "" {
			return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
		}
		if c.DBUser == "" {
			return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
		}
		if c.DBName == "" {
			return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
		}
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("%w: S3_BUCKET", ErrMissingRequired)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("TOP_K must be positive, got %d", c.TopK)
	}
	return nil
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPass, c.DBName)
}

func (c *Config) AudioExpiry() time.Duration {
	return time.Duration(c.AudioExpirySeconds) * time.Second
}

func (c *Config) PresignTTL() time.Duration {
	return time.Duration(c.PresignTTLSeconds) * time.Second
}

func (c *Config) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}
