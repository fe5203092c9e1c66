package ytdlp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// Downloader shells out to yt-dlp to fetch a video's audio track as m4a.
type Downloader struct {
	binPath string
	destDir string
}

func NewDownloader(binPath, destDir string) *Downloader {
	return &Downloader{binPath: binPath, destDir: destDir}
}

// Download writes the audio track to a uniquely named file under destDir and
// returns its path. The caller owns the file and is responsible for removing
// it.
func (d *Downloader) Download(ctx context.Context, videoURL string) (string, error) {
	if err := os.MkdirAll(d.destDir, 0o750); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	outPath := filepath.Join(d.destDir, uuid.New().String()+".m4a")

	cmd := exec.CommandContext(ctx, d.binPath,
		"-f", "m4a/bestaudio/best",
		"-o", outPath,
		videoURL,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp: %w: %s", err, out)
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("yt-dlp produced no output file: %w", err)
	}

	slog.DebugContext(ctx, "audio downloaded", "url", videoURL, "path", outPath)
	return outPath, nil
}
