package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"yt-audio-clipper/domain/clip"
	"yt-audio-clipper/infrastructure/command"
)

// DefaultAudioQuality is the bitrate yt-dlp re-encodes downloads to
const DefaultAudioQuality = "128K"

// outputTemplate names downloads after the media title
const outputTemplate = "%(title)s.%(ext)s"

// Fetcher implements clip.Fetcher using the yt-dlp binary
type Fetcher struct {
	binaryPath   string
	audioQuality string
	timeout      time.Duration
	runner       command.Runner
}

// FetcherOption is a functional option for configuring Fetcher
type FetcherOption func(*Fetcher)

// WithBinaryPath sets a custom yt-dlp executable path
func WithBinaryPath(path string) FetcherOption {
	return func(f *Fetcher) {
		f.binaryPath = path
	}
}

// WithAudioQuality sets the mp3 bitrate, e.g. "128k"
func WithAudioQuality(quality string) FetcherOption {
	return func(f *Fetcher) {
		if quality != "" {
			f.audioQuality = strings.ToUpper(quality)
		}
	}
}

// WithTimeout bounds each yt-dlp invocation; zero means no limit
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner command.Runner) FetcherOption {
	return func(f *Fetcher) {
		f.runner = runner
	}
}

// NewFetcher creates a new yt-dlp based fetcher
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		binaryPath:   "yt-dlp",
		audioQuality: DefaultAudioQuality,
		runner:       command.NewExecRunner(nil),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// infoJSON is the subset of yt-dlp's --dump-single-json output we read
type infoJSON struct {
	Title    string   `json:"title"`
	Duration *float64 `json:"duration"`
}

// Probe implements clip.Fetcher
func (f *Fetcher) Probe(ctx context.Context, url string) (clip.Metadata, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	out, err := f.runner.Output(ctx, f.binaryPath,
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		"--", url,
	)
	if err != nil {
		return clip.Metadata{}, err
	}

	var info infoJSON
	if err := json.Unmarshal(out, &info); err != nil {
		return clip.Metadata{}, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}

	meta := clip.Metadata{Title: info.Title}
	if meta.Title == "" {
		meta.Title = clip.DefaultTitle
	}
	if info.Duration != nil {
		meta.Duration = *info.Duration
	}
	return meta, nil
}

// Download implements clip.Fetcher. yt-dlp writes <title>.mp3 into dir.
func (f *Fetcher) Download(ctx context.Context, url, dir string) error {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", strings.TrimPrefix(clip.OutputExtension, "."),
		"--audio-quality", f.audioQuality,
		"--output", filepath.Join(dir, outputTemplate),
		"--no-playlist",
		"--no-warnings",
		"--no-progress",
		"--quiet",
		"--", url,
	}

	return f.runner.Run(ctx, f.binaryPath, args...)
}

// VerifyInstalled checks that yt-dlp is available
func (f *Fetcher) VerifyInstalled(ctx context.Context) error {
	if _, err := f.runner.Output(ctx, f.binaryPath, "--version"); err != nil {
		return fmt.Errorf("yt-dlp not found or not executable: %w", err)
	}
	return nil
}

func (f *Fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.timeout)
}

// Ensure Fetcher implements clip.Fetcher
var _ clip.Fetcher = (*Fetcher)(nil)
