package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"yt-audio-clipper/domain/clip"
	"yt-audio-clipper/infrastructure/command"
)

// DefaultBitrate is the bitrate of exported clips
const DefaultBitrate = "128k"

// Trimmer implements clip.Trimmer using ffprobe and ffmpeg
type Trimmer struct {
	ffmpegPath  string
	ffprobePath string
	bitrate     string
	runner      command.Runner
}

// TrimmerOption is a functional option for configuring Trimmer
type TrimmerOption func(*Trimmer)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TrimmerOption {
	return func(t *Trimmer) {
		t.ffmpegPath = path
	}
}

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) TrimmerOption {
	return func(t *Trimmer) {
		t.ffprobePath = path
	}
}

// WithBitrate sets the mp3 bitrate of the trimmed output
func WithBitrate(bitrate string) TrimmerOption {
	return func(t *Trimmer) {
		if bitrate != "" {
			t.bitrate = bitrate
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner command.Runner) TrimmerOption {
	return func(t *Trimmer) {
		t.runner = runner
	}
}

// NewTrimmer creates a new FFmpeg-based trimmer
func NewTrimmer(opts ...TrimmerOption) *Trimmer {
	t := &Trimmer{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		bitrate:     DefaultBitrate,
		runner:      command.NewExecRunner(nil),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Trim implements clip.Trimmer.
// The window is clamped to the decoded length of sourcePath before slicing.
// A window that clamps to nothing still produces an mp3, holding no audio.
func (t *Trimmer) Trim(ctx context.Context, sourcePath string, window clip.Window, outputPath string) (clip.Window, error) {
	lengthMS, err := t.DurationMS(ctx, sourcePath)
	if err != nil {
		return clip.Window{}, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return clip.Window{}, fmt.Errorf("failed to create trim output directory: %w", err)
	}

	effective := window.Clamp(lengthMS)
	args := t.sliceArgs(sourcePath, effective, outputPath)
	if effective.Empty() {
		args = t.silenceArgs(outputPath)
	}

	if err := t.runner.Run(ctx, t.ffmpegPath, args...); err != nil {
		return clip.Window{}, fmt.Errorf("ffmpeg trim failed: %w", err)
	}

	return effective, nil
}

// sliceArgs re-encodes [StartMS, EndMS) of sourcePath
func (t *Trimmer) sliceArgs(sourcePath string, window clip.Window, outputPath string) []string {
	return []string{
		"-v", "error",
		"-i", sourcePath,
		"-ss", formatMillis(window.StartMS),
		"-to", formatMillis(window.EndMS),
		"-vn",                   // No video
		"-acodec", "libmp3lame", // MP3 codec
		"-ab", t.bitrate,        // Audio bitrate
		"-y",                    // Overwrite output file if it exists
		outputPath,
	}
}

// silenceArgs writes a zero-length mp3; ffmpeg rejects -ss/-to once -to is not after -ss
func (t *Trimmer) silenceArgs(outputPath string) []string {
	return []string{
		"-v", "error",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", "0",
		"-acodec", "libmp3lame",
		"-ab", t.bitrate,
		"-y",
		outputPath,
	}
}

// probeOutput is the subset of `ffprobe -print_format json -show_format` we read
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// DurationMS returns the decoded length of an audio file in whole milliseconds
func (t *Trimmer) DurationMS(ctx context.Context, path string) (int64, error) {
	out, err := t.runner.Output(ctx, t.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q from ffprobe: %w", probe.Format.Duration, err)
	}

	return int64(seconds * 1000), nil
}

// VerifyInstalled checks that ffmpeg and ffprobe are available
func (t *Trimmer) VerifyInstalled(ctx context.Context) error {
	if _, err := t.runner.Output(ctx, t.ffmpegPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	if _, err := t.runner.Output(ctx, t.ffprobePath, "-version"); err != nil {
		return fmt.Errorf("ffprobe not found or not executable: %w", err)
	}
	return nil
}

// formatMillis renders milliseconds as seconds with exactly three decimals
func formatMillis(ms int64) string {
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}

// Ensure Trimmer implements clip.Trimmer
var _ clip.Trimmer = (*Trimmer)(nil)
