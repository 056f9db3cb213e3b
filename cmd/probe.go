package cmd

import (
	"context"

	appclip "yt-audio-clipper/application/clip"
	"yt-audio-clipper/domain/clip"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <video_url>",
	Short: "Print the title and duration of a video without downloading it",
	Long: `Probe a video with yt-dlp and print its metadata as one JSON line.

Use this to check the valid time range before cutting a clip.

Example:
  yt-audio-clipper probe https://www.youtube.com/watch?v=dQw4w9WgXcQ`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

// probePayload is the success payload of the probe command
type probePayload struct {
	Success  bool    `json:"success"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return reportFailure(DefaultOutput, err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return reportFailure(DefaultOutput, err)
	}
	defer logger.Sync()

	deps := NewClipDependencies(cfg, logger)
	return RunProbeWithDependencies(cmd.Context(), deps.Fetcher, args[0], DefaultOutput)
}

// RunProbeWithDependencies runs the probe command with injected dependencies (for testing)
func RunProbeWithDependencies(ctx context.Context, fetcher clip.Fetcher, url string, out OutputWriter) error {
	meta, err := fetcher.Probe(ctx, url)
	if err != nil {
		return reportFailure(out, clip.NewFetchError(err))
	}
	if meta.Title == "" {
		meta.Title = clip.DefaultTitle
	}

	return appclip.WriteJSON(out, probePayload{
		Success:  true,
		Title:    meta.Title,
		Duration: meta.Duration,
	})
}

// reportFailure writes the failure payload for a subcommand and signals a non-zero exit
func reportFailure(out OutputWriter, err error) error {
	if wErr := appclip.Report(out, nil, err); wErr != nil {
		return wErr
	}
	return errReported
}
