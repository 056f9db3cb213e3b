package cmd

import (
	"context"
	"errors"
	"fmt"

	"yt-audio-clipper/infrastructure/config"
	"yt-audio-clipper/infrastructure/ffmpeg"
	"yt-audio-clipper/infrastructure/ytdlp"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
	Long: `Inspect the configuration after defaults, config.yaml and environment
overrides have been applied.

Examples:
  yt-audio-clipper config show
  yt-audio-clipper config check`,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
}

// --- SHOW command ---

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	return RunConfigShowWithDependencies(cfg, DefaultOutput)
}

// RunConfigShowWithDependencies runs the show command with injected dependencies
func RunConfigShowWithDependencies(cfg *config.Config, out OutputWriter) error {
	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// --- CHECK command ---

// ToolVerifier is implemented by adapters that wrap an external executable
type ToolVerifier interface {
	VerifyInstalled(ctx context.Context) error
}

// ToolCheck names a verifier for reporting
type ToolCheck struct {
	Name     string
	Verifier ToolVerifier
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that yt-dlp, ffmpeg and ffprobe can be executed",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	checks := []ToolCheck{
		{Name: "yt-dlp", Verifier: ytdlp.NewFetcher(ytdlp.WithBinaryPath(cfg.Tools.YtDlpPath))},
		{Name: "ffmpeg/ffprobe", Verifier: ffmpeg.NewTrimmer(
			ffmpeg.WithFFmpegPath(cfg.Tools.FFmpegPath),
			ffmpeg.WithFFprobePath(cfg.Tools.FFprobePath),
		)},
	}
	return RunConfigCheckWithDependencies(cmd.Context(), checks, DefaultOutput)
}

// RunConfigCheckWithDependencies runs every check and reports each outcome on its own line
func RunConfigCheckWithDependencies(ctx context.Context, checks []ToolCheck, out OutputWriter) error {
	var failed []string
	for _, check := range checks {
		if err := check.Verifier.VerifyInstalled(ctx); err != nil {
			fmt.Fprintf(out, "%-16s FAILED: %v\n", check.Name, err)
			failed = append(failed, check.Name)
			continue
		}
		fmt.Fprintf(out, "%-16s ok\n", check.Name)
	}

	if len(failed) > 0 {
		return errors.New("some tools are not usable; check the tools section of the configuration")
	}
	return nil
}
