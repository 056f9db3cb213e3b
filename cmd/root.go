package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	appclip "yt-audio-clipper/application/clip"
	"yt-audio-clipper/domain/clip"
	"yt-audio-clipper/infrastructure/command"
	"yt-audio-clipper/infrastructure/config"
	"yt-audio-clipper/infrastructure/ffmpeg"
	"yt-audio-clipper/infrastructure/filesystem"
	"yt-audio-clipper/infrastructure/logging"
	"yt-audio-clipper/infrastructure/ytdlp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// usageMessage is reported when the positional argument count is wrong
const usageMessage = "Usage: yt-audio-clipper <video_url> <start_time> <end_time>"

// errReported means a failure payload was already written to stdout and the
// process should exit non-zero without printing anything else
var errReported = errors.New("failure already reported")

// OutputWriter is where commands write their results
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

var (
	// DefaultOutput receives the JSON result line
	DefaultOutput OutputWriter = os.Stdout
	// DefaultErrOutput receives logs and interactive hints
	DefaultErrOutput io.Writer = os.Stderr
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "yt-audio-clipper <video_url> <start_time> <end_time>",
	Short: "Cut an mp3 clip out of an online video",
	Long: `yt-audio-clipper downloads the audio track of an online video, trims it
to the requested window and exports it as an mp3 under public/temp_audio.

Times are in seconds and may be fractional. The outcome is printed as a
single JSON line on stdout; diagnostics go to stderr.

Example:
  yt-audio-clipper https://www.youtube.com/watch?v=dQw4w9WgXcQ 10 20.5`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runClip,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(DefaultErrOutput, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Arguments after the URL are times, and a leading "-" is a value, not a flag
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if c != rootCmd {
			return err
		}
		if wErr := appclip.Report(DefaultOutput, nil, clip.NewUsageError("%s", usageMessage)); wErr != nil {
			return wErr
		}
		return errReported
	})
}

func initConfig() {
	config.LoadEnvFile()

	if cfgFile == "" {
		cfg, cfgErr = config.LoadOrDefault(config.DefaultPath)
	} else {
		cfg, cfgErr = config.Load(cfgFile)
	}
	if cfgErr != nil {
		return
	}

	config.ApplyEnv(cfg)
	cfgErr = config.Validate(cfg)
}

// GetConfig returns the loaded configuration, or the error that prevented loading it
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// configPath returns the path setup and config commands read and write
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath
}

// newLogger builds the stderr logger for cfg
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	}, DefaultErrOutput)
}

// ClipDependencies holds the collaborators of a clip job
type ClipDependencies struct {
	Fetcher    clip.Fetcher
	Trimmer    clip.Trimmer
	Workspaces clip.WorkspaceProvider
	Locator    clip.ArtifactLocator
	Exporter   clip.Exporter
	Logger     *zap.Logger
	Options    appclip.Options
}

// NewClipDependencies wires the production adapters from cfg
func NewClipDependencies(cfg *config.Config, logger *zap.Logger) ClipDependencies {
	// Child stderr is echoed only while debugging; it is always captured for errors
	var echo io.Writer
	if logger.Core().Enabled(zap.DebugLevel) {
		echo = DefaultErrOutput
	}
	runner := command.NewExecRunner(echo)

	return ClipDependencies{
		Fetcher: ytdlp.NewFetcher(
			ytdlp.WithBinaryPath(cfg.Tools.YtDlpPath),
			ytdlp.WithAudioQuality(cfg.Audio.Bitrate),
			ytdlp.WithTimeout(cfg.Fetch.Timeout),
			ytdlp.WithCommandRunner(runner),
		),
		Trimmer: ffmpeg.NewTrimmer(
			ffmpeg.WithFFmpegPath(cfg.Tools.FFmpegPath),
			ffmpeg.WithFFprobePath(cfg.Tools.FFprobePath),
			ffmpeg.WithBitrate(cfg.Audio.Bitrate),
			ffmpeg.WithCommandRunner(runner),
		),
		Workspaces: filesystem.NewWorkspaces(cfg.Paths.TempDirectory),
		Locator:    filesystem.NewLocator(),
		Exporter:   filesystem.NewExporter(cfg.Paths.PublicDirectory),
		Logger:     logger,
		Options: appclip.Options{
			RequireOrderedWindow: cfg.Validation.RequireOrderedWindow,
		},
	}
}

func runClip(cmd *cobra.Command, args []string) error {
	// Argument errors are reported before configuration is consulted
	if _, err := clip.ParseRequest(args); err != nil {
		return reportUsage(DefaultOutput, err)
	}

	cfg, err := GetConfig()
	if err != nil {
		return appclip.Report(DefaultOutput, nil, clip.Unspecified(err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return appclip.Report(DefaultOutput, nil, clip.Unspecified(err))
	}
	defer logger.Sync()

	return RunClipWithDependencies(cmd.Context(), NewClipDependencies(cfg, logger), args, DefaultOutput)
}

// RunClipWithDependencies runs a clip job with injected dependencies (for testing).
// It returns errReported for argument errors, after writing the usage payload.
func RunClipWithDependencies(ctx context.Context, deps ClipDependencies, args []string, out OutputWriter) error {
	req, err := clip.ParseRequest(args)
	if err != nil {
		return reportUsage(out, err)
	}

	service := appclip.NewService(
		deps.Fetcher,
		deps.Trimmer,
		deps.Workspaces,
		deps.Locator,
		deps.Exporter,
		deps.Logger,
		deps.Options,
	)
	return service.Execute(ctx, req, out)
}

// reportUsage writes the failure payload for an argument error
func reportUsage(out OutputWriter, err error) error {
	if err == clip.ErrUsage {
		err = clip.NewUsageError("%s", usageMessage)
	}
	if wErr := appclip.Report(out, nil, err); wErr != nil {
		return wErr
	}
	return errReported
}
