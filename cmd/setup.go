package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"yt-audio-clipper/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Password(message string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Password(message string) (string, error) {
	result := ""
	if err := survey.AskOne(&survey.Password{Message: message}, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up output and scratch directories,
external tool paths, audio bitrate, logging and the upload target
(Google Drive or MinIO).`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, configPath(), DefaultErrOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out io.Writer) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to yt-audio-clipper setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	steps := []func(Prompter, *config.Config) error{
		promptPaths,
		promptTools,
		promptAudio,
		promptLogging,
		promptUpload,
	}
	for _, step := range steps {
		if err := step(prompter, cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

// inputOrDefault prompts for a value and falls back to defaultValue on empty input
func inputOrDefault(prompter Prompter, message, defaultValue string) (string, error) {
	value, err := prompter.Input(message, defaultValue)
	if err != nil {
		return "", fmt.Errorf("prompt cancelled")
	}
	if value == "" {
		value = defaultValue
	}
	return value, nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	public, err := inputOrDefault(prompter, "Public directory (clips go to <dir>/temp_audio)?", cfg.Paths.PublicDirectory)
	if err != nil {
		return err
	}
	cfg.Paths.PublicDirectory = public

	temp, err := prompter.Input("Scratch directory for downloads? (empty uses the system temp dir)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.TempDirectory = temp

	return nil
}

func promptTools(prompter Prompter, cfg *config.Config) error {
	var err error
	if cfg.Tools.YtDlpPath, err = inputOrDefault(prompter, "Path to yt-dlp?", cfg.Tools.YtDlpPath); err != nil {
		return err
	}
	if cfg.Tools.FFmpegPath, err = inputOrDefault(prompter, "Path to ffmpeg?", cfg.Tools.FFmpegPath); err != nil {
		return err
	}
	if cfg.Tools.FFprobePath, err = inputOrDefault(prompter, "Path to ffprobe?", cfg.Tools.FFprobePath); err != nil {
		return err
	}
	return nil
}

func promptAudio(prompter Prompter, cfg *config.Config) error {
	bitrate, err := inputOrDefault(prompter, "Audio bitrate for mp3 clips?", cfg.Audio.Bitrate)
	if err != nil {
		return err
	}
	cfg.Audio.Bitrate = bitrate

	ordered, err := prompter.Confirm("Reject requests whose end time is not after the start time?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Validation.RequireOrderedWindow = ordered

	return nil
}

func promptLogging(prompter Prompter, cfg *config.Config) error {
	level, err := prompter.Select("Log level?", []string{"debug", "info", "warn", "error"}, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.Level = level

	file, err := prompter.Input("Log file? (empty logs to stderr only)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.File = file

	return nil
}

func promptUpload(prompter Prompter, cfg *config.Config) error {
	target, err := prompter.Select("Where should clips be uploaded?", []string{"drive", "minio"}, cfg.Upload.Target)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Upload.Target = target

	if target == "minio" {
		return promptMinio(prompter, cfg)
	}
	return promptGoogle(prompter, cfg)
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	var err error
	if cfg.Google.CredentialsFile, err = inputOrDefault(prompter, "Path to Google credentials file?", cfg.Google.CredentialsFile); err != nil {
		return err
	}

	token, err := prompter.Input("Path to OAuth token file? (empty uses a service account)", cfg.Google.TokenFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Google.TokenFile = token

	folder, err := prompter.Input("Google Drive folder ID for clips? (empty uses My Drive)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Google.FolderID = folder

	return nil
}

func promptMinio(prompter Prompter, cfg *config.Config) error {
	endpoint, err := prompter.Input("MinIO endpoint (host:port)?", "localhost:9000")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	cfg.Minio.Endpoint = endpoint

	accessKey, err := prompter.Input("MinIO access key?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Minio.AccessKey = accessKey

	secretKey, err := prompter.Password("MinIO secret key?")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Minio.SecretKey = secretKey

	bucket, err := prompter.Input("Bucket name?", "clips")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	cfg.Minio.Bucket = bucket

	useSSL, err := prompter.Confirm("Use HTTPS?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Minio.UseSSL = useSSL

	return nil
}
