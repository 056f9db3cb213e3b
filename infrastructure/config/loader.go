package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Tools      ToolsConfig      `yaml:"tools"`
	Audio      AudioConfig      `yaml:"audio"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Upload     UploadConfig     `yaml:"upload"`
	Google     GoogleConfig     `yaml:"google"`
	Minio      MinioConfig      `yaml:"minio"`
}

// PathsConfig contains directories used by a clip job
type PathsConfig struct {
	PublicDirectory string `yaml:"public_directory" validate:"required"`
	TempDirectory   string `yaml:"temp_directory,omitempty"` // empty uses the OS temp dir
}

// ToolsConfig contains paths to the external executables
type ToolsConfig struct {
	YtDlpPath   string `yaml:"ytdlp_path" validate:"required"`
	FFmpegPath  string `yaml:"ffmpeg_path" validate:"required"`
	FFprobePath string `yaml:"ffprobe_path" validate:"required"`
}

// AudioConfig contains output encoding settings
type AudioConfig struct {
	Bitrate string `yaml:"bitrate" validate:"required,bitrate"`
}

// FetchConfig contains downloader settings
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout,omitempty"` // zero means no limit
}

// ValidationConfig contains optional request checks
type ValidationConfig struct {
	RequireOrderedWindow bool `yaml:"require_ordered_window"`
}

// LoggingConfig contains diagnostic logging settings. Logs always go to stderr.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file,omitempty"`
}

// UploadConfig selects the default distribution target
type UploadConfig struct {
	Target string `yaml:"target" validate:"omitempty,oneof=drive minio"`
}

// GoogleConfig contains Google Drive settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	TokenFile       string `yaml:"token_file,omitempty"`
	FolderID        string `yaml:"folder_id,omitempty"`
}

// MinioConfig contains S3-compatible object storage settings
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint,omitempty" validate:"omitempty,hostname_port"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			PublicDirectory: "public",
		},
		Tools: ToolsConfig{
			YtDlpPath:   "yt-dlp",
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Audio: AudioConfig{
			Bitrate: "128k",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Upload: UploadConfig{
			Target: "drive",
		},
		Google: GoogleConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Keys missing from the file keep their Default() values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default() when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Masked returns a copy with secrets replaced, for display
func (c *Config) Masked() *Config {
	masked := *c
	if masked.Minio.SecretKey != "" {
		masked.Minio.SecretKey = "********"
	}
	if len(masked.Minio.AccessKey) > 4 {
		masked.Minio.AccessKey = masked.Minio.AccessKey[:4] + "..."
	}
	return &masked
}
