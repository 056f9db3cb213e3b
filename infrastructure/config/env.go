package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment without overriding variables already set.
// A missing file is not an error.
func LoadEnvFile(paths ...string) {
	// godotenv reports missing files as errors; the file is optional
	_ = godotenv.Load(paths...)
}

// ApplyEnv overlays environment variables onto cfg
func ApplyEnv(cfg *Config) {
	cfg.Paths.PublicDirectory = getEnv("CLIPPER_PUBLIC_DIR", cfg.Paths.PublicDirectory)
	cfg.Paths.TempDirectory = getEnv("CLIPPER_TEMP_DIR", cfg.Paths.TempDirectory)
	cfg.Tools.YtDlpPath = getEnv("CLIPPER_YTDLP_PATH", cfg.Tools.YtDlpPath)
	cfg.Tools.FFmpegPath = getEnv("CLIPPER_FFMPEG_PATH", cfg.Tools.FFmpegPath)
	cfg.Tools.FFprobePath = getEnv("CLIPPER_FFPROBE_PATH", cfg.Tools.FFprobePath)
	cfg.Audio.Bitrate = getEnv("CLIPPER_AUDIO_BITRATE", cfg.Audio.Bitrate)
	cfg.Fetch.Timeout = getEnvDuration("CLIPPER_FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Validation.RequireOrderedWindow = getEnvBool("CLIPPER_REQUIRE_ORDERED_WINDOW", cfg.Validation.RequireOrderedWindow)
	cfg.Logging.Level = getEnv("CLIPPER_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.File = getEnv("CLIPPER_LOG_FILE", cfg.Logging.File)
	cfg.Upload.Target = getEnv("CLIPPER_UPLOAD_TARGET", cfg.Upload.Target)

	cfg.Google.CredentialsFile = getEnv("GOOGLE_CREDENTIALS_FILE", cfg.Google.CredentialsFile)
	cfg.Google.FolderID = getEnv("GOOGLE_DRIVE_FOLDER_ID", cfg.Google.FolderID)

	cfg.Minio.Endpoint = getEnv("MINIO_ENDPOINT", cfg.Minio.Endpoint)
	cfg.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.Minio.AccessKey)
	cfg.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.Minio.SecretKey)
	cfg.Minio.Bucket = getEnv("MINIO_BUCKET", cfg.Minio.Bucket)
	cfg.Minio.Region = getEnv("MINIO_REGION", cfg.Minio.Region)
	cfg.Minio.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.Minio.UseSSL)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
