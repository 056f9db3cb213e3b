package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:        "missing public directory",
			modify:      func(c *Config) { c.Paths.PublicDirectory = "" },
			wantErr:     true,
			errContains: "paths.public_directory is required",
		},
		{
			name:        "missing ffmpeg",
			modify:      func(c *Config) { c.Tools.FFmpegPath = "" },
			wantErr:     true,
			errContains: "tools.ffmpeg_path is required",
		},
		{
			name:        "bad bitrate",
			modify:      func(c *Config) { c.Audio.Bitrate = "fast" },
			wantErr:     true,
			errContains: `audio.bitrate "fast" must look like 128k`,
		},
		{
			name:        "bad log level",
			modify:      func(c *Config) { c.Logging.Level = "verbose" },
			wantErr:     true,
			errContains: "logging.level must be one of [debug info warn error]",
		},
		{
			name:        "bad upload target",
			modify:      func(c *Config) { c.Upload.Target = "dropbox" },
			wantErr:     true,
			errContains: "upload.target must be one of",
		},
		{
			name:        "minio endpoint without port",
			modify:      func(c *Config) { c.Minio.Endpoint = "localhost" },
			wantErr:     true,
			errContains: "minio.endpoint",
		},
		{
			name:   "minio endpoint with port",
			modify: func(c *Config) { c.Minio.Endpoint = "localhost:9000" },
		},
		{
			name: "multiple errors are joined",
			modify: func(c *Config) {
				c.Paths.PublicDirectory = ""
				c.Tools.YtDlpPath = ""
			},
			wantErr:     true,
			errContains: "paths.public_directory is required; tools.ytdlp_path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
