package cmd

import (
	"context"
	"fmt"

	appclip "yt-audio-clipper/application/clip"
	appdist "yt-audio-clipper/application/distribution"
	"yt-audio-clipper/domain/distribution"
	"yt-audio-clipper/infrastructure/config"
	"yt-audio-clipper/infrastructure/drive"
	"yt-audio-clipper/infrastructure/filesystem"
	"yt-audio-clipper/infrastructure/objectstore"

	"github.com/spf13/cobra"
)

var (
	uploadFilePath string
	uploadTarget   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Share an exported clip via Google Drive or MinIO",
	Long: `Upload an exported mp3 clip and print a shareable link as one JSON line.

The target defaults to upload.target from the configuration. Google Drive
uploads replace a file of the same name in the configured folder and are
shared with "anyone with the link". MinIO uploads return a presigned URL
valid for seven days.

Example:
  yt-audio-clipper upload --file "public/temp_audio/My Song_10.0_20.5.mp3"
  yt-audio-clipper upload --file clip.mp3 --target minio`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadFilePath, "file", "", "Path to the exported clip (required)")
	uploadCmd.Flags().StringVar(&uploadTarget, "target", "", "Upload target: drive or minio (defaults to upload.target)")
	uploadCmd.MarkFlagRequired("file")
}

// uploadPayload is the success payload of the upload command
type uploadPayload struct {
	Success  bool   `json:"success"`
	Target   string `json:"target"`
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return reportFailure(DefaultOutput, err)
	}

	target := uploadTarget
	if target == "" {
		target = cfg.Upload.Target
	}

	ctx := cmd.Context()
	uploader, err := newUploader(ctx, cfg, target)
	if err != nil {
		return reportFailure(DefaultOutput, err)
	}

	return RunUploadWithDependencies(ctx, uploader, filesystem.NewChecker(), uploadFilePath, DefaultOutput)
}

// newUploader builds the uploader for target from cfg
func newUploader(ctx context.Context, cfg *config.Config, target string) (distribution.Uploader, error) {
	switch target {
	case "drive":
		folder := drive.WithFolderID(cfg.Google.FolderID)
		if cfg.Google.TokenFile == "" {
			client, err := drive.NewClient(ctx, cfg.Google.CredentialsFile, folder)
			if err != nil {
				return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
			}
			return client, nil
		}
		client, err := drive.NewClientWithOAuth(ctx, drive.OAuthConfig{
			CredentialsFile: cfg.Google.CredentialsFile,
			TokenFile:       cfg.Google.TokenFile,
			Prompt:          DefaultErrOutput,
		}, folder)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Drive client: %w", err)
		}
		return client, nil

	case "minio":
		store, err := objectstore.New(objectstore.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			Region:    cfg.Minio.Region,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create MinIO client: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown upload target %q. Use drive or minio", target)
	}
}

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing)
func RunUploadWithDependencies(
	ctx context.Context,
	uploader distribution.Uploader,
	fileChecker distribution.FileChecker,
	filePath string,
	output OutputWriter,
) error {
	service := appdist.NewUploadService(uploader, fileChecker)

	result, err := service.UploadClip(ctx, filePath)
	if err != nil {
		return reportFailure(output, err)
	}

	return appclip.WriteJSON(output, uploadPayload{
		Success:  true,
		Target:   result.Target,
		ID:       result.ID,
		FileName: result.FileName,
		URL:      result.URL,
		Size:     result.Size,
	})
}
