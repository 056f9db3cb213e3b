package distribution

import (
	"context"
	"fmt"
	"path/filepath"

	"yt-audio-clipper/domain/distribution"
)

// UploadService handles publishing exported clips
type UploadService struct {
	uploader    distribution.Uploader
	fileChecker distribution.FileChecker
}

// NewUploadService creates a new upload service
func NewUploadService(uploader distribution.Uploader, fileChecker distribution.FileChecker) *UploadService {
	return &UploadService{
		uploader:    uploader,
		fileChecker: fileChecker,
	}
}

// UploadClip uploads an exported mp3 clip and returns its shareable location
func (s *UploadService) UploadClip(ctx context.Context, clipPath string) (*distribution.UploadResult, error) {
	if !s.fileChecker.Exists(clipPath) {
		return nil, fmt.Errorf("file does not exist: %s", clipPath)
	}

	fileName := filepath.Base(clipPath)
	result, err := s.uploader.Upload(ctx, distribution.UploadRequest{
		LocalPath: clipPath,
		FileName:  fileName,
		MimeType:  distribution.MimeTypeMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	return result, nil
}
