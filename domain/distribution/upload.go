package distribution

import "context"

// Uploader publishes a local file to a remote store and returns a shareable link.
// This is a port that can be implemented by different infrastructure adapters
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	Exists(path string) bool
}

// UploadRequest contains the parameters needed to upload a file
type UploadRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target name in the remote store
	MimeType  string // MIME type of the file
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	Target   string // "drive" or "minio"
	ID       string // Drive file ID or object key
	FileName string // Name of the uploaded file
	URL      string // URL for sharing the file
	Size     int64  // Size of the uploaded file in bytes
}

// MimeTypeMP3 is the MIME type of exported clips
const MimeTypeMP3 = "audio/mpeg"
