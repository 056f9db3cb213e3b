package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"yt-audio-clipper/domain/distribution"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	FindFileByName(ctx context.Context, folderID, name string) ([]*drive.File, error)
	UploadFile(ctx context.Context, file *drive.File, content io.Reader) (*drive.File, error)
	DeleteFile(ctx context.Context, fileID string) error
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// FindFileByName lists non-trashed files with the given name in a folder
func (s *GoogleDriveService) FindFileByName(ctx context.Context, folderID, name string) ([]*drive.File, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if folderID != "" {
		query = fmt.Sprintf("'%s' in parents and %s", folderID, query)
	}
	r, err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(id, name)")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return r.Files, nil
}

// UploadFile creates a file with the given metadata and content
func (s *GoogleDriveService) UploadFile(ctx context.Context, file *drive.File, content io.Reader) (*drive.File, error) {
	return s.service.Files.Create(file).
		Media(content).
		Fields(googleapi.Field("id, name, size, webViewLink")).
		Context(ctx).
		Do()
}

// DeleteFile permanently deletes a file
func (s *GoogleDriveService) DeleteFile(ctx context.Context, fileID string) error {
	return s.service.Files.Delete(fileID).Context(ctx).Do()
}

// CreatePermission grants a permission on a file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, permission).Context(ctx).Do()
	return err
}

// Client implements distribution.Uploader using Google Drive API
type Client struct {
	driveService DriveService
	folderID     string
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// WithFolderID sets the destination folder for uploads
func WithFolderID(folderID string) ClientOption {
	return func(c *Client) {
		c.folderID = folderID
	}
}

// NewClient creates a new Google Drive client authenticated with a service account
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, credentialsPath string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	// If no custom drive service was provided, create a real one
	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// Upload implements distribution.Uploader.
// A file with the same name in the destination folder is replaced, and the
// new file is shared with anyone holding the link.
func (c *Client) Upload(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	existing, err := c.driveService.FindFileByName(ctx, c.folderID, req.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing file: %w", err)
	}
	for _, f := range existing {
		if err := c.driveService.DeleteFile(ctx, f.Id); err != nil {
			return nil, fmt.Errorf("failed to replace existing file %s: %w", f.Id, err)
		}
	}

	content, err := os.Open(req.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer content.Close()

	meta := &drive.File{
		Name:     req.FileName,
		MimeType: req.MimeType,
	}
	if c.folderID != "" {
		meta.Parents = []string{c.folderID}
	}

	created, err := c.driveService.UploadFile(ctx, meta, content)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	err = c.driveService.CreatePermission(ctx, created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to share file: %w", err)
	}

	url := created.WebViewLink
	if url == "" {
		url = ShareableURL(created.Id)
	}

	return &distribution.UploadResult{
		Target:   "drive",
		ID:       created.Id,
		FileName: created.Name,
		URL:      url,
		Size:     created.Size,
	}, nil
}

// ShareableURL builds the viewer URL for a file ID
func ShareableURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view?usp=sharing", fileID)
}

// escapeQuery escapes single quotes and backslashes for Drive query strings
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// Ensure Client implements distribution.Uploader
var _ distribution.Uploader = (*Client)(nil)
