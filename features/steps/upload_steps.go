//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"yt-audio-clipper/cmd"
	"yt-audio-clipper/infrastructure/drive"
	"yt-audio-clipper/infrastructure/filesystem"

	"github.com/cucumber/godog"
	googledrive "google.golang.org/api/drive/v3"
)

// uploadMockDriveService simulates a Drive folder in memory
type uploadMockDriveService struct {
	files       map[string]string // id -> name
	deleted     []string
	permissions map[string][]*googledrive.Permission
}

func (m *uploadMockDriveService) FindFileByName(ctx context.Context, folderID, name string) ([]*googledrive.File, error) {
	var result []*googledrive.File
	for id, n := range m.files {
		if n == name {
			result = append(result, &googledrive.File{Id: id, Name: n})
		}
	}
	return result, nil
}

func (m *uploadMockDriveService) UploadFile(ctx context.Context, file *googledrive.File, content io.Reader) (*googledrive.File, error) {
	body, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	m.files["uploaded-file-id"] = file.Name
	return &googledrive.File{Id: "uploaded-file-id", Name: file.Name, Size: int64(len(body))}, nil
}

func (m *uploadMockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	delete(m.files, fileID)
	m.deleted = append(m.deleted, fileID)
	return nil
}

func (m *uploadMockDriveService) CreatePermission(ctx context.Context, fileID string, permission *googledrive.Permission) error {
	m.permissions[fileID] = append(m.permissions[fileID], permission)
	return nil
}

// uploadContext holds test state for upload scenarios
type uploadContext struct {
	dir      string
	clipPath string
	folderID string
	service  *uploadMockDriveService
	output   *bytes.Buffer
	err      error
}

// SharedUploadContext is reset before each scenario via Before hook
var SharedUploadContext *uploadContext

func getUploadContext() *uploadContext {
	return SharedUploadContext
}

func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "clip-upload-")
		if err != nil {
			return c, err
		}
		SharedUploadContext = &uploadContext{
			dir: dir,
			service: &uploadMockDriveService{
				files:       make(map[string]string),
				permissions: make(map[string][]*googledrive.Permission),
			},
			output: &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if t := SharedUploadContext; t != nil {
			os.RemoveAll(t.dir)
		}
		SharedUploadContext = nil
		return c, nil
	})

	ctx.Step(`^an exported clip "([^"]*)"$`, anExportedClip)
	ctx.Step(`^no exported clip exists$`, noExportedClipExists)
	ctx.Step(`^the Drive folder "([^"]*)" already contains "([^"]*)"$`, theDriveFolderAlreadyContains)
	ctx.Step(`^I upload the clip to Google Drive$`, iUploadTheClipToGoogleDrive)
	ctx.Step(`^the existing Drive file should have been replaced$`, theExistingDriveFileShouldHaveBeenReplaced)
	ctx.Step(`^the uploaded Drive file should be shared with anyone holding the link$`, theUploadedDriveFileShouldBeShared)
	ctx.Step(`^the upload result URL should be "([^"]*)"$`, theUploadResultURLShouldBe)
	ctx.Step(`^the upload result message should contain "([^"]*)"$`, theUploadResultMessageShouldContain)
}

func anExportedClip(name string) error {
	t := getUploadContext()
	t.clipPath = filepath.Join(t.dir, name)
	return os.WriteFile(t.clipPath, []byte("mp3 data"), 0644)
}

func noExportedClipExists() error {
	t := getUploadContext()
	t.clipPath = filepath.Join(t.dir, "missing.mp3")
	return nil
}

func theDriveFolderAlreadyContains(folderID, name string) error {
	t := getUploadContext()
	t.folderID = folderID
	t.service.files["existing-file-id"] = name
	return nil
}

func iUploadTheClipToGoogleDrive() error {
	t := getUploadContext()
	client, err := drive.NewClient(context.Background(), "",
		drive.WithDriveService(t.service),
		drive.WithFolderID(t.folderID),
	)
	if err != nil {
		return err
	}
	t.err = cmd.RunUploadWithDependencies(context.Background(), client, filesystem.NewChecker(), t.clipPath, t.output)
	return nil
}

func theExistingDriveFileShouldHaveBeenReplaced() error {
	t := getUploadContext()
	if len(t.service.deleted) != 1 || t.service.deleted[0] != "existing-file-id" {
		return fmt.Errorf("expected existing-file-id to be deleted, got %v", t.service.deleted)
	}
	return nil
}

func theUploadedDriveFileShouldBeShared() error {
	t := getUploadContext()
	perms := t.service.permissions["uploaded-file-id"]
	if len(perms) != 1 || perms[0].Type != "anyone" || perms[0].Role != "reader" {
		return fmt.Errorf("expected an anyone/reader permission, got %+v", perms)
	}
	return nil
}

func theUploadResultURLShouldBe(expected string) error {
	t := getUploadContext()
	if t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	var payload struct {
		Success bool   `json:"success"`
		URL     string `json:"url"`
	}
	if err := json.Unmarshal(t.output.Bytes(), &payload); err != nil {
		return fmt.Errorf("output is not valid JSON: %q", t.output.String())
	}
	if !payload.Success || payload.URL != expected {
		return fmt.Errorf("expected URL %q, got %q", expected, t.output.String())
	}
	return nil
}

func theUploadResultMessageShouldContain(expected string) error {
	t := getUploadContext()
	if t.err == nil {
		return fmt.Errorf("expected the upload to fail")
	}
	if !strings.Contains(t.output.String(), expected) {
		return fmt.Errorf("expected output containing %q, got %q", expected, t.output.String())
	}
	return nil
}
