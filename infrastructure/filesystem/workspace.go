package filesystem

import (
	"fmt"
	"os"

	"yt-audio-clipper/domain/clip"
)

// Workspaces creates per-job scratch directories under a base directory
type Workspaces struct {
	baseDir string
}

// NewWorkspaces creates a workspace provider; an empty baseDir uses os.TempDir()
func NewWorkspaces(baseDir string) *Workspaces {
	return &Workspaces{baseDir: baseDir}
}

// Create makes a new, exclusively owned directory for the job
func (w *Workspaces) Create(jobID string) (string, error) {
	dir, err := os.MkdirTemp(w.baseDir, "clip-"+jobID+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	return dir, nil
}

// Remove deletes the directory and everything in it
func (w *Workspaces) Remove(dir string) error {
	return os.RemoveAll(dir)
}

// Ensure Workspaces implements clip.WorkspaceProvider
var _ clip.WorkspaceProvider = (*Workspaces)(nil)
