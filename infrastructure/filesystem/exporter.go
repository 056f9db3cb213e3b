package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"yt-audio-clipper/domain/clip"
)

// Exporter places finished clips under <publicDir>/temp_audio
type Exporter struct {
	publicDir string
}

// NewExporter creates an exporter rooted at publicDir
func NewExporter(publicDir string) *Exporter {
	return &Exporter{publicDir: publicDir}
}

// OutputDir returns the directory exported clips are written to
func (e *Exporter) OutputDir() string {
	return filepath.Join(e.publicDir, clip.OutputSubdirectory)
}

// Export moves sourcePath to OutputDir()/filename, overwriting any existing file
func (e *Exporter) Export(sourcePath, filename string) (string, error) {
	dir := e.OutputDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	dest := filepath.Join(dir, filename)
	if err := move(sourcePath, dest); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", filename, err)
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return dest, nil
	}
	return abs, nil
}

// move renames src to dest, copying when they are on different filesystems
func move(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Ensure Exporter implements clip.Exporter
var _ clip.Exporter = (*Exporter)(nil)
