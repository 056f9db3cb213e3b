package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt-audio-clipper/domain/clip"
)

// Locator finds the fetched artifact in a workspace
type Locator struct{}

// NewLocator creates a new artifact locator
func NewLocator() *Locator {
	return &Locator{}
}

// Locate returns the only regular file in dir whose name ends in ext.
// Zero matches and more than one match are both errors.
func (l *Locator) Locate(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read workspace: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		matches = append(matches, filepath.Join(dir, entry.Name()))
	}

	switch len(matches) {
	case 0:
		return "", &clip.Error{Kind: clip.KindArtifactNotFound, Message: "Failed to find downloaded audio file"}
	case 1:
		return matches[0], nil
	default:
		return "", &clip.Error{
			Kind:    clip.KindAmbiguousArtifact,
			Message: fmt.Sprintf("Found %d downloaded audio files, expected exactly one", len(matches)),
		}
	}
}

// Ensure Locator implements clip.ArtifactLocator
var _ clip.ArtifactLocator = (*Locator)(nil)
