package clip

import "context"

// Fetcher resolves a source URL into metadata and a downloaded audio file.
// Implementations write exactly one OutputExtension file into the target directory.
type Fetcher interface {
	// Probe returns the source metadata without downloading
	Probe(ctx context.Context, url string) (Metadata, error)

	// Download fetches the best available audio stream into dir
	Download(ctx context.Context, url, dir string) error
}

// Trimmer slices an audio file to a millisecond window.
// Bounds past the decoded length are clamped; the effective window is returned.
type Trimmer interface {
	Trim(ctx context.Context, sourcePath string, window Window, outputPath string) (Window, error)
}

// WorkspaceProvider creates and releases the per-job scratch directory
type WorkspaceProvider interface {
	Create(jobID string) (string, error)
	Remove(dir string) error
}

// ArtifactLocator finds the single fetched file in a workspace
type ArtifactLocator interface {
	Locate(dir, ext string) (string, error)
}

// Exporter moves a finished clip into the public output directory and returns its final path
type Exporter interface {
	Export(sourcePath, filename string) (string, error)
}
