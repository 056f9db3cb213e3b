package clip

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"yt-audio-clipper/domain/clip"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// The intermediate clip lives in a subdirectory of the workspace so it can
// never overwrite the downloaded artifact, whatever the video is titled
const (
	trimmedDirName      = "trimmed"
	trimmedArtifactName = "clip" + clip.OutputExtension
)

// Options holds per-service settings that are not dependencies
type Options struct {
	RequireOrderedWindow bool
}

// Service runs a single clip job: probe, validate, download, locate, trim, export, report
type Service struct {
	fetcher    clip.Fetcher
	trimmer    clip.Trimmer
	workspaces clip.WorkspaceProvider
	locator    clip.ArtifactLocator
	exporter   clip.Exporter
	logger     *zap.Logger
	opts       Options
	newJobID   func() string
}

// NewService creates a new clip Service
func NewService(
	fetcher clip.Fetcher,
	trimmer clip.Trimmer,
	workspaces clip.WorkspaceProvider,
	locator clip.ArtifactLocator,
	exporter clip.Exporter,
	logger *zap.Logger,
	opts Options,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:    fetcher,
		trimmer:    trimmer,
		workspaces: workspaces,
		locator:    locator,
		exporter:   exporter,
		logger:     logger,
		opts:       opts,
		newJobID:   uuid.NewString,
	}
}

// Execute runs the job and writes exactly one result payload to output.
// The workspace is removed after the payload is written, on every path.
// The returned error is non-nil only if the payload itself could not be written.
func (s *Service) Execute(ctx context.Context, req *clip.Request, output io.Writer) error {
	jobID := s.newJobID()
	log := s.logger.With(zap.String("job_id", jobID))

	workspace, err := s.workspaces.Create(jobID)
	if err != nil {
		log.Error("failed to create workspace", zap.Error(err))
		return Report(output, nil, clip.Unspecified(fmt.Errorf("failed to create workspace: %w", err)))
	}
	defer s.release(log, workspace)

	started := time.Now()
	result, err := s.Run(ctx, req, workspace, log)
	if err != nil {
		log.Warn("job failed",
			zap.String("kind", clip.KindOf(err).String()),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(started)))
	} else {
		log.Info("job completed",
			zap.String("output", result.OutputPath),
			zap.Duration("elapsed", time.Since(started)))
	}

	return Report(output, result, err)
}

// Run executes the pipeline stages inside an existing workspace.
// Every failure is returned as a *clip.Error.
func (s *Service) Run(ctx context.Context, req *clip.Request, workspace string, log *zap.Logger) (*clip.Result, error) {
	if log == nil {
		log = s.logger
	}

	log.Info("probing source", zap.String("url", req.URL))
	meta, err := s.fetcher.Probe(ctx, req.URL)
	if err != nil {
		return nil, clip.NewFetchError(err)
	}
	if meta.Title == "" {
		meta.Title = clip.DefaultTitle
	}
	log.Debug("probed source", zap.String("title", meta.Title), zap.Float64("duration", meta.Duration))

	if err := req.Validate(meta, clip.ValidateOptions{RequireOrderedWindow: s.opts.RequireOrderedWindow}); err != nil {
		return nil, err
	}

	log.Info("downloading audio", zap.String("workspace", workspace))
	if err := s.fetcher.Download(ctx, req.URL, workspace); err != nil {
		return nil, clip.NewFetchError(err)
	}

	artifact, err := s.locator.Locate(workspace, clip.OutputExtension)
	if err != nil {
		return nil, clip.Unspecified(err)
	}
	log.Debug("located artifact", zap.String("path", artifact))

	window := req.Window()
	trimmedPath := filepath.Join(workspace, trimmedDirName, trimmedArtifactName)
	effective, err := s.trimmer.Trim(ctx, artifact, window, trimmedPath)
	if err != nil {
		return nil, clip.Unspecified(err)
	}
	if effective != window {
		log.Debug("trim window clamped to decoded length",
			zap.Int64("start_ms", effective.StartMS),
			zap.Int64("end_ms", effective.EndMS))
	}

	filename := clip.OutputFilename(meta.Title, req)
	outputPath, err := s.exporter.Export(trimmedPath, filename)
	if err != nil {
		return nil, clip.Unspecified(err)
	}

	return &clip.Result{
		OutputPath: outputPath,
		PublicPath: clip.PublicPath(filename),
		Title:      meta.Title,
		Duration:   window.Seconds(),
	}, nil
}

// release removes the workspace; failures are logged and otherwise ignored
func (s *Service) release(log *zap.Logger, workspace string) {
	if err := s.workspaces.Remove(workspace); err != nil {
		log.Debug("failed to remove workspace", zap.String("workspace", workspace), zap.Error(err))
	}
}
