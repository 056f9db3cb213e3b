//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appclip "yt-audio-clipper/application/clip"
	"yt-audio-clipper/cmd"
	"yt-audio-clipper/domain/clip"
	"yt-audio-clipper/infrastructure/filesystem"

	"github.com/cucumber/godog"
)

// mockFetcher simulates yt-dlp: fixed metadata and a configurable set of downloaded files
type mockFetcher struct {
	meta        clip.Metadata
	probeErr    error
	downloadErr error
	audioFiles  int
	downloads   int
}

func (m *mockFetcher) Probe(ctx context.Context, url string) (clip.Metadata, error) {
	return m.meta, m.probeErr
}

func (m *mockFetcher) Download(ctx context.Context, url, dir string) error {
	m.downloads++
	if m.downloadErr != nil {
		return m.downloadErr
	}
	// yt-dlp leaves thumbnails and similar side files next to the audio
	if err := os.WriteFile(filepath.Join(dir, "cover.webp"), []byte("img"), 0644); err != nil {
		return err
	}
	for i := 0; i < m.audioFiles; i++ {
		name := fmt.Sprintf("track-%d.mp3", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0644); err != nil {
			return err
		}
	}
	return nil
}

// mockTrimmer records the requested window and clamps it to a simulated decoded length
type mockTrimmer struct {
	decodedMS int64
	requested clip.Window
	effective clip.Window
	calls     int
}

func (m *mockTrimmer) Trim(ctx context.Context, sourcePath string, window clip.Window, outputPath string) (clip.Window, error) {
	m.calls++
	m.requested = window
	m.effective = window.Clamp(m.decodedMS)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return clip.Window{}, err
	}
	content := []byte("clip")
	if m.effective.Empty() {
		content = nil
	}
	return m.effective, os.WriteFile(outputPath, content, 0644)
}

// countingWorkspaces wraps the real workspace provider to observe creation
type countingWorkspaces struct {
	*filesystem.Workspaces
	created int
}

func (w *countingWorkspaces) Create(jobID string) (string, error) {
	w.created++
	return w.Workspaces.Create(jobID)
}

// clipContext holds test state for clip scenarios
type clipContext struct {
	publicDir  string
	scratchDir string
	fetcher    *mockFetcher
	trimmer    *mockTrimmer
	workspaces *countingWorkspaces
	options    appclip.Options
	output     *bytes.Buffer
	err        error
}

// SharedClipContext is reset before each scenario via Before hook
var SharedClipContext *clipContext

func getClipContext() *clipContext {
	return SharedClipContext
}

func InitializeClipScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedClipContext = &clipContext{
			fetcher: &mockFetcher{audioFiles: 1},
			trimmer: &mockTrimmer{decodedMS: 1 << 40},
			output:  &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if t := SharedClipContext; t != nil {
			os.RemoveAll(t.publicDir)
			os.RemoveAll(t.scratchDir)
		}
		SharedClipContext = nil
		return c, nil
	})

	ctx.Step(`^a clean public directory and scratch directory$`, aCleanPublicDirectoryAndScratchDirectory)
	ctx.Step(`^a video titled "([^"]*)" lasting (\d+(?:\.\d+)?) seconds$`, aVideoTitledLastingSeconds)
	ctx.Step(`^a video without a title lasting (\d+(?:\.\d+)?) seconds$`, aVideoWithoutATitleLastingSeconds)
	ctx.Step(`^the downloaded audio decodes to (\d+) seconds$`, theDownloadedAudioDecodesToSeconds)
	ctx.Step(`^probing fails with "([^"]*)"$`, probingFailsWith)
	ctx.Step(`^the download fails with "([^"]*)"$`, theDownloadFailsWith)
	ctx.Step(`^the download produces (\d+) audio files$`, theDownloadProducesAudioFiles)
	ctx.Step(`^ordered windows are required$`, orderedWindowsAreRequired)
	ctx.Step(`^I clip "([^"]*)" from "([^"]*)" to "([^"]*)"$`, iClipFromTo)
	ctx.Step(`^I run the clipper with arguments "([^"]*)"$`, iRunTheClipperWithArguments)
	ctx.Step(`^the output should be exactly one JSON line$`, theOutputShouldBeExactlyOneJSONLine)
	ctx.Step(`^the result should be:$`, theResultShouldBe)
	ctx.Step(`^the result message should be "(.*)"$`, theResultMessageShouldBe)
	ctx.Step(`^the result message should contain "(.*)"$`, theResultMessageShouldContain)
	ctx.Step(`^the public file "([^"]*)" should exist$`, thePublicFileShouldExist)
	ctx.Step(`^the trimmer should have received the window (\d+) to (\d+) milliseconds$`, theTrimmerShouldHaveReceivedTheWindow)
	ctx.Step(`^the trimmer should have clamped the window to (\d+) to (\d+) milliseconds$`, theTrimmerShouldHaveClampedTheWindow)
	ctx.Step(`^the scratch directory should be empty$`, theScratchDirectoryShouldBeEmpty)
	ctx.Step(`^no download should have been attempted$`, noDownloadShouldHaveBeenAttempted)
	ctx.Step(`^the command should signal a non-zero exit$`, theCommandShouldSignalANonZeroExit)
	ctx.Step(`^no workspace should have been created$`, noWorkspaceShouldHaveBeenCreated)
}

func aCleanPublicDirectoryAndScratchDirectory() error {
	t := getClipContext()
	var err error
	if t.publicDir, err = os.MkdirTemp("", "clip-public-"); err != nil {
		return err
	}
	if t.scratchDir, err = os.MkdirTemp("", "clip-scratch-"); err != nil {
		return err
	}
	t.workspaces = &countingWorkspaces{Workspaces: filesystem.NewWorkspaces(t.scratchDir)}
	return nil
}

func aVideoTitledLastingSeconds(title string, duration float64) error {
	t := getClipContext()
	t.fetcher.meta = clip.Metadata{Title: title, Duration: duration}
	return nil
}

func aVideoWithoutATitleLastingSeconds(duration float64) error {
	t := getClipContext()
	t.fetcher.meta = clip.Metadata{Duration: duration}
	return nil
}

func theDownloadedAudioDecodesToSeconds(seconds int) error {
	t := getClipContext()
	t.trimmer.decodedMS = int64(seconds) * 1000
	return nil
}

func probingFailsWith(msg string) error {
	t := getClipContext()
	t.fetcher.probeErr = errors.New(msg)
	return nil
}

func theDownloadFailsWith(msg string) error {
	t := getClipContext()
	t.fetcher.downloadErr = errors.New(msg)
	return nil
}

func theDownloadProducesAudioFiles(n int) error {
	t := getClipContext()
	t.fetcher.audioFiles = n
	return nil
}

func orderedWindowsAreRequired() error {
	t := getClipContext()
	t.options.RequireOrderedWindow = true
	return nil
}

func runClipper(args []string) {
	t := getClipContext()
	deps := cmd.ClipDependencies{
		Fetcher:    t.fetcher,
		Trimmer:    t.trimmer,
		Workspaces: t.workspaces,
		Locator:    filesystem.NewLocator(),
		Exporter:   filesystem.NewExporter(t.publicDir),
		Options:    t.options,
	}
	t.err = cmd.RunClipWithDependencies(context.Background(), deps, args, t.output)
}

func iClipFromTo(url, start, end string) error {
	runClipper([]string{url, start, end})
	if t := getClipContext(); t.err != nil {
		return fmt.Errorf("unexpected error: %v", t.err)
	}
	return nil
}

func iRunTheClipperWithArguments(args string) error {
	runClipper(strings.Fields(args))
	return nil
}

func theOutputShouldBeExactlyOneJSONLine() error {
	t := getClipContext()
	out := t.output.String()
	if strings.Count(out, "\n") != 1 || !strings.HasSuffix(out, "\n") {
		return fmt.Errorf("expected exactly one line, got %q", out)
	}
	if !json.Valid([]byte(out)) {
		return fmt.Errorf("output is not valid JSON: %q", out)
	}
	return nil
}

func theResultShouldBe(expected *godog.DocString) error {
	t := getClipContext()
	got := strings.TrimSuffix(t.output.String(), "\n")
	want := strings.TrimSpace(expected.Content)
	if got != want {
		return fmt.Errorf("expected result:\n%s\ngot:\n%s", want, got)
	}
	return nil
}

func resultMessage() (string, error) {
	t := getClipContext()
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(t.output.Bytes(), &payload); err != nil {
		return "", fmt.Errorf("output is not valid JSON: %q", t.output.String())
	}
	return payload.Message, nil
}

func theResultMessageShouldBe(expected string) error {
	msg, err := resultMessage()
	if err != nil {
		return err
	}
	if msg != expected {
		return fmt.Errorf("expected message %q, got %q", expected, msg)
	}
	return nil
}

func theResultMessageShouldContain(expected string) error {
	msg, err := resultMessage()
	if err != nil {
		return err
	}
	if !strings.Contains(msg, expected) {
		return fmt.Errorf("expected message containing %q, got %q", expected, msg)
	}
	return nil
}

func thePublicFileShouldExist(rel string) error {
	t := getClipContext()
	info, err := os.Stat(filepath.Join(t.publicDir, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("expected %s to exist: %v", rel, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("expected %s to be a regular file", rel)
	}
	return nil
}

func theTrimmerShouldHaveReceivedTheWindow(start, end int64) error {
	t := getClipContext()
	want := clip.Window{StartMS: start, EndMS: end}
	if t.trimmer.requested != want {
		return fmt.Errorf("expected window %+v, got %+v", want, t.trimmer.requested)
	}
	return nil
}

func theTrimmerShouldHaveClampedTheWindow(start, end int64) error {
	t := getClipContext()
	want := clip.Window{StartMS: start, EndMS: end}
	if t.trimmer.effective != want {
		return fmt.Errorf("expected clamped window %+v, got %+v", want, t.trimmer.effective)
	}
	return nil
}

func theScratchDirectoryShouldBeEmpty() error {
	t := getClipContext()
	entries, err := os.ReadDir(t.scratchDir)
	if err != nil {
		return err
	}
	if len(entries) != 0 {
		return fmt.Errorf("expected the workspace to be removed, found %d entries", len(entries))
	}
	return nil
}

func noDownloadShouldHaveBeenAttempted() error {
	t := getClipContext()
	if t.fetcher.downloads != 0 {
		return fmt.Errorf("expected no download, got %d", t.fetcher.downloads)
	}
	return nil
}

func theCommandShouldSignalANonZeroExit() error {
	t := getClipContext()
	if t.err == nil {
		return fmt.Errorf("expected an error signalling a non-zero exit")
	}
	return nil
}

func noWorkspaceShouldHaveBeenCreated() error {
	t := getClipContext()
	if t.workspaces.created != 0 {
		return fmt.Errorf("expected no workspace, got %d", t.workspaces.created)
	}
	return nil
}
