package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"yt-audio-clipper/domain/clip"
)

// --- Mock implementations for testing ---

// recorder collects stage calls in order across all mocks
type recorder struct {
	calls []string
}

func (r *recorder) record(call string) {
	r.calls = append(r.calls, call)
}

type mockFetcher struct {
	rec         *recorder
	meta        clip.Metadata
	probeErr    error
	downloadErr error
}

func (m *mockFetcher) Probe(ctx context.Context, url string) (clip.Metadata, error) {
	m.rec.record("probe")
	if m.probeErr != nil {
		return clip.Metadata{}, m.probeErr
	}
	return m.meta, nil
}

func (m *mockFetcher) Download(ctx context.Context, url, dir string) error {
	m.rec.record("download")
	return m.downloadErr
}

type mockTrimmer struct {
	rec        *recorder
	window     clip.Window
	sourcePath string
	outputPath string
	clampTo    int64
	failError  error
}

func (m *mockTrimmer) Trim(ctx context.Context, sourcePath string, window clip.Window, outputPath string) (clip.Window, error) {
	m.rec.record("trim")
	m.window = window
	m.sourcePath = sourcePath
	m.outputPath = outputPath
	if m.failError != nil {
		return clip.Window{}, m.failError
	}
	if m.clampTo > 0 {
		return window.Clamp(m.clampTo), nil
	}
	return window, nil
}

type mockWorkspaces struct {
	rec       *recorder
	dir       string
	createErr error
	removeErr error
	removed   []string
}

func (m *mockWorkspaces) Create(jobID string) (string, error) {
	m.rec.record("create")
	if m.createErr != nil {
		return "", m.createErr
	}
	return m.dir, nil
}

func (m *mockWorkspaces) Remove(dir string) error {
	m.rec.record("remove")
	m.removed = append(m.removed, dir)
	return m.removeErr
}

type mockLocator struct {
	rec  *recorder
	path string
	err  error
}

func (m *mockLocator) Locate(dir, ext string) (string, error) {
	m.rec.record("locate")
	if m.err != nil {
		return "", m.err
	}
	return m.path, nil
}

type mockExporter struct {
	rec       *recorder
	publicDir string
	source    string
	filename  string
	failError error
}

func (m *mockExporter) Export(sourcePath, filename string) (string, error) {
	m.rec.record("export")
	m.source = sourcePath
	m.filename = filename
	if m.failError != nil {
		return "", m.failError
	}
	return filepath.Join(m.publicDir, clip.OutputSubdirectory, filename), nil
}

// reportingWriter records a "report" call so ordering against cleanup can be checked
type reportingWriter struct {
	rec *recorder
	buf bytes.Buffer
}

func (w *reportingWriter) Write(p []byte) (int, error) {
	w.rec.record("report")
	return w.buf.Write(p)
}

// --- Helper functions ---

type fixture struct {
	rec        *recorder
	fetcher    *mockFetcher
	trimmer    *mockTrimmer
	workspaces *mockWorkspaces
	locator    *mockLocator
	exporter   *mockExporter
	output     *reportingWriter
}

func newFixture() *fixture {
	rec := &recorder{}
	return &fixture{
		rec:        rec,
		fetcher:    &mockFetcher{rec: rec, meta: clip.Metadata{Title: "My Song", Duration: 212}},
		trimmer:    &mockTrimmer{rec: rec},
		workspaces: &mockWorkspaces{rec: rec, dir: "/tmp/clip-job"},
		locator:    &mockLocator{rec: rec, path: "/tmp/clip-job/My Song.mp3"},
		exporter:   &mockExporter{rec: rec, publicDir: "/srv/public"},
		output:     &reportingWriter{rec: rec},
	}
}

func (f *fixture) service(opts Options) *Service {
	return NewService(f.fetcher, f.trimmer, f.workspaces, f.locator, f.exporter, nil, opts)
}

func (f *fixture) execute(t *testing.T, req *clip.Request, opts Options) map[string]any {
	t.Helper()
	if err := f.service(opts).Execute(context.Background(), req, f.output); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	out := f.output.buf.String()
	if n := strings.Count(out, "\n"); n != 1 {
		t.Fatalf("expected exactly one JSON line, got %d: %q", n, out)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	return payload
}

// --- Tests ---

func TestService_Execute_Success(t *testing.T) {
	f := newFixture()
	req := &clip.Request{URL: "https://example.com/v", Start: 10.5, End: 20.5}

	payload := f.execute(t, req, Options{})

	want := map[string]any{
		"success":     true,
		"message":     "Audio extracted successfully",
		"output_file": "/temp_audio/My Song_10.5_20.5.mp3",
		"title":       "My Song",
		"duration":    10.0,
	}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("payload = %v, want %v", payload, want)
	}

	wantCalls := []string{"create", "probe", "download", "locate", "trim", "export", "report", "remove"}
	if !reflect.DeepEqual(f.rec.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", f.rec.calls, wantCalls)
	}

	if f.trimmer.window != (clip.Window{StartMS: 10500, EndMS: 20500}) {
		t.Errorf("trim window = %+v, want 10500-20500", f.trimmer.window)
	}
	if len(f.workspaces.removed) != 1 || f.workspaces.removed[0] != "/tmp/clip-job" {
		t.Errorf("removed workspaces = %v, want [/tmp/clip-job]", f.workspaces.removed)
	}
}

func TestService_Execute_ReportsRequestedDurationWhenClamped(t *testing.T) {
	f := newFixture()
	f.trimmer.clampTo = 15000
	req := &clip.Request{URL: "https://example.com/v", Start: 10, End: 20}

	payload := f.execute(t, req, Options{})

	if payload["duration"] != 10.0 {
		t.Errorf("duration = %v, want 10 (requested, not decoded)", payload["duration"])
	}
}

func TestService_Execute_EmptyClampedWindowSucceeds(t *testing.T) {
	tests := []struct {
		name         string
		start, end   float64
		wantDuration float64
	}{
		{name: "window past decoded length", start: 20, end: 25, wantDuration: 5.0},
		{name: "zero length window", start: 10, end: 10, wantDuration: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.fetcher.meta.Duration = 30
			f.trimmer.clampTo = 15000
			req := &clip.Request{URL: "https://example.com/v", Start: tt.start, End: tt.end}

			payload := f.execute(t, req, Options{})

			if payload["success"] != true {
				t.Fatalf("payload = %v, want success", payload)
			}
			if payload["duration"] != tt.wantDuration {
				t.Errorf("duration = %v, want %v", payload["duration"], tt.wantDuration)
			}
			if f.exporter.source != f.trimmer.outputPath {
				t.Errorf("exported %q, want trimmed output %q", f.exporter.source, f.trimmer.outputPath)
			}
		})
	}
}

func TestService_Execute_TrimOutputDoesNotOverwriteDownload(t *testing.T) {
	f := newFixture()
	f.fetcher.meta.Title = "clip"
	f.locator.path = "/tmp/clip-job/clip.mp3"
	req := &clip.Request{URL: "https://example.com/v", Start: 1, End: 2}

	f.execute(t, req, Options{})

	if f.trimmer.sourcePath != "/tmp/clip-job/clip.mp3" {
		t.Errorf("trim source = %q, want located artifact", f.trimmer.sourcePath)
	}
	if f.trimmer.outputPath == f.trimmer.sourcePath {
		t.Fatalf("trim output %q overwrites its source", f.trimmer.outputPath)
	}
	if f.trimmer.outputPath != "/tmp/clip-job/trimmed/clip.mp3" {
		t.Errorf("trim output = %q, want /tmp/clip-job/trimmed/clip.mp3", f.trimmer.outputPath)
	}
	if f.exporter.filename != "clip_1.0_2.0.mp3" {
		t.Errorf("filename = %q, want clip_1.0_2.0.mp3", f.exporter.filename)
	}
}

func TestService_Execute_DefaultTitle(t *testing.T) {
	f := newFixture()
	f.fetcher.meta.Title = ""
	req := &clip.Request{URL: "https://example.com/v", Start: 1, End: 2}

	payload := f.execute(t, req, Options{})

	if payload["title"] != clip.DefaultTitle {
		t.Errorf("title = %v, want %q", payload["title"], clip.DefaultTitle)
	}
	if f.exporter.filename != "unknown_title_1.0_2.0.mp3" {
		t.Errorf("filename = %q, want %q", f.exporter.filename, "unknown_title_1.0_2.0.mp3")
	}
}

func TestService_Execute_Failures(t *testing.T) {
	tests := []struct {
		name        string
		req         clip.Request
		opts        Options
		setup       func(f *fixture)
		wantMessage string
		wantCalls   []string
	}{
		{
			name:        "start past duration",
			req:         clip.Request{Start: 300, End: 310},
			wantMessage: "Time range exceeds video duration of 212 seconds",
			wantCalls:   []string{"create", "probe", "report", "remove"},
		},
		{
			name:        "end past duration",
			req:         clip.Request{Start: 10, End: 213},
			wantMessage: "Time range exceeds video duration of 212 seconds",
			wantCalls:   []string{"create", "probe", "report", "remove"},
		},
		{
			name:        "reversed window with ordered window required",
			req:         clip.Request{Start: 20, End: 10},
			opts:        Options{RequireOrderedWindow: true},
			wantMessage: "end time 10.0 must be after start time 20.0",
			wantCalls:   []string{"create", "probe", "report", "remove"},
		},
		{
			name: "probe failure",
			req:  clip.Request{Start: 1, End: 2},
			setup: func(f *fixture) {
				f.fetcher.probeErr = errors.New("ERROR: [youtube] abc: Video unavailable")
			},
			wantMessage: "Failed to download video: ERROR: [youtube] abc: Video unavailable",
			wantCalls:   []string{"create", "probe", "report", "remove"},
		},
		{
			name: "download failure",
			req:  clip.Request{Start: 1, End: 2},
			setup: func(f *fixture) {
				f.fetcher.downloadErr = errors.New("HTTP Error 403: Forbidden")
			},
			wantMessage: "Failed to download video: HTTP Error 403: Forbidden",
			wantCalls:   []string{"create", "probe", "download", "report", "remove"},
		},
		{
			name: "artifact missing",
			req:  clip.Request{Start: 1, End: 2},
			setup: func(f *fixture) {
				f.locator.err = &clip.Error{Kind: clip.KindArtifactNotFound, Message: "Failed to find downloaded audio file"}
			},
			wantMessage: "Failed to find downloaded audio file",
			wantCalls:   []string{"create", "probe", "download", "locate", "report", "remove"},
		},
		{
			name: "trim failure",
			req:  clip.Request{Start: 1, End: 2},
			setup: func(f *fixture) {
				f.trimmer.failError = errors.New("ffmpeg trim failed: exit status 1")
			},
			wantMessage: "ffmpeg trim failed: exit status 1",
			wantCalls:   []string{"create", "probe", "download", "locate", "trim", "report", "remove"},
		},
		{
			name: "export failure",
			req:  clip.Request{Start: 1, End: 2},
			setup: func(f *fixture) {
				f.exporter.failError = errors.New("permission denied")
			},
			wantMessage: "permission denied",
			wantCalls:   []string{"create", "probe", "download", "locate", "trim", "export", "report", "remove"},
		},
		{
			name: "cleanup failure is not reported",
			req:  clip.Request{Start: 300, End: 310},
			setup: func(f *fixture) {
				f.workspaces.removeErr = errors.New("device busy")
			},
			wantMessage: "Time range exceeds video duration of 212 seconds",
			wantCalls:   []string{"create", "probe", "report", "remove"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			req := tt.req
			req.URL = "https://example.com/v"

			payload := f.execute(t, &req, tt.opts)

			want := map[string]any{"success": false, "message": tt.wantMessage}
			if !reflect.DeepEqual(payload, want) {
				t.Errorf("payload = %v, want %v", payload, want)
			}
			if !reflect.DeepEqual(f.rec.calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", f.rec.calls, tt.wantCalls)
			}
		})
	}
}

func TestService_Execute_WorkspaceCreationFailure(t *testing.T) {
	f := newFixture()
	f.workspaces.createErr = errors.New("no space left on device")
	req := &clip.Request{URL: "https://example.com/v", Start: 1, End: 2}

	payload := f.execute(t, req, Options{})

	if payload["success"] != false {
		t.Errorf("success = %v, want false", payload["success"])
	}
	if msg, _ := payload["message"].(string); !strings.Contains(msg, "no space left on device") {
		t.Errorf("message = %q, want it to contain the cause", msg)
	}
	wantCalls := []string{"create", "report"}
	if !reflect.DeepEqual(f.rec.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", f.rec.calls, wantCalls)
	}
}

func TestService_Run_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture)
		req      clip.Request
		wantKind clip.Kind
	}{
		{"validation", nil, clip.Request{Start: 500, End: 501}, clip.KindValidation},
		{"probe", func(f *fixture) { f.fetcher.probeErr = errors.New("x") }, clip.Request{Start: 1, End: 2}, clip.KindFetch},
		{"download", func(f *fixture) { f.fetcher.downloadErr = errors.New("x") }, clip.Request{Start: 1, End: 2}, clip.KindFetch},
		{"trim", func(f *fixture) { f.trimmer.failError = errors.New("x") }, clip.Request{Start: 1, End: 2}, clip.KindUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.service(Options{}).Run(context.Background(), &tt.req, "/tmp/clip-job", nil)
			if err == nil {
				t.Fatal("Run() expected error, got nil")
			}
			if got := clip.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
		})
	}
}
