package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tunedl/tunedl/download/audio"
	"github.com/tunedl/tunedl/download/catalog"
	"github.com/tunedl/tunedl/download/plan"
	"github.com/tunedl/tunedl/download/scheduler"
)

type mockAcquirer struct {
	acquireFunc func(ctx context.Context, track catalog.Track, scratchDir string, onProgress func(audio.Progress)) (string, error)
}

func (m *mockAcquirer) Acquire(ctx context.Context, track catalog.Track, scratchDir string, onProgress func(audio.Progress)) (string, error) {
	return m.acquireFunc(ctx, track, scratchDir, onProgress)
}

type mockTranscoder struct {
	transcodeFunc func(ctx context.Context, rawPath, destPath string) error
}

func (m *mockTranscoder) Transcode(ctx context.Context, rawPath, destPath string) error {
	if m.transcodeFunc == nil {
		return os.WriteFile(destPath, []byte("mp3"), 0644)
	}
	return m.transcodeFunc(ctx, rawPath, destPath)
}

type mockEmbedder struct {
	embedFunc func(ctx context.Context, path string, track catalog.Track, coverURL string) error
}

func (m *mockEmbedder) Embed(ctx context.Context, path string, track catalog.Track, coverURL string) error {
	if m.embedFunc == nil {
		return nil
	}
	return m.embedFunc(ctx, path, track, coverURL)
}

func fetchingAcquirer(t *testing.T) *mockAcquirer {
	t.Helper()
	return &mockAcquirer{
		acquireFunc: func(ctx context.Context, track catalog.Track, scratchDir string, onProgress func(audio.Progress)) (string, error) {
			raw := filepath.Join(scratchDir, "source.webm")
			if err := os.WriteFile(raw, []byte("raw audio"), 0644); err != nil {
				t.Fatalf("Failed to write raw file: %v", err)
			}
			return raw, nil
		},
	}
}

func newTestTask(t *testing.T) *scheduler.Task {
	t.Helper()
	track := catalog.Track{Title: "Test Song", Artists: []string{"Test Artist"}, CoverURL: "https://img.example/c.jpg"}
	dest := filepath.Join(t.TempDir(), "Tracks", "Test Artist", "Test Song.mp3")
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		t.Fatalf("Failed to create destination dir: %v", err)
	}
	return scheduler.NewTask(track, dest)
}

func TestPipeline_Run(t *testing.T) {
	var embeddedPath, embeddedCover string
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, path string, track catalog.Track, coverURL string) error {
			embeddedPath = path
			embeddedCover = coverURL
			return nil
		},
	}
	p := NewPipeline(fetchingAcquirer(t), &mockTranscoder{}, embedder)
	task := newTestTask(t)

	if err := p.Run(context.Background(), task, nil); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if _, err := os.Stat(task.Destination); err != nil {
		t.Errorf("Expected destination file to exist: %v", err)
	}
	if embeddedPath != task.Destination {
		t.Errorf("Expected tagging on the destination, got %q", embeddedPath)
	}
	if embeddedCover != task.Track.CoverURL {
		t.Errorf("Expected cover URL to reach the embedder, got %q", embeddedCover)
	}
}

func TestPipeline_RemovesScratchOnSuccess(t *testing.T) {
	p := NewPipeline(fetchingAcquirer(t), &mockTranscoder{}, &mockEmbedder{})
	task := newTestTask(t)

	if err := p.Run(context.Background(), task, nil); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	scratch := plan.ScratchDir(task.Destination, task.ID)
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Errorf("Expected scratch directory to be removed, stat err: %v", err)
	}
}

func TestPipeline_RemovesScratchOnAcquireFailure(t *testing.T) {
	acquirer := &mockAcquirer{
		acquireFunc: func(ctx context.Context, track catalog.Track, scratchDir string, onProgress func(audio.Progress)) (string, error) {
			return "", &audio.NoMatchError{Title: track.Title}
		},
	}
	p := NewPipeline(acquirer, &mockTranscoder{}, &mockEmbedder{})
	task := newTestTask(t)

	err := p.Run(context.Background(), task, nil)
	var noMatch *audio.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("Expected NoMatchError, got %v", err)
	}
	scratch := plan.ScratchDir(task.Destination, task.ID)
	if _, statErr := os.Stat(scratch); !os.IsNotExist(statErr) {
		t.Errorf("Expected scratch directory removed after failure, stat err: %v", statErr)
	}
	if _, statErr := os.Stat(task.Destination); !os.IsNotExist(statErr) {
		t.Error("Destination must not exist after a failed acquire")
	}
}

func TestPipeline_TranscodeFailurePropagates(t *testing.T) {
	transcoder := &mockTranscoder{
		transcodeFunc: func(ctx context.Context, rawPath, destPath string) error {
			return errors.New("encoder exited 1")
		},
	}
	p := NewPipeline(fetchingAcquirer(t), transcoder, &mockEmbedder{})
	task := newTestTask(t)

	if err := p.Run(context.Background(), task, nil); err == nil {
		t.Fatal("Expected transcode failure to propagate")
	}
}

func TestPipeline_EmbedFailureDoesNotFailTask(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, path string, track catalog.Track, coverURL string) error {
			return errors.New("tag write failed")
		},
	}
	p := NewPipeline(fetchingAcquirer(t), &mockTranscoder{}, embedder)
	task := newTestTask(t)

	if err := p.Run(context.Background(), task, nil); err != nil {
		t.Errorf("Expected tagging failure to be tolerated, got %v", err)
	}
	if _, err := os.Stat(task.Destination); err != nil {
		t.Errorf("Expected destination file to remain in place: %v", err)
	}
}

func TestPipeline_EndToEndScheduling(t *testing.T) {
	root := t.TempDir()
	p := NewPipeline(fetchingAcquirer(t), &mockTranscoder{}, &mockEmbedder{})
	s := scheduler.New(p, 2, true)

	tracks := []catalog.Track{
		{Title: "First", Artists: []string{"Artist A"}},
		{Title: "Second", Artists: []string{"Artist B"}},
		{Title: "Third", Artists: []string{"Artist A"}},
	}
	tasks := make([]*scheduler.Task, 0, len(tracks))
	for _, track := range tracks {
		tasks = append(tasks, scheduler.NewTask(track, plan.Destination(root, catalog.KindPlaylist, track)))
	}

	counts := s.Run(context.Background(), tasks)
	if counts.Succeeded != 3 {
		t.Fatalf("Expected 3 successes, got %+v", counts)
	}
	for _, task := range tasks {
		if _, err := os.Stat(task.Destination); err != nil {
			t.Errorf("Expected output at %s: %v", task.Destination, err)
		}
	}

	// A second run over the same tracks skips everything.
	rerun := make([]*scheduler.Task, 0, len(tracks))
	for _, track := range tracks {
		rerun = append(rerun, scheduler.NewTask(track, plan.Destination(root, catalog.KindPlaylist, track)))
	}
	counts = s.Run(context.Background(), rerun)
	if counts.Skipped != 3 || counts.Succeeded != 0 {
		t.Errorf("Expected full skip on rerun, got %+v", counts)
	}
}
