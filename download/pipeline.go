package download

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tunedl/tunedl/download/audio"
	"github.com/tunedl/tunedl/download/catalog"
	"github.com/tunedl/tunedl/download/plan"
	"github.com/tunedl/tunedl/download/scheduler"
)

// Acquirer finds and fetches raw audio for a track into a scratch directory.
type Acquirer interface {
	Acquire(ctx context.Context, track catalog.Track, scratchDir string, onProgress func(audio.Progress)) (string, error)
}

// Transcoder converts raw audio into the output format at the destination.
type Transcoder interface {
	Transcode(ctx context.Context, rawPath, destPath string) error
}

// Embedder tags a finished file with track metadata and cover art.
type Embedder interface {
	Embed(ctx context.Context, path string, track catalog.Track, coverURL string) error
}

// Pipeline runs one task end to end: acquire, transcode, tag. It implements
// scheduler.Runner. Each task gets its own scratch directory next to the
// destination, removed on every exit path.
type Pipeline struct {
	acquirer   Acquirer
	transcoder Transcoder
	embedder   Embedder
}

// NewPipeline wires the per-track stages together.
func NewPipeline(acquirer Acquirer, transcoder Transcoder, embedder Embedder) *Pipeline {
	return &Pipeline{acquirer: acquirer, transcoder: transcoder, embedder: embedder}
}

// Run implements scheduler.Runner.
func (p *Pipeline) Run(ctx context.Context, task *scheduler.Task, onProgress func(audio.Progress)) error {
	scratch := plan.ScratchDir(task.Destination, task.ID)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			log.Printf("WARN: scratch_cleanup_failed dir=%s error=%v", scratch, err)
		}
	}()

	rawPath, err := p.acquirer.Acquire(ctx, task.Track, scratch, onProgress)
	if err != nil {
		return err
	}

	if err := p.transcoder.Transcode(ctx, rawPath, task.Destination); err != nil {
		return err
	}

	// The file is already in place; a tagging failure downgrades the result
	// rather than failing the task.
	if err := p.embedder.Embed(ctx, task.Destination, task.Track, task.Track.CoverURL); err != nil {
		log.Printf("WARN: metadata_embed_failed track=%q path=%s error=%v", task.Track.Title, task.Destination, err)
	}

	return nil
}
