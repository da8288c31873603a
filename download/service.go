package download

import (
	"context"
	"fmt"

	"github.com/tunedl/tunedl/download/audio"
	"github.com/tunedl/tunedl/download/catalog"
	"github.com/tunedl/tunedl/download/config"
	"github.com/tunedl/tunedl/download/logging"
	"github.com/tunedl/tunedl/download/metadata"
	"github.com/tunedl/tunedl/download/plan"
	"github.com/tunedl/tunedl/download/scheduler"
	"github.com/tunedl/tunedl/download/transcode"
)

// Service orchestrates one resolve-and-download run: URL classification,
// catalog reads, normalization, destination planning, and scheduling.
type Service struct {
	cfg       *config.Settings
	client    *catalog.Client
	scheduler *scheduler.Scheduler
	logger    *logging.Logger
}

// NewService wires the engine from configuration. Every component gets its
// dependencies explicitly; nothing reads ambient state.
func NewService(cfg *config.Settings, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}

	client := catalog.NewClient(catalog.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Market:       cfg.Market,
		CacheMaxSize: cfg.CacheMaxSize,
		CacheTTL:     cfg.CacheTTL,
	})

	tool := &audio.YtDlp{Path: cfg.YtDlpPath}
	acquirer := audio.NewAcquirer(tool, audio.FirstHitPolicy{}, cfg.ToolTimeout())
	transcoder := transcode.NewTranscoder(cfg.Bitrate, cfg.FFmpegPath)
	embedder := metadata.NewEmbedder()
	pipeline := NewPipeline(acquirer, transcoder, embedder)

	return &Service{
		cfg:       cfg,
		client:    client,
		scheduler: scheduler.New(pipeline, cfg.Threads, cfg.SkipExisting()),
		logger:    logger,
	}
}

// SetProgressObserver forwards per-task progress to an optional observer.
func (s *Service) SetProgressObserver(fn func(taskID string, p audio.Progress)) {
	s.scheduler.SetProgressObserver(fn)
}

// Run resolves the input and downloads every track it yields. The returned
// error is batch-fatal only (bad input, auth, catalog, empty result);
// per-track failures are folded into the counts.
func (s *Service) Run(ctx context.Context, input string) (scheduler.Counts, error) {
	kind, id, err := catalog.Resolve(input)
	if err != nil {
		return scheduler.Counts{}, err
	}
	s.logger.InfoWithOperation("resolve", fmt.Sprintf("resolved input kind=%s id=%s", kind, id))

	if _, err := s.client.Authenticate(ctx); err != nil {
		s.logger.ErrorWithOperation("authenticate", "credential exchange failed", err)
		return scheduler.Counts{}, err
	}

	tracks, err := s.client.Accumulate(ctx, kind, id, catalog.AccumulateOptions{TopLimit: s.cfg.TopTracks})
	if err != nil {
		s.logger.ErrorWithOperation("accumulate", "catalog read failed", err)
		return scheduler.Counts{}, err
	}
	s.logger.InfoWithOperation("accumulate", fmt.Sprintf("normalized %d tracks for %s %s", len(tracks), kind, id))

	if removed := plan.CleanStaleScratch(s.cfg.OutputDir); removed > 0 {
		s.logger.Warnf("removed %d stale scratch directories from a previous run", removed)
	}

	// Task order follows the catalog's own ordering; completion order is up
	// to the pool.
	dests := plan.Destinations(s.cfg.OutputDir, kind, tracks)
	tasks := make([]*scheduler.Task, 0, len(tracks))
	for i, track := range tracks {
		tasks = append(tasks, scheduler.NewTask(track, dests[i]))
	}

	counts := s.scheduler.Run(ctx, tasks)
	s.logger.InfoWithOperation("schedule", fmt.Sprintf(
		"run complete: %d succeeded, %d skipped, %d failed", counts.Succeeded, counts.Skipped, counts.Failed))

	return counts, nil
}
