package scheduler

import (
	"context"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/tunedl/tunedl/download/audio"
)

// Runner executes the full per-track pipeline (acquire, transcode, tag,
// place) for one task.
type Runner interface {
	Run(ctx context.Context, task *Task, onProgress func(audio.Progress)) error
}

// Counts summarizes terminal task states after a run.
type Counts struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Total returns the number of tasks counted.
func (c Counts) Total() int {
	return c.Succeeded + c.Skipped + c.Failed
}

// Scheduler runs download tasks under a bounded worker pool. A task failure
// is isolated: it never cancels or blocks sibling tasks, and the scheduler
// returns only once every task reached a terminal state.
type Scheduler struct {
	runner       Runner
	workers      int
	skipExisting bool
	onProgress   func(taskID string, p audio.Progress)
}

// New creates a scheduler with a concurrency cap of workers. Values below 1
// are clamped to 1, which makes execution fully sequential.
func New(runner Runner, workers int, skipExisting bool) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{runner: runner, workers: workers, skipExisting: skipExisting}
}

// SetProgressObserver registers an optional observer for per-task progress.
// Progress is display data only; it plays no part in scheduling decisions.
func (s *Scheduler) SetProgressObserver(fn func(taskID string, p audio.Progress)) {
	s.onProgress = fn
}

// Run executes all tasks and returns their terminal counts.
func (s *Scheduler) Run(ctx context.Context, tasks []*Task) Counts {
	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			s.runTask(ctx, task)
			// Task errors are recorded on the task itself so one failure
			// never tears down the group.
			return nil
		})
	}
	_ = g.Wait()

	return countTasks(tasks)
}

// runTask drives one task through its state machine.
func (s *Scheduler) runTask(ctx context.Context, task *Task) {
	if s.skipExisting {
		if _, err := os.Stat(task.Destination); err == nil {
			task.MarkSkipped()
			log.Printf("INFO: task_skipped reason=file_exists track=%q path=%s", task.Track.Title, task.Destination)
			return
		}
	}

	if err := ctx.Err(); err != nil {
		task.MarkFailed(err.Error())
		return
	}

	task.MarkInProgress()

	var onProgress func(audio.Progress)
	if s.onProgress != nil {
		id := task.ID
		observer := s.onProgress
		onProgress = func(p audio.Progress) { observer(id, p) }
	}

	if err := s.runner.Run(ctx, task, onProgress); err != nil {
		task.MarkFailed(err.Error())
		log.Printf("ERROR: task_failed track=%q artist=%q error=%v", task.Track.Title, task.Track.PrimaryArtist(), err)
		return
	}

	task.MarkSucceeded()
	log.Printf("INFO: task_succeeded track=%q artist=%q path=%s", task.Track.Title, task.Track.PrimaryArtist(), task.Destination)
}

func countTasks(tasks []*Task) Counts {
	var counts Counts
	for _, task := range tasks {
		switch task.Status() {
		case StatusSucceeded:
			counts.Succeeded++
		case StatusSkippedExisting:
			counts.Skipped++
		case StatusFailed:
			counts.Failed++
		}
	}
	return counts
}
