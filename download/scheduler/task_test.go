package scheduler

import (
	"testing"

	"github.com/tunedl/tunedl/download/catalog"
)

func TestNewTask(t *testing.T) {
	track := catalog.Track{Title: "Test Song", Artists: []string{"Artist"}}
	task := NewTask(track, "/music/Tracks/Artist/Test Song.mp3")

	if task.ID == "" {
		t.Error("Expected a generated task ID")
	}
	if task.Status() != StatusPending {
		t.Errorf("Expected new task to be pending, got %s", task.Status())
	}
	if task.Err() != "" {
		t.Errorf("Expected no error message on a new task, got %q", task.Err())
	}
}

func TestTask_UniqueIDs(t *testing.T) {
	track := catalog.Track{Title: "Test Song", Artists: []string{"Artist"}}
	a := NewTask(track, "/a.mp3")
	b := NewTask(track, "/b.mp3")
	if a.ID == b.ID {
		t.Errorf("Expected unique task IDs, both were %q", a.ID)
	}
}

func TestTask_Lifecycle(t *testing.T) {
	track := catalog.Track{Title: "Test Song", Artists: []string{"Artist"}}
	task := NewTask(track, "/music/song.mp3")

	task.MarkInProgress()
	if task.Status() != StatusInProgress {
		t.Errorf("Expected in-progress, got %s", task.Status())
	}

	task.MarkSucceeded()
	if task.Status() != StatusSucceeded {
		t.Errorf("Expected succeeded, got %s", task.Status())
	}
}

func TestTask_FailureRecordsCause(t *testing.T) {
	track := catalog.Track{Title: "Test Song", Artists: []string{"Artist"}}
	task := NewTask(track, "/music/song.mp3")

	task.MarkInProgress()
	task.MarkFailed("no search results")
	if task.Status() != StatusFailed {
		t.Errorf("Expected failed, got %s", task.Status())
	}
	if task.Err() != "no search results" {
		t.Errorf("Expected failure cause, got %q", task.Err())
	}
}

func TestTask_TerminalStatesAreFinal(t *testing.T) {
	track := catalog.Track{Title: "Test Song", Artists: []string{"Artist"}}

	task := NewTask(track, "/music/song.mp3")
	task.MarkSkipped()
	task.MarkInProgress()
	if task.Status() != StatusSkippedExisting {
		t.Errorf("Expected skipped to be final, got %s", task.Status())
	}

	task = NewTask(track, "/music/song.mp3")
	task.MarkSucceeded()
	task.MarkFailed("late failure")
	if task.Status() != StatusSucceeded {
		t.Errorf("Expected succeeded to be final, got %s", task.Status())
	}
	if task.Err() != "" {
		t.Errorf("Expected no error on a succeeded task, got %q", task.Err())
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	terminal := []TaskStatus{StatusSucceeded, StatusSkippedExisting, StatusFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}
	for _, s := range []TaskStatus{StatusPending, StatusInProgress} {
		if s.Terminal() {
			t.Errorf("Expected %s to not be terminal", s)
		}
	}
}
