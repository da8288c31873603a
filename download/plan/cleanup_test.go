package plan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanStaleScratch(t *testing.T) {
	root := t.TempDir()

	staleOne := filepath.Join(root, "Tracks", "Artist", ".tunedl-tmp-old1")
	staleTwo := filepath.Join(root, "Playlists", "Other", ".tunedl-tmp-old2")
	keeper := filepath.Join(root, "Tracks", "Artist")
	for _, dir := range []string{staleOne, staleTwo} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "source.webm"), []byte("leftover"), 0644); err != nil {
			t.Fatalf("Failed to seed scratch file: %v", err)
		}
	}
	finished := filepath.Join(keeper, "Song.mp3")
	if err := os.WriteFile(finished, []byte("mp3"), 0644); err != nil {
		t.Fatalf("Failed to create finished file: %v", err)
	}

	removed := CleanStaleScratch(root)
	if removed != 2 {
		t.Errorf("Expected 2 removed scratch dirs, got %d", removed)
	}
	for _, dir := range []string{staleOne, staleTwo} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", dir)
		}
	}
	if _, err := os.Stat(finished); err != nil {
		t.Errorf("Finished file should survive cleanup: %v", err)
	}
}

func TestCleanStaleScratch_MissingRoot(t *testing.T) {
	removed := CleanStaleScratch(filepath.Join(t.TempDir(), "does-not-exist"))
	if removed != 0 {
		t.Errorf("Expected 0 removals for missing root, got %d", removed)
	}
}

func TestCleanStaleScratch_NothingToDo(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Tracks", "Artist"), 0755); err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	if removed := CleanStaleScratch(root); removed != 0 {
		t.Errorf("Expected 0 removals in clean tree, got %d", removed)
	}
}
