package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("Log line is not valid JSON: %v", err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, err := NewLogger(path, "test-service")
	if err != nil {
		t.Fatalf("NewLogger() returned error: %v", err)
	}

	logger.Info("first message")
	logger.Warnf("second %s", "message")
	logger.ErrorWithOperation("fetch", "third message", errors.New("boom"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}

	entries := readEntries(t, path)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 log entries, got %d", len(entries))
	}

	if entries[0].Level != LogLevelInfo || entries[0].Message != "first message" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != LogLevelWarn || entries[1].Message != "second message" {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
	if entries[2].Level != LogLevelError || entries[2].Operation != "fetch" || entries[2].Error != "boom" {
		t.Errorf("Unexpected third entry: %+v", entries[2])
	}
	for i, entry := range entries {
		if entry.Service != "test-service" {
			t.Errorf("Entry %d missing service name: %+v", i, entry)
		}
		if entry.Timestamp.IsZero() {
			t.Errorf("Entry %d missing timestamp", i)
		}
	}
}

func TestLogger_AppendsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	first, err := NewLogger(path, "svc")
	if err != nil {
		t.Fatalf("NewLogger() returned error: %v", err)
	}
	first.Info("from first run")
	first.Close()

	second, err := NewLogger(path, "svc")
	if err != nil {
		t.Fatalf("NewLogger() returned error: %v", err)
	}
	second.Info("from second run")
	second.Close()

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Errorf("Expected appended entries from both runs, got %d", len(entries))
	}
}

func TestLogger_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "run.log")
	logger, err := NewLogger(path, "svc")
	if err != nil {
		t.Fatalf("NewLogger() returned error: %v", err)
	}
	logger.Info("hello")
	logger.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected log file to exist: %v", err)
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info("discarded")
	logger.Warn("discarded")
	logger.Error("discarded", errors.New("ignored"))
	logger.InfoWithOperation("op", "discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on nop logger returned error: %v", err)
	}
}
