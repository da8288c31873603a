package audio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// YtDlp runs the yt-dlp binary as the search/fetch tool. One invocation
// searches for the query's top hit and downloads its best audio stream into
// the given directory.
type YtDlp struct {
	// Path to the binary. Empty means "yt-dlp" from PATH.
	Path string
}

// Fetch implements FetchTool. Progress lines arrive on stdout one per line
// because of --newline; stderr is kept for the error message.
func (y *YtDlp) Fetch(ctx context.Context, query, dir string, onLine func(string)) error {
	binary := y.Path
	if binary == "" {
		binary = "yt-dlp"
	}

	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--format", "bestaudio",
		"--output", filepath.Join(dir, "source.%(ext)s"),
		"ytsearch1:" + query,
	}

	cmd := exec.CommandContext(ctx, binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ToolError{Message: "failed to open tool output", Original: err}
	}

	if err := cmd.Start(); err != nil {
		return &ToolError{Message: fmt.Sprintf("failed to start %s", binary), Original: err}
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if onLine != nil {
			onLine(scanner.Text())
		}
	}

	if err := cmd.Wait(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "tool exited with an error"
		}
		return &ToolError{Message: msg, Original: err}
	}
	return nil
}
