package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tunedl/tunedl/download/catalog"
)

// DefaultToolTimeout bounds one fetch-tool invocation so a stuck download
// cannot starve the worker pool.
const DefaultToolTimeout = 10 * time.Minute

// MatchPolicy builds the search query variants tried for a track, in order.
type MatchPolicy interface {
	Queries(track catalog.Track) []string
}

// FirstHitPolicy is the default policy: the first search hit for each query
// is accepted as-is. No duration-closeness or title-similarity check is
// applied before a result is taken, which is a known limitation of the
// current matching; a stricter scorer can be plugged in through MatchPolicy.
type FirstHitPolicy struct{}

// Queries returns the primary query (title + primary artist + "audio") and,
// when it differs, a secondary variant with the artist-list delimiter
// normalized to spaces.
func (FirstHitPolicy) Queries(track catalog.Track) []string {
	primary := fmt.Sprintf("%s %s audio", track.Title, track.PrimaryArtist())
	secondary := fmt.Sprintf("%s %s audio", track.Title, strings.Join(track.Artists, " "))
	if secondary == primary {
		return []string{primary}
	}
	return []string{primary, secondary}
}

// FetchTool invokes the external search/fetch tool for one query, writing at
// most one media file into dir. Output lines stream through onLine as they
// arrive.
type FetchTool interface {
	Fetch(ctx context.Context, query, dir string, onLine func(string)) error
}

// Acquirer turns catalog metadata into a raw audio file on disk via external
// search.
type Acquirer struct {
	tool    FetchTool
	policy  MatchPolicy
	timeout time.Duration
}

// NewAcquirer creates an acquirer. A zero timeout falls back to
// DefaultToolTimeout.
func NewAcquirer(tool FetchTool, policy MatchPolicy, timeout time.Duration) *Acquirer {
	if policy == nil {
		policy = FirstHitPolicy{}
	}
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	return &Acquirer{tool: tool, policy: policy, timeout: timeout}
}

// Acquire runs the fetch tool for each query variant until a usable file
// appears in scratchDir, and returns its path. A usable result is defined
// operationally: a non-empty, non-partial file in the scratch directory after
// the tool returns. Exhausting every variant yields a NoMatchError.
func (a *Acquirer) Acquire(ctx context.Context, track catalog.Track, scratchDir string, onProgress func(Progress)) (string, error) {
	queries := a.policy.Queries(track)

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		toolCtx, cancel := context.WithTimeout(ctx, a.timeout)
		err := a.tool.Fetch(toolCtx, query, scratchDir, func(line string) {
			if onProgress == nil {
				return
			}
			if p, ok := ParseProgressLine(line); ok {
				onProgress(p)
			}
		})
		cancel()

		if err != nil {
			log.Printf("WARN: fetch_query_failed track=%q query=%q error=%v", track.Title, query, err)
			continue
		}

		if path := usableFile(scratchDir); path != "" {
			return path, nil
		}
		log.Printf("WARN: fetch_no_file track=%q query=%q dir=%s", track.Title, query, scratchDir)
	}

	return "", &NoMatchError{Title: track.Title, Queries: queries}
}

// usableFile returns the first non-empty media file in dir, skipping the
// tool's partial-download leftovers.
func usableFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		return filepath.Join(dir, name)
	}
	return ""
}
