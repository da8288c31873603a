package plan

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tunedl/tunedl/download/catalog"
)

const (
	// singleBucket holds tracks resolved from a single-track URL;
	// collectionBucket holds everything resolved from playlists, albums, and
	// artist top-tracks.
	singleBucket     = "Tracks"
	collectionBucket = "Playlists"

	outputExt = ".mp3"

	// maxComponentLen caps each sanitized path component.
	maxComponentLen = 120

	// placeholderName substitutes a component that sanitizes to nothing.
	placeholderName = "Unknown"

	// scratchPrefix marks per-task scratch directories so interrupted runs
	// can be cleaned up on the next entry.
	scratchPrefix = ".tunedl-tmp-"
)

// Destination computes the output path for a track. Pure and deterministic:
// the scheduler relies on it for existence checks before any network work.
func Destination(root string, kind catalog.Kind, track catalog.Track) string {
	bucket := singleBucket
	if kind.IsCollection() {
		bucket = collectionBucket
	}
	return filepath.Join(root, bucket, Sanitize(track.PrimaryArtist()), Sanitize(track.Title)+outputExt)
}

// Sanitize makes a string safe as a single path component: filesystem-unsafe
// characters become underscores, surrounding whitespace and dots are stripped,
// length is capped at maxComponentLen runes, and an empty result gets a
// placeholder name. Path separators never survive substitution, so a component
// cannot traverse out of its directory.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	sanitized := strings.Trim(b.String(), ". \t")
	if utf8.RuneCountInString(sanitized) > maxComponentLen {
		runes := []rune(sanitized)
		// The cut can land next to an interior dot; trim again so the capped
		// component stays valid on Windows.
		sanitized = strings.TrimRight(string(runes[:maxComponentLen]), ". \t")
	}
	sanitized = strings.TrimSpace(sanitized)
	if sanitized == "" {
		return placeholderName
	}
	return sanitized
}

// Destinations maps an ordered track list to pairwise-distinct output paths.
// Tracks that collide on sanitized artist and title get an ordinal suffix in
// list order, so no two workers ever write the same file. Deterministic for a
// given list, which keeps the skip-existing check stable across reruns.
func Destinations(root string, kind catalog.Kind, tracks []catalog.Track) []string {
	paths := make([]string, 0, len(tracks))
	taken := make(map[string]struct{}, len(tracks))
	for _, track := range tracks {
		path := Destination(root, kind, track)
		base := strings.TrimSuffix(path, outputExt)
		for n := 2; ; n++ {
			if _, exists := taken[path]; !exists {
				break
			}
			path = fmt.Sprintf("%s (%d)%s", base, n, outputExt)
		}
		taken[path] = struct{}{}
		paths = append(paths, path)
	}
	return paths
}

// ScratchDir derives the per-task scratch directory from the destination
// parent. Using the task ID keeps concurrent workers from colliding.
func ScratchDir(destPath, taskID string) string {
	return filepath.Join(filepath.Dir(destPath), scratchPrefix+taskID)
}

// IsScratchDir reports whether a directory name is one of our scratch dirs.
func IsScratchDir(name string) bool {
	return strings.HasPrefix(name, scratchPrefix)
}
