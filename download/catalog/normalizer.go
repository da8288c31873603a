package catalog

import (
	"context"
	"log"
)

// AccumulateOptions tunes normalization.
type AccumulateOptions struct {
	// TopLimit truncates artist top-tracks to a prefix of the catalog's own
	// ranking. Supported values are 10, 25, or 0 for the full list. Truncation
	// happens after normalization so the ranking order is preserved.
	TopLimit int
}

// Accumulate fetches every page for the entity and folds it into a uniform
// Track list, page order first, within-page order second. Collection items
// that are removed or not streamable (local-file placeholders, missing track
// payloads) are dropped silently. A final list of zero tracks is an error so
// callers can tell "nothing to do" apart from a broken resolve.
func (c *Client) Accumulate(ctx context.Context, kind Kind, id string, opts AccumulateOptions) ([]Track, error) {
	var tracks []Track
	var albumName, albumCover string

	cursor := ""
	for {
		page, err := c.FetchPage(ctx, kind, id, cursor)
		if err != nil {
			return nil, err
		}

		if kind == KindAlbum && page.Meta != nil {
			albumName = rawString(page.Meta["name"])
			albumCover = largestImageURL(page.Meta["images"])
		}

		for _, item := range page.Items {
			track, ok := trackFromItem(kind, item)
			if !ok {
				if kind == KindTrack {
					// A single resolves to exactly one item; a placeholder
					// title is better than failing the whole run.
					track = fallbackTrack(item)
				} else {
					log.Printf("INFO: normalize_item_dropped kind=%s id=%s", kind, id)
					continue
				}
			}
			if kind == KindAlbum {
				track.Album = albumName
				if track.CoverURL == "" {
					track.CoverURL = albumCover
				}
			}
			tracks = append(tracks, track)
		}

		if page.Next == "" {
			break
		}
		cursor = page.Next
	}

	if kind == KindArtistTop && opts.TopLimit > 0 && len(tracks) > opts.TopLimit {
		tracks = tracks[:opts.TopLimit]
	}

	if len(tracks) == 0 {
		return nil, &EmptyResultError{Kind: kind, ID: id}
	}
	return tracks, nil
}

// trackFromItem converts one raw page item into a Track. Returns ok=false for
// items that cannot be represented (no artists, local files, missing track
// object in a playlist wrapper).
func trackFromItem(kind Kind, item map[string]any) (Track, bool) {
	obj := item
	if kind == KindPlaylist {
		// Playlist items wrap the track object and may mark local files.
		if local, _ := item["is_local"].(bool); local {
			return Track{}, false
		}
		inner, ok := item["track"].(map[string]any)
		if !ok || inner == nil {
			return Track{}, false
		}
		if local, _ := inner["is_local"].(bool); local {
			return Track{}, false
		}
		obj = inner
	}

	track := Track{
		Title:    rawString(obj["name"]),
		SourceID: rawString(obj["id"]),
	}
	if track.Title == "" {
		track.Title = "Unknown Title"
	}

	if artists, ok := obj["artists"].([]any); ok {
		for _, a := range artists {
			m, ok := a.(map[string]any)
			if !ok {
				continue
			}
			if name := rawString(m["name"]); name != "" {
				track.Artists = append(track.Artists, name)
			}
		}
	}
	if len(track.Artists) == 0 {
		return Track{}, false
	}

	if ms, ok := obj["duration_ms"].(float64); ok {
		track.DurationMS = int(ms)
	}

	if album, ok := obj["album"].(map[string]any); ok {
		track.Album = rawString(album["name"])
		track.CoverURL = largestImageURL(album["images"])
	}

	return track, true
}

// fallbackTrack builds a placeholder Track for a single whose payload is
// missing fields the invariants require.
func fallbackTrack(item map[string]any) Track {
	title := rawString(item["name"])
	if title == "" {
		title = "Unknown Title"
	}
	return Track{
		Title:    title,
		Artists:  []string{"Unknown Artist"},
		SourceID: rawString(item["id"]),
	}
}

// largestImageURL picks the first image, which the catalog orders largest
// first.
func largestImageURL(v any) string {
	images, ok := v.([]any)
	if !ok || len(images) == 0 {
		return ""
	}
	m, ok := images[0].(map[string]any)
	if !ok {
		return ""
	}
	return rawString(m["url"])
}
