package catalog

import "time"

// Kind identifies the catalog resource type behind an input URL.
type Kind string

const (
	KindTrack     Kind = "track"
	KindPlaylist  Kind = "playlist"
	KindAlbum     Kind = "album"
	KindArtistTop Kind = "artist"
)

// IsCollection reports whether the kind resolves to a multi-track collection.
// Single tracks land in their own output bucket; everything else shares one.
func (k Kind) IsCollection() bool {
	return k != KindTrack
}

// Track is one normalized catalog track. Built once by the normalizer and
// consumed read-only by every downstream stage.
type Track struct {
	Title      string
	Artists    []string // index 0 is the primary artist
	Album      string
	DurationMS int
	SourceID   string
	CoverURL   string // largest cover image, empty when none was published
}

// PrimaryArtist returns the first listed artist.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ResolvedEntity is the outcome of resolving one input URL. Track order is
// significant and preserved from the catalog's own ordering.
type ResolvedEntity struct {
	Kind   Kind
	Tracks []Track
}

// CatalogPage is one transient API response fragment. Items stay untyped here;
// the normalizer is the boundary where typed Track records are produced.
type CatalogPage struct {
	Items []map[string]any
	Next  string         // cursor for the following page, empty when exhausted
	Meta  map[string]any // collection-level fields (album name, cover images)
}

// Token is the result of a client-credentials exchange.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the token can still be used.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != "" && time.Now().Before(t.ExpiresAt)
}
