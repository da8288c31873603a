package metadata

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/bogem/id3v2/v2"

	"github.com/tunedl/tunedl/download/catalog"
)

// artistDelimiter joins the full artist list in listing order.
const artistDelimiter = ", "

// MetadataError represents a tagging failure.
type MetadataError struct {
	Message  string
	Original error
}

func (e *MetadataError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("metadata error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("metadata error: %s", e.Message)
}

func (e *MetadataError) Unwrap() error {
	return e.Original
}

// Embedder writes ID3v2 tags and cover art into finished files.
type Embedder struct {
	httpClient *http.Client
}

// NewEmbedder creates a metadata embedder.
func NewEmbedder() *Embedder {
	return &Embedder{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Embed tags the file at path with the track's metadata: title, the full
// artist list in order, album-artist set to the primary artist, the album
// when known, and the cover image when one can be fetched. A cover failure
// degrades gracefully to an untagged-art file.
func (e *Embedder) Embed(ctx context.Context, path string, track catalog.Track, coverURL string) error {
	if err := ctx.Err(); err != nil {
		return &MetadataError{Message: "context cancelled", Original: err}
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		tag, err = id3v2.Open(path, id3v2.Options{Parse: false})
		if err != nil {
			return &MetadataError{Message: fmt.Sprintf("failed to open %s", path), Original: err}
		}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(track.Title)
	tag.SetArtist(strings.Join(track.Artists, artistDelimiter))
	tag.AddTextFrame(tag.CommonID("TPE2"), id3v2.EncodingUTF8, track.PrimaryArtist())
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}
	if track.DurationMS > 0 {
		tag.AddTextFrame(tag.CommonID("TLEN"), id3v2.EncodingUTF8, fmt.Sprintf("%d", track.DurationMS))
	}

	if coverURL != "" {
		if err := e.embedCover(ctx, tag, coverURL); err != nil {
			log.Printf("WARN: cover_fetch_failed file=%s cover_url=%s error=%v", path, coverURL, err)
		}
	}

	if err := tag.Save(); err != nil {
		return &MetadataError{Message: fmt.Sprintf("failed to save tags for %s", path), Original: err}
	}
	return nil
}

// embedCover downloads the cover image and attaches it as the front cover.
func (e *Embedder) embedCover(ctx context.Context, tag *id3v2.Tag, coverURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build cover request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cover download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cover download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read cover body: %w", err)
	}

	mimeType := "image/jpeg"
	if len(data) > 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		mimeType = "image/png"
	}

	tag.DeleteFrames(tag.CommonID("APIC"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     data,
	})
	return nil
}
