package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Bitrates is the enumerated set of supported constant-bitrate presets.
var Bitrates = []string{"320k", "192k", "128k", "96k"}

// ValidBitrate reports whether b is one of the supported presets.
func ValidBitrate(b string) bool {
	for _, known := range Bitrates {
		if b == known {
			return true
		}
	}
	return false
}

// TranscodeError represents a failed conversion. Scoped to one task; the
// batch continues.
type TranscodeError struct {
	Message  string
	Original error
}

func (e *TranscodeError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("transcode error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("transcode error: %s", e.Message)
}

func (e *TranscodeError) Unwrap() error {
	return e.Original
}

// Transcoder converts raw fetched audio into constant-bitrate MP3.
type Transcoder struct {
	bitrate    string
	ffmpegPath string
}

// NewTranscoder creates a transcoder for the given bitrate preset. An invalid
// or empty bitrate falls back to 320k. ffmpegPath may be empty to use PATH.
func NewTranscoder(bitrate, ffmpegPath string) *Transcoder {
	if !ValidBitrate(bitrate) {
		bitrate = Bitrates[0]
	}
	return &Transcoder{bitrate: bitrate, ffmpegPath: ffmpegPath}
}

// Bitrate returns the configured preset.
func (t *Transcoder) Bitrate() string {
	return t.bitrate
}

// Transcode converts rawPath into an MP3 at destPath. The destination
// directory is created as needed; the raw input is left in place for the
// caller's scratch cleanup.
func (t *Transcoder) Transcode(ctx context.Context, rawPath, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(rawPath); err != nil {
		return &TranscodeError{Message: fmt.Sprintf("raw audio missing: %s", rawPath), Original: err}
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return &TranscodeError{Message: "failed to create destination directory", Original: err}
	}

	stream := ffmpeg.Input(rawPath).
		Output(destPath, ffmpeg.KwArgs{
			"map":      "0:a",
			"codec:a":  "libmp3lame",
			"b:a":      t.bitrate,
			"loglevel": "error",
		}).
		OverWriteOutput().
		ErrorToStdOut()
	if t.ffmpegPath != "" {
		stream.SetFfmpegPath(t.ffmpegPath)
	}

	if err := stream.Run(); err != nil {
		// A partial output is worse than none.
		_ = os.Remove(destPath)
		return &TranscodeError{Message: fmt.Sprintf("conversion failed for %s", rawPath), Original: err}
	}

	if _, err := os.Stat(destPath); err != nil {
		return &TranscodeError{Message: fmt.Sprintf("no output produced at %s", destPath), Original: err}
	}
	return nil
}
