package config

import (
	"fmt"
	"time"

	"github.com/tunedl/tunedl/download/transcode"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// OverwriteMode controls what happens when a destination file already exists.
type OverwriteMode string

const (
	// OverwriteSkip bypasses acquisition entirely for existing files. This is
	// the idempotence mechanism for repeated runs over the same entity.
	OverwriteSkip OverwriteMode = "skip"
	// OverwriteForce re-downloads and replaces existing files.
	OverwriteForce OverwriteMode = "overwrite"
)

// maxThreads keeps the worker pool small; the external tools do not benefit
// from wide fan-out and the upstream hosts throttle aggressively.
const maxThreads = 4

// Settings holds the full engine configuration. Loaded once, passed into
// component constructors as an immutable value; no component reads ambient
// state.
type Settings struct {
	// Catalog API credentials. Also settable through TUNEDL_CLIENT_ID and
	// TUNEDL_CLIENT_SECRET.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	OutputDir string        `yaml:"output_dir"`
	Threads   int           `yaml:"threads"`
	Overwrite OverwriteMode `yaml:"overwrite"`
	Bitrate   string        `yaml:"bitrate"`
	Market    string        `yaml:"market"`

	// TopTracks limits artist top-tracks resolution: 10, 25, or 0 for the
	// full list.
	TopTracks int `yaml:"top_tracks"`

	// ToolTimeoutMinutes bounds one external tool invocation.
	ToolTimeoutMinutes int `yaml:"tool_timeout_minutes"`

	YtDlpPath  string `yaml:"ytdlp_path"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	LogPath    string `yaml:"log_path"`

	// Catalog page cache, process-local.
	CacheMaxSize int `yaml:"cache_max_size"`
	CacheTTL     int `yaml:"cache_ttl"`
}

// SetDefaults fills unset fields with defaults.
func (s *Settings) SetDefaults() {
	if s.OutputDir == "" {
		s.OutputDir = "music"
	}
	if s.Threads == 0 {
		s.Threads = 2
	}
	if s.Overwrite == "" {
		s.Overwrite = OverwriteSkip
	}
	if s.Bitrate == "" {
		s.Bitrate = "320k"
	}
	if s.Market == "" {
		s.Market = "US"
	}
	if s.ToolTimeoutMinutes == 0 {
		s.ToolTimeoutMinutes = 10
	}
	if s.LogPath == "" {
		s.LogPath = "logs/tunedl.log"
	}
	if s.CacheMaxSize == 0 {
		s.CacheMaxSize = 256
	}
	if s.CacheTTL == 0 {
		s.CacheTTL = 3600
	}
}

// Validate checks invariants after defaults and environment overlays.
func (s *Settings) Validate() error {
	if s.ClientID == "" || s.ClientSecret == "" {
		return &ConfigError{Message: "client_id and client_secret are required (config file or TUNEDL_CLIENT_ID/TUNEDL_CLIENT_SECRET)"}
	}
	if s.Threads < 1 || s.Threads > maxThreads {
		return &ConfigError{Message: fmt.Sprintf("threads must be between 1 and %d, got %d", maxThreads, s.Threads)}
	}
	if !transcode.ValidBitrate(s.Bitrate) {
		return &ConfigError{Message: fmt.Sprintf("bitrate must be one of %v, got %q", transcode.Bitrates, s.Bitrate)}
	}
	switch s.Overwrite {
	case OverwriteSkip, OverwriteForce:
	default:
		return &ConfigError{Message: fmt.Sprintf("overwrite must be %q or %q, got %q", OverwriteSkip, OverwriteForce, s.Overwrite)}
	}
	switch s.TopTracks {
	case 0, 10, 25:
	default:
		return &ConfigError{Message: fmt.Sprintf("top_tracks must be 10, 25, or 0 for the full list, got %d", s.TopTracks)}
	}
	return nil
}

// SkipExisting reports whether existing destination files bypass acquisition.
func (s *Settings) SkipExisting() bool {
	return s.Overwrite == OverwriteSkip
}

// ToolTimeout returns the external-tool timeout as a duration.
func (s *Settings) ToolTimeout() time.Duration {
	return time.Duration(s.ToolTimeoutMinutes) * time.Minute
}
