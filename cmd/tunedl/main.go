package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/tunedl/tunedl/download"
	"github.com/tunedl/tunedl/download/audio"
	"github.com/tunedl/tunedl/download/config"
	"github.com/tunedl/tunedl/download/logging"
	"github.com/tunedl/tunedl/download/scheduler"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	outputDir := flag.String("output", "", "output directory (overrides config)")
	threads := flag.Int("threads", 0, "worker count, 1-4 (overrides config)")
	bitrate := flag.String("bitrate", "", "output bitrate: 320k, 192k, 128k, 96k (overrides config)")
	overwrite := flag.Bool("overwrite", false, "re-download tracks whose files already exist")
	topTracks := flag.Int("top", 0, "artist top-tracks limit: 10, 25, or 0 for full list (overrides config)")
	quiet := flag.Bool("quiet", false, "suppress per-track progress output")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	// Credentials may live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunedl: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, *outputDir, *threads, *bitrate, *overwrite, *topTracks)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "tunedl: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogPath, "tunedl")
	if err != nil {
		log.Printf("WARN: log_file_unavailable path=%s error=%v", cfg.LogPath, err)
		logger = logging.Nop()
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := download.NewService(cfg, logger)
	if !*quiet {
		svc.SetProgressObserver(func(taskID string, p audio.Progress) {
			fmt.Printf("\r[%s] %5.1f%% %s %s  ", taskID[:8], p.Percent, p.Rate, p.ETA)
		})
	}

	counts, err := svc.Run(ctx, input)
	if !*quiet {
		fmt.Println()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tunedl: %v\n", err)
	} else {
		renderSummary(os.Stdout, counts)
	}
	os.Exit(exitCode(err))
}

// exitCode maps the run outcome to the process exit status. Per-track
// failures are already reported in the summary; only batch-fatal errors
// (unsupported input, auth, catalog, empty result) fail the run.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func applyFlagOverrides(cfg *config.Settings, outputDir string, threads int, bitrate string, overwrite bool, topTracks int) {
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if threads != 0 {
		cfg.Threads = threads
	}
	if bitrate != "" {
		cfg.Bitrate = bitrate
	}
	if overwrite {
		cfg.Overwrite = config.OverwriteForce
	}
	if topTracks != 0 {
		cfg.TopTracks = topTracks
	}
}

func renderSummary(out io.Writer, counts scheduler.Counts) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Status", "Tracks"})
	t.AppendRows([]table.Row{
		{"Succeeded", counts.Succeeded},
		{"Skipped (existing)", counts.Skipped},
		{"Failed", counts.Failed},
	})
	t.AppendFooter(table.Row{"Total", counts.Total()})
	t.SetStyle(table.StyleLight)
	t.Render()
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: tunedl [flags] <url>

Downloads the tracks behind a catalog URL (track, album, playlist, or
artist top-tracks) as tagged MP3 files.

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Credentials come from the config file, a .env file, or the
%s / %s environment variables.
`, config.EnvClientID, config.EnvClientSecret)
}
