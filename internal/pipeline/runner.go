package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/backmassage/vidmeta/internal/config"
	"github.com/backmassage/vidmeta/internal/display"
	"github.com/backmassage/vidmeta/internal/ffmpeg"
	"github.com/backmassage/vidmeta/internal/logging"
	"github.com/backmassage/vidmeta/internal/media"
	"github.com/backmassage/vidmeta/internal/probe"
	"github.com/backmassage/vidmeta/internal/report"
	"github.com/backmassage/vidmeta/internal/scratch"
)

// StdinTarget is the target name that reads media from standard input.
const StdinTarget = "-"

var errStdinTwice = errors.New("stdin can only be read once")

// VolumeFunc measures a file's audio levels. [ffmpeg.DetectVolume]
// satisfies it.
type VolumeFunc func(ctx context.Context, cfg *config.Config, path string) (*ffmpeg.VolumeStats, error)

// Batch holds the collaborators for one run. Construct with [NewBatch] and
// override fields in tests.
type Batch struct {
	Cfg    *config.Config
	Log    *logging.Logger
	Prober media.Prober
	Stdin  io.Reader

	// Volume, when set, runs after a successful probe. Files without an
	// audio stream then fail instead of reporting.
	Volume VolumeFunc

	// Walk lists the media files under a directory target. Nil means
	// [Discover].
	Walk func(dir string) ([]string, error)
}

// target is one expanded input. err is set when a directory could not be
// walked; the directory then reports as a single failed entry.
type target struct {
	path string
	err  error
}

// NewBatch wires the real ffprobe runner and stdin.
func NewBatch(cfg *config.Config, log *logging.Logger) *Batch {
	return &Batch{
		Cfg:    cfg,
		Log:    log,
		Prober: probe.Runner{BinPath: cfg.FfprobePath, Timeout: cfg.ProbeTimeout},
		Stdin:  os.Stdin,
		Walk:   Discover,
	}
}

// Run is the top-level batch entry point. It probes every target with the
// real ffprobe, renders reports to out, and returns aggregate stats.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, targets []string, out io.Writer) (RunStats, error) {
	return NewBatch(cfg, log).Run(ctx, targets, out)
}

// Run expands targets, extracts each file sequentially, renders all
// reports to out in the configured format, and returns aggregate stats.
// The error is non-nil only when rendering fails; per-file failures are
// counted in RunStats.Failed and carried as error reports.
func (b *Batch) Run(ctx context.Context, targets []string, out io.Writer) (RunStats, error) {
	var stats RunStats

	files := b.expand(targets)
	stats.Total = len(files)
	if stats.Total > 1 {
		b.Log.Info("Found %d files", stats.Total)
	}

	reports := make([]report.Report, 0, len(files))
	stdinUsed := false
	for i, t := range files {
		if ctx.Err() != nil {
			b.Log.Warn("Interrupted")
			break
		}
		stats.Current = i + 1

		path := t.path
		var r report.Report
		err := t.err
		if err != nil {
			err = fmt.Errorf("discover media: %w", err)
		} else if path == StdinTarget {
			if stdinUsed {
				err = errStdinTwice
			} else {
				stdinUsed = true
				r, err = b.processStdin(ctx)
			}
		} else {
			r, err = b.processFile(ctx, path)
		}

		if err != nil {
			b.Log.Error("%s: %v", path, err)
			reports = append(reports, report.Failed(path, err))
			stats.Failed++
			continue
		}
		if r.FileSize != nil {
			stats.TotalBytes += *r.FileSize
		}
		stats.Probed++
		reports = append(reports, r)
	}

	stats.Outliers = flagOutliers(b.Log, reports)
	if stats.Total > 1 {
		logSummary(b.Log, &stats)
	}

	if err := report.Render(out, reports, b.Cfg.OutputFormat); err != nil {
		return stats, fmt.Errorf("render reports: %w", err)
	}
	return stats, nil
}

// expand turns targets into an ordered list. Directories are walked;
// everything else passes through so a missing path surfaces as a failed
// report rather than vanishing. A directory that cannot be walked is kept
// as one target carrying the walk error.
func (b *Batch) expand(targets []string) []target {
	walk := b.Walk
	if walk == nil {
		walk = Discover
	}
	var files []target
	for _, t := range targets {
		if t == StdinTarget {
			files = append(files, target{path: t})
			continue
		}
		fi, err := os.Stat(t)
		if err != nil || !fi.IsDir() {
			files = append(files, target{path: t})
			continue
		}
		found, err := walk(t)
		if err != nil {
			files = append(files, target{path: t, err: err})
			continue
		}
		if len(found) == 0 {
			b.Log.Warn("No media files found in %s", t)
		}
		for _, f := range found {
			files = append(files, target{path: f})
		}
	}
	return files
}

// processFile handles one media file: open → report → optional volume.
func (b *Batch) processFile(ctx context.Context, path string) (report.Report, error) {
	b.Log.Debug(b.Cfg.Verbose, "Probing %s", path)

	ex, err := media.Open(ctx, b.Prober, path, media.Options{RequireAudio: b.Cfg.RequireAudio})
	if err != nil {
		return report.Report{}, err
	}
	r := report.Build(ex)

	if b.Volume != nil {
		if len(ex.AudioStreams()) == 0 {
			return report.Report{}, &media.MissingStreamError{Kind: media.KindAudio}
		}
		stats, err := b.Volume(ctx, b.Cfg, path)
		if err != nil {
			return report.Report{}, err
		}
		r.WithVolume(stats)
	}

	b.Log.Debug(b.Cfg.Verbose, "  %s, %s", display.FormatDuration(ex.Duration()), display.FormatBytes(ex.FileSize()))
	return r, nil
}

// processStdin spools stdin to a scratch file, processes it, and removes it.
func (b *Batch) processStdin(ctx context.Context) (report.Report, error) {
	if b.Stdin == nil {
		return report.Report{}, errors.New("no stdin available")
	}
	var r report.Report
	err := scratch.With(b.Stdin, b.Cfg.TempDir, "", func(f *scratch.File) error {
		b.Log.Debug(b.Cfg.Verbose, "Spooled %s of stdin to %s", display.FormatBytes(f.Size()), filepath.Base(f.Path()))
		var err error
		r, err = b.processFile(ctx, f.Path())
		return err
	})
	if err != nil {
		return report.Report{}, err
	}
	r.Path = StdinTarget
	return r, nil
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d probed, %d failed of %d", stats.Probed, stats.Failed, stats.Total)
	log.Info("  Total size: %s", display.FormatBytes(stats.TotalBytes))
	if stats.Failed > 0 {
		log.Warn("  %d file(s) could not be read", stats.Failed)
	} else if stats.Current == stats.Total {
		log.Success("  All files probed")
	}
}
