package config

// This file binds CLI flags to a Config. Flags are captured into a Flags
// value first and copied onto the Config only when the user actually set
// them, so that file and environment values hold otherwise.

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Flags holds raw flag values until [Flags.Apply] runs.
type Flags struct {
	ConfigPath string

	color   string
	noColor bool
	verbose bool
	logFile string

	ffprobePath   string
	ffmpegPath    string
	probeTimeout  time.Duration
	volumeTimeout time.Duration
	requireAudio  bool
	format        string
	tempDir       string
}

// BindGlobal registers the flags shared by every subcommand.
func (f *Flags) BindGlobal(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "YAML config file")
	fs.StringVar(&f.color, "color", string(ColorAuto), "Color output: auto | always | never")
	fs.BoolVar(&f.noColor, "no-color", false, "Same as --color=never")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose output")
	fs.StringVarP(&f.logFile, "log", "l", "", "Append logs to file")
	fs.StringVar(&f.ffprobePath, "ffprobe", "", "ffprobe binary (default: ffprobe on PATH)")
	fs.StringVar(&f.ffmpegPath, "ffmpeg", "", "ffmpeg binary (default: ffmpeg on PATH)")
}

// BindProbe registers the flags used by the probe subcommand.
func (f *Flags) BindProbe(fs *pflag.FlagSet) {
	fs.DurationVarP(&f.probeTimeout, "timeout", "t", 0, "ffprobe deadline per file (e.g. 30s)")
	fs.BoolVar(&f.requireAudio, "require-audio", false, "Fail when a file has no audio stream")
	fs.StringVarP(&f.format, "format", "f", "", "Report format: text | json | yaml")
	fs.StringVar(&f.tempDir, "temp-dir", "", "Directory for materializing stdin input")
}

// BindVolume registers the flags used by the volume subcommand: the probe
// flags plus the volumedetect deadline.
func (f *Flags) BindVolume(fs *pflag.FlagSet) {
	f.BindProbe(fs)
	fs.DurationVar(&f.volumeTimeout, "volume-timeout", 0, "ffmpeg volumedetect deadline (e.g. 5m)")
}

// Apply copies every flag the user set in fs onto cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) error {
	if fs.Changed("color") {
		mode, err := parseColorMode(f.color)
		if err != nil {
			return err
		}
		cfg.ColorMode = mode
	}
	if fs.Changed("no-color") && f.noColor {
		cfg.ColorMode = ColorNever
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fs.Changed("log") {
		cfg.LogFile = f.logFile
	}
	if fs.Changed("ffprobe") {
		cfg.FfprobePath = f.ffprobePath
	}
	if fs.Changed("ffmpeg") {
		cfg.FfmpegPath = f.ffmpegPath
	}
	if fs.Changed("timeout") {
		cfg.ProbeTimeout = f.probeTimeout
	}
	if fs.Changed("volume-timeout") {
		cfg.VolumeTimeout = f.volumeTimeout
	}
	if fs.Changed("require-audio") {
		cfg.RequireAudio = f.requireAudio
	}
	if fs.Changed("format") {
		cfg.OutputFormat = OutputFormat(strings.ToLower(f.format))
	}
	if fs.Changed("temp-dir") {
		cfg.TempDir = f.tempDir
	}
	return nil
}

func parseColorMode(s string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(s)) {
	case ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	}
	return "", fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
}
