// Command vidmeta is the CLI entrypoint for the vidmeta media metadata
// inspector.
//
// It loads configuration (defaults, YAML file, VIDMETA_* environment, then
// flags), and runs one of the probe, volume, check or version subcommands.
// Reports go to stdout; log lines go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/vidmeta/internal/check"
	"github.com/backmassage/vidmeta/internal/config"
	"github.com/backmassage/vidmeta/internal/display"
	"github.com/backmassage/vidmeta/internal/ffmpeg"
	"github.com/backmassage/vidmeta/internal/logging"
	"github.com/backmassage/vidmeta/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "0.1.0"
	commit  = "unknown"
)

// exitCode ends the process with a status but no further message; the
// reason has already been logged.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintf(os.Stderr, "vidmeta: %v\n", err)
	return 1
}

// app carries state shared by the subcommands.
type app struct {
	flags config.Flags
	cfg   config.Config
	log   *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "vidmeta",
		Short: "Inspect video file metadata with ffprobe",
		Long: `vidmeta probes video files with ffprobe and reports container, video and
audio properties: duration, size, resolution, frame rate, codecs, bit rates,
sample rate, bit depth and channels. Fields a file does not carry are shown
as unknown rather than zero.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.flags.BindGlobal(root.PersistentFlags())

	root.AddCommand(a.probeCmd(), a.volumeCmd(), a.checkCmd(), versionCmd())
	return root
}

func (a *app) probeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <file|dir|->...",
		Short: "Report metadata for files, directories, or stdin (-)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args, false)
		},
	}
	a.flags.BindProbe(cmd.Flags())
	return cmd
}

func (a *app) volumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volume <file|dir|->...",
		Short: "Report metadata plus mean and max volume of the first audio stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, args, true)
		},
	}
	a.flags.BindVolume(cmd.Flags())
	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffprobe and ffmpeg and run a short self-test",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.log.Close()

			display.PrintBanner(os.Stderr, version)
			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()
			if !check.RunCheck(ctx, &a.cfg, a.log) {
				return exitCode(1)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vidmeta %s (%s)\n", version, commit)
		},
	}
}

// setup builds the effective config and the logger. Bootstrap errors are
// returned as-is since no logger exists yet.
func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.DefaultConfig()
	if err := config.Load(a.flags.ConfigPath, &a.cfg); err != nil {
		return err
	}
	if err := a.flags.Apply(cmd.Flags(), &a.cfg); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.NewLogger(&a.cfg)
	if err != nil {
		return err
	}
	// Stdout carries report data only.
	log.SetOutput(os.Stderr, os.Stderr)
	a.log = log
	return nil
}

// signalContext cancels on SIGINT/SIGTERM so the batch stops between files.
func (a *app) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			a.log.Warn("Received interrupt, finishing current file...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

func (a *app) runBatch(cmd *cobra.Command, targets []string, volume bool) error {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer a.log.Close()

	// Fail fast if the external tools are unavailable.
	if err := check.CheckDeps(&a.cfg, volume); err != nil {
		a.log.Error("%v (set --ffprobe/--ffmpeg or run 'vidmeta check')", err)
		return exitCode(1)
	}

	ctx, cancel := a.signalContext(cmd.Context())
	defer cancel()

	b := pipeline.NewBatch(&a.cfg, a.log)
	if volume {
		b.Volume = ffmpeg.DetectVolume
	}
	stats, err := b.Run(ctx, targets, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if !stats.OK() || ctx.Err() != nil {
		return exitCode(1)
	}
	return nil
}
