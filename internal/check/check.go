// Package check provides system diagnostics (the check subcommand) and
// pre-run dependency validation (CheckDeps) for ffprobe and ffmpeg.
package check

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/vidmeta/internal/config"
	"github.com/backmassage/vidmeta/internal/ffmpeg"
	"github.com/backmassage/vidmeta/internal/media"
	"github.com/backmassage/vidmeta/internal/probe"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfprobeNotFound = errors.New("ffprobe not found")
	ErrFfmpegNotFound  = errors.New("ffmpeg not found")
)

// selfTestTimeout bounds each subprocess in the self-test.
const selfTestTimeout = 20 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive check flow: versions of ffprobe and ffmpeg,
// volumedetect availability, and an end-to-end probe of a generated clip.
// It logs every result and reports whether all checks passed.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkVersion(log, "ffprobe", cfg.FfprobePath)
	hasFfmpeg := checkVersion(log, "ffmpeg", cfg.FfmpegPath)
	ok = ok && hasFfmpeg
	if hasFfmpeg {
		ok = checkVolumedetect(log, cfg.FfmpegPath) && ok
	}
	if ok {
		ok = checkSelfTest(ctx, cfg, log)
	}
	return ok
}

// checkVersion verifies bin resolves to an executable and logs its version
// string.
func checkVersion(log Logger, name, bin string) bool {
	path, err := exec.LookPath(bin)
	if err != nil {
		log.Error("%s not found (%s)", name, bin)
		return false
	}
	out, err := exec.Command(path, "-version").Output()
	if err != nil {
		log.Warn("%s found at %s but -version failed: %v", name, path, err)
		return false
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
	return true
}

// checkVolumedetect looks for the volumedetect filter in ffmpeg's filter list.
func checkVolumedetect(log Logger, bin string) bool {
	out, err := exec.Command(bin, "-hide_banner", "-filters").Output()
	if err != nil {
		log.Warn("Could not list filters: %v", err)
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "volumedetect" {
			log.Success("volumedetect filter available")
			return true
		}
	}
	log.Error("volumedetect filter not compiled into ffmpeg")
	return false
}

// checkSelfTest generates a short clip with lavfi, opens it through the
// metadata facade, and measures its volume.
func checkSelfTest(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("Running self-test...")
	dir, err := os.MkdirTemp(cfg.TempDir, "vidmeta-check-")
	if err != nil {
		log.Error("Cannot create temp dir: %v", err)
		return false
	}
	defer os.RemoveAll(dir)

	clip := filepath.Join(dir, "selftest.mkv")
	res := ffmpeg.Execute(ctx, selfTestArgs(cfg.FfmpegPath, clip), selfTestTimeout, false)
	if res.Err != nil {
		log.Error("Test clip generation failed: %v", res.Err)
		return false
	}

	prober := probe.Runner{BinPath: cfg.FfprobePath, Timeout: cfg.ProbeTimeout}
	ex, err := media.Open(ctx, prober, clip, media.Options{RequireAudio: true})
	if err != nil {
		log.Error("Probe of test clip failed: %v", err)
		return false
	}
	dims, err := ex.Resolution()
	if err != nil {
		log.Error("Test clip resolution unreadable: %v", err)
		return false
	}
	fps, err := ex.FrameRate()
	if err != nil {
		log.Error("Test clip frame rate unreadable: %v", err)
		return false
	}
	log.Success("ffprobe reads %s at %.0f fps", dims, fps)

	stats, err := ffmpeg.DetectVolume(ctx, cfg, clip)
	if err != nil {
		log.Error("volumedetect failed on test clip: %v", err)
		return false
	}
	log.Success("volumedetect reports mean %.1f dB", stats.MeanVolume)
	return true
}

// CheckDeps is the pre-run validation: it verifies that ffprobe resolves
// and, when needFfmpeg is set, that ffmpeg does too. Returns a sentinel
// error on failure.
func CheckDeps(cfg *config.Config, needFfmpeg bool) error {
	if _, err := exec.LookPath(cfg.FfprobePath); err != nil {
		return ErrFfprobeNotFound
	}
	if needFfmpeg {
		if _, err := exec.LookPath(cfg.FfmpegPath); err != nil {
			return ErrFfmpegNotFound
		}
	}
	return nil
}

// selfTestArgs returns the ffmpeg arguments for a 0.5 s clip with one
// video and one audio stream.
func selfTestArgs(bin, out string) []string {
	return []string{
		bin, "-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=size=160x120:rate=25:duration=0.5",
		"-f", "lavfi", "-i", "sine=frequency=1000:sample_rate=48000:duration=0.5",
		"-c:v", "mpeg4", "-c:a", "pcm_s16le", "-shortest",
		out,
	}
}
