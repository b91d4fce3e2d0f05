package ffmpeg

import (
	"github.com/backmassage/vidmeta/internal/config"
)

// BuildVolumeDetect constructs the full argument slice, binary first, for a
// volumedetect pass over the first audio stream of path. The filter reports
// at info level, so the loglevel is pinned there regardless of verbosity.
func BuildVolumeDetect(cfg *config.Config, path string) []string {
	bin := cfg.FfmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	return []string{
		bin, "-hide_banner", "-nostdin",
		"-loglevel", "info",
		"-i", path,
		// First audio track, matching the metadata facade's selection.
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-af", "volumedetect",
		"-f", "null", "-",
	}
}
