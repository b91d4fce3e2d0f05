package ffmpeg

import (
	"errors"
	"regexp"
)

// ErrNoVolumeData is returned when ffmpeg finished but volumedetect printed
// no mean_volume line, typically because no audio frames were decoded.
var ErrNoVolumeData = errors.New("volumedetect produced no measurements")

// Pre-compiled regexes for the volumedetect summary lines, e.g.
//
//	[Parsed_volumedetect_0 @ 0x55d0c8] mean_volume: -27.3 dB
//	[Parsed_volumedetect_0 @ 0x55d0c8] histogram_12db: 152
var (
	reMeanVolume = regexp.MustCompile(`mean_volume:\s*(\S+) dB`)
	reMaxVolume  = regexp.MustCompile(`max_volume:\s*(\S+) dB`)
	reNSamples   = regexp.MustCompile(`n_samples:\s*(\d+)`)
	reHistogram  = regexp.MustCompile(`histogram_(\d+)db:\s*(\d+)`)
)
