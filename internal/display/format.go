package display

import (
	"fmt"
	"math"
	"strconv"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBitrate returns a short label for a rate in bits/sec
// (e.g. "192 kbps", "16.2 Mbps").
func FormatBitrate(bps int64) string {
	switch {
	case bps < 1000:
		return fmt.Sprintf("%d bps", bps)
	case bps < 1_000_000:
		return fmt.Sprintf("%d kbps", bps/1000)
	default:
		return fmt.Sprintf("%.1f Mbps", float64(bps)/1e6)
	}
}

// FormatDuration renders seconds as H:MM:SS.ss, matching ffmpeg's own
// Duration line.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "unknown"
	}
	cs := int64(math.Round(seconds * 100))
	h := cs / 360000
	m := cs / 6000 % 60
	s := float64(cs%6000) / 100
	return fmt.Sprintf("%d:%02d:%05.2f", h, m, s)
}

// FormatFrameRate renders fps with at most three decimals and no trailing
// zeros ("25 fps", "29.97 fps").
func FormatFrameRate(fps float64) string {
	return strconv.FormatFloat(math.Round(fps*1000)/1000, 'f', -1, 64) + " fps"
}

// FormatSampleRate renders Hz as kHz ("48 kHz", "44.1 kHz").
func FormatSampleRate(hz int) string {
	return strconv.FormatFloat(float64(hz)/1000, 'f', -1, 64) + " kHz"
}

// FormatDecibels renders a dBFS level; digital silence is "-inf dB".
func FormatDecibels(db float64) string {
	if math.IsInf(db, -1) {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}

// FormatChannels names common layouts by count.
func FormatChannels(n int) string {
	switch n {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%d ch", n)
	}
}
