package ffmpeg

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/backmassage/vidmeta/internal/config"
)

// HistogramBin counts samples whose peak is Decibels below full scale.
type HistogramBin struct {
	Decibels int   `json:"db" yaml:"db"`
	Count    int64 `json:"count" yaml:"count"`
}

// VolumeStats is the volumedetect summary for one audio stream. Levels are
// in dBFS; digital silence reports -Inf in MeanVolume and MaxVolume.
type VolumeStats struct {
	MeanVolume float64        `json:"mean_volume_db" yaml:"mean_volume_db"`
	MaxVolume  float64        `json:"max_volume_db" yaml:"max_volume_db"`
	Samples    int64          `json:"n_samples" yaml:"n_samples"`
	Histogram  []HistogramBin `json:"histogram,omitempty" yaml:"histogram,omitempty"`
}

// DetectVolume measures the loudness of path's first audio stream using
// cfg.FfmpegPath under cfg.VolumeTimeout.
func DetectVolume(ctx context.Context, cfg *config.Config, path string) (*VolumeStats, error) {
	res := Execute(ctx, BuildVolumeDetect(cfg, path), cfg.VolumeTimeout, cfg.Verbose)
	if res.Err != nil {
		return nil, fmt.Errorf("volumedetect %s: %w", path, res.Err)
	}
	stats, err := ParseVolume(res.Stderr)
	if err != nil {
		return nil, fmt.Errorf("volumedetect %s: %w", path, err)
	}
	return stats, nil
}

// ParseVolume extracts the volumedetect summary from ffmpeg stderr.
// Exported for testing without a real ffmpeg binary.
func ParseVolume(stderr string) (*VolumeStats, error) {
	m := reMeanVolume.FindStringSubmatch(stderr)
	if m == nil {
		return nil, ErrNoVolumeData
	}
	stats := &VolumeStats{}

	var err error
	if stats.MeanVolume, err = strconv.ParseFloat(m[1], 64); err != nil {
		return nil, fmt.Errorf("mean_volume %q: %w", m[1], err)
	}
	if m := reMaxVolume.FindStringSubmatch(stderr); m != nil {
		if stats.MaxVolume, err = strconv.ParseFloat(m[1], 64); err != nil {
			return nil, fmt.Errorf("max_volume %q: %w", m[1], err)
		}
	}
	if m := reNSamples.FindStringSubmatch(stderr); m != nil {
		if stats.Samples, err = strconv.ParseInt(m[1], 10, 64); err != nil {
			return nil, fmt.Errorf("n_samples %q: %w", m[1], err)
		}
	}

	for _, m := range reHistogram.FindAllStringSubmatch(stderr, -1) {
		db, err1 := strconv.Atoi(m[1])
		n, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		stats.Histogram = append(stats.Histogram, HistogramBin{Decibels: db, Count: n})
	}
	sort.Slice(stats.Histogram, func(i, j int) bool {
		return stats.Histogram[i].Decibels < stats.Histogram[j].Decibels
	})
	return stats, nil
}
