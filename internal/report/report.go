// Package report turns an Extractor into a presentation record and renders
// records as text, JSON or YAML.
//
// Build reads every accessor exactly once. Fields the file does not carry
// (MissingStreamError, MissingFieldError) become absent values, never zero.
// Fields that are present but unparseable are absent too, with the parse
// error kept in Notes.
package report

import (
	"errors"
	"math"

	"github.com/backmassage/vidmeta/internal/ffmpeg"
	"github.com/backmassage/vidmeta/internal/media"
)

// Report is everything known about one file.
type Report struct {
	Path          string   `json:"path" yaml:"path"`
	FormatName    string   `json:"format_name,omitempty" yaml:"format_name,omitempty"`
	Duration      *float64 `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	FileSize      *int64   `json:"file_size_bytes,omitempty" yaml:"file_size_bytes,omitempty"`
	FormatBitRate *int64   `json:"bit_rate,omitempty" yaml:"bit_rate,omitempty"`
	Video         *Video   `json:"video,omitempty" yaml:"video,omitempty"`
	Audio         *Audio   `json:"audio,omitempty" yaml:"audio,omitempty"`
	VideoTracks   int      `json:"video_tracks" yaml:"video_tracks"`
	AudioTracks   int      `json:"audio_tracks" yaml:"audio_tracks"`
	Volume        *Volume  `json:"volume,omitempty" yaml:"volume,omitempty"`
	Notes         []string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Video describes the first video stream.
type Video struct {
	Codec       string   `json:"codec,omitempty" yaml:"codec,omitempty"`
	Width       int      `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int      `json:"height,omitempty" yaml:"height,omitempty"`
	FrameRate   *float64 `json:"frame_rate,omitempty" yaml:"frame_rate,omitempty"`
	AspectRatio string   `json:"aspect_ratio,omitempty" yaml:"aspect_ratio,omitempty"`
	BitRate     *int64   `json:"bit_rate,omitempty" yaml:"bit_rate,omitempty"`
}

// Audio describes the first audio stream.
type Audio struct {
	Codec      string `json:"codec,omitempty" yaml:"codec,omitempty"`
	BitRate    *int64 `json:"bit_rate,omitempty" yaml:"bit_rate,omitempty"`
	SampleRate *int   `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	BitDepth   *int   `json:"bit_depth,omitempty" yaml:"bit_depth,omitempty"`
	Channels   *int   `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// Volume is the volumedetect summary. Levels are nil for digital silence,
// which has no finite dBFS value.
type Volume struct {
	MeanDB  *float64 `json:"mean_volume_db" yaml:"mean_volume_db"`
	MaxDB   *float64 `json:"max_volume_db" yaml:"max_volume_db"`
	Samples int64    `json:"n_samples" yaml:"n_samples"`
	Silent  bool     `json:"silent,omitempty" yaml:"silent,omitempty"`

	// Histogram is loudest bin first.
	Histogram []ffmpeg.HistogramBin `json:"histogram,omitempty" yaml:"histogram,omitempty"`
}

// Build reads ex into a Report.
func Build(ex *media.Extractor) Report {
	r := Report{
		Path:        ex.Path(),
		FormatName:  ex.FormatName(),
		Duration:    ptr(ex.Duration()),
		FileSize:    ptr(ex.FileSize()),
		VideoTracks: len(ex.VideoStreams()),
		AudioTracks: len(ex.AudioStreams()),
	}
	r.FormatBitRate = field(&r, ex.FormatBitRate)

	if codec, err := ex.VideoCodec(); !isStreamMissing(err) {
		v := &Video{Codec: value(&r, codec, err)}
		if res, err := ex.Resolution(); err == nil {
			v.Width, v.Height = res.Width, res.Height
		} else {
			r.note(err)
		}
		v.FrameRate = field(&r, ex.FrameRate)
		aspect, err := ex.AspectRatio()
		v.AspectRatio = value(&r, aspect, err)
		v.BitRate = field(&r, ex.VideoBitRate)
		r.Video = v
	}

	if codec, err := ex.AudioCodec(); !isStreamMissing(err) {
		a := &Audio{Codec: value(&r, codec, err)}
		a.BitRate = field(&r, ex.AudioBitRate)
		a.SampleRate = field(&r, ex.AudioSampleRate)
		a.BitDepth = field(&r, ex.AudioBitDepth)
		a.Channels = field(&r, ex.AudioChannels)
		r.Audio = a
	}
	return r
}

// Failed returns the report for a file that could not be probed.
func Failed(path string, err error) Report {
	return Report{Path: path, Error: err.Error()}
}

// WithVolume attaches volumedetect stats.
func (r *Report) WithVolume(s *ffmpeg.VolumeStats) {
	v := &Volume{Samples: s.Samples}
	if len(s.Histogram) > 0 {
		v.Histogram = append([]ffmpeg.HistogramBin(nil), s.Histogram...)
	}
	if !math.IsInf(s.MeanVolume, 0) && !math.IsNaN(s.MeanVolume) {
		v.MeanDB = ptr(s.MeanVolume)
	} else {
		v.Silent = true
	}
	if !math.IsInf(s.MaxVolume, 0) && !math.IsNaN(s.MaxVolume) {
		v.MaxDB = ptr(s.MaxVolume)
	}
	r.Volume = v
}

// note records a malformed-field error. Missing fields are the file's own
// business and are not noted.
func (r *Report) note(err error) {
	var mal *media.MalformedFieldError
	if errors.As(err, &mal) {
		r.Notes = append(r.Notes, mal.Error())
	}
}

func field[T any](r *Report, get func() (T, error)) *T {
	v, err := get()
	if err != nil {
		r.note(err)
		return nil
	}
	return &v
}

func value[T any](r *Report, v T, err error) T {
	if err != nil {
		r.note(err)
		var zero T
		return zero
	}
	return v
}

func isStreamMissing(err error) bool {
	var mse *media.MissingStreamError
	return errors.As(err, &mse)
}

func ptr[T any](v T) *T { return &v }
