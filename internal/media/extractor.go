// Package media is the metadata facade over a single probed file.
//
// An [Extractor] is built by [Open], which probes the file exactly once.
// Every accessor afterwards is a pure read of that snapshot: no I/O, no
// caching across instances, identical results on repeated calls.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/vidmeta/internal/probe"
)

// Prober runs the external container probe. [probe.Runner] satisfies it.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.ProbeResult, error)
}

// Options tunes construction.
type Options struct {
	// RequireAudio makes Open fail when the file has no audio stream.
	// Otherwise audio accessors report MissingStreamError individually.
	RequireAudio bool
}

// Resolution is a pair of strictly positive pixel dimensions.
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (r Resolution) String() string { return fmt.Sprintf("%dx%d", r.Width, r.Height) }

// Extractor exposes typed accessors over one probe of one file.
type Extractor struct {
	path     string
	format   probe.FormatInfo
	duration float64
	size     int64
	video    *probe.Stream
	audio    *probe.Stream
	videos   []probe.Stream
	audios   []probe.Stream
}

var (
	errEmptyFile = errors.New("file is empty")
	errIsDir     = errors.New("is a directory")
	errNoResult  = errors.New("prober returned no result")
)

// Open stats path, probes it once with p, and validates the snapshot.
// Every failure is a *ProbeError (or *ProbeTimeoutError); a missing
// required stream is reported as a *ProbeError wrapping *MissingStreamError.
func Open(ctx context.Context, p Prober, path string, opts Options) (*Extractor, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &ProbeError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, &ProbeError{Path: path, Err: errIsDir}
	}
	if fi.Size() == 0 {
		return nil, &ProbeError{Path: path, Err: errEmptyFile}
	}

	res, err := p.Probe(ctx, path)
	if err != nil {
		var te *probe.TimeoutError
		if errors.As(err, &te) {
			return nil, &ProbeTimeoutError{Path: path, Timeout: te.Timeout}
		}
		return nil, &ProbeError{Path: path, Err: err}
	}
	if res == nil {
		return nil, &ProbeError{Path: path, Err: errNoResult}
	}

	ex, err := build(path, res, fi.Size(), opts)
	if err != nil {
		return nil, &ProbeError{Path: path, Err: err}
	}
	return ex, nil
}

func build(path string, res *probe.ProbeResult, statSize int64, opts Options) (*Extractor, error) {
	ex := &Extractor{
		path:   path,
		format: res.Format,
		videos: res.StreamsOfType("video"),
		audios: res.StreamsOfType("audio"),
	}

	if res.Format.Duration == "" {
		return nil, &MissingFieldError{Kind: KindFormat, Field: "duration"}
	}
	d, err := strconv.ParseFloat(res.Format.Duration, 64)
	if err != nil || d < 0 {
		return nil, malformed(KindFormat, "duration", res.Format.Duration, err)
	}
	ex.duration = d

	// ffprobe reports the byte length it read; fall back to stat when the
	// demuxer leaves it out.
	ex.size = statSize
	if res.Format.Size != "" {
		n, err := strconv.ParseInt(res.Format.Size, 10, 64)
		if err != nil || n < 0 {
			return nil, malformed(KindFormat, "size", res.Format.Size, err)
		}
		ex.size = n
	}

	if ex.video = res.FirstOfType("video"); ex.video == nil {
		return nil, &MissingStreamError{Kind: KindVideo}
	}
	if ex.audio = res.FirstOfType("audio"); ex.audio == nil && opts.RequireAudio {
		return nil, &MissingStreamError{Kind: KindAudio}
	}
	return ex, nil
}

// Path returns the probed file path.
func (e *Extractor) Path() string { return e.path }

// Format returns the container-level section of the snapshot.
func (e *Extractor) Format() probe.FormatInfo { return e.format }

// VideoStreams returns every video track in container order (cover art
// excluded). Accessors read only the first.
func (e *Extractor) VideoStreams() []probe.Stream {
	return append([]probe.Stream(nil), e.videos...)
}

// AudioStreams returns every audio track in container order. Accessors
// read only the first.
func (e *Extractor) AudioStreams() []probe.Stream {
	return append([]probe.Stream(nil), e.audios...)
}

// --- Container ---

// Duration returns the container duration in seconds.
func (e *Extractor) Duration() float64 { return e.duration }

// FileSize returns the file size in bytes.
func (e *Extractor) FileSize() int64 { return e.size }

// FormatName returns ffprobe's short container name, e.g. "mov,mp4,m4a,3gp,3g2,mj2".
func (e *Extractor) FormatName() string { return e.format.FormatName }

// FormatBitRate returns the overall container bit rate in bits/sec.
func (e *Extractor) FormatBitRate() (int64, error) {
	return parseCount(KindFormat, "bit_rate", e.format.BitRate)
}

// --- Video ---

// Resolution returns the first video stream's coded dimensions.
func (e *Extractor) Resolution() (Resolution, error) {
	if e.video == nil {
		return Resolution{}, &MissingStreamError{Kind: KindVideo}
	}
	if e.video.Width <= 0 {
		return Resolution{}, malformed(KindVideo, "width", strconv.Itoa(e.video.Width), nil)
	}
	if e.video.Height <= 0 {
		return Resolution{}, malformed(KindVideo, "height", strconv.Itoa(e.video.Height), nil)
	}
	return Resolution{Width: e.video.Width, Height: e.video.Height}, nil
}

// FrameRate evaluates r_frame_rate as an exact rational. avg_frame_rate is
// used only when r_frame_rate is absent or ffprobe's unknown marker ("0/0"
// or a zero rate); an unparseable r_frame_rate is a MalformedFieldError.
func (e *Extractor) FrameRate() (float64, error) {
	if e.video == nil {
		return 0, &MissingStreamError{Kind: KindVideo}
	}

	fps, known, err := evalRate(e.video.RFrameRate)
	if err != nil {
		return 0, malformed(KindVideo, "r_frame_rate", e.video.RFrameRate, err)
	}
	if known {
		return fps, nil
	}

	fps, known, err = evalRate(e.video.AvgFrameRate)
	if err != nil {
		return 0, malformed(KindVideo, "avg_frame_rate", e.video.AvgFrameRate, err)
	}
	if known {
		return fps, nil
	}
	return 0, malformed(KindVideo, "r_frame_rate", e.video.RFrameRate, errUnknownRate)
}

// evalRate parses a frame-rate field. known is false for an absent value,
// "0/0" or a zero rate, which ffprobe emits when it cannot tell.
func evalRate(v string) (fps float64, known bool, err error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "0/0" {
		return 0, false, nil
	}
	fps, err = ParseRate(v)
	if err != nil {
		return 0, false, err
	}
	return fps, fps > 0, nil
}

// AspectRatio returns the display aspect ratio, e.g. "16:9".
func (e *Extractor) AspectRatio() (string, error) {
	if e.video == nil {
		return "", &MissingStreamError{Kind: KindVideo}
	}
	dar := e.video.DisplayAspectRatio
	if dar == "" || dar == "0:1" {
		return "", &MissingFieldError{Kind: KindVideo, Field: "display_aspect_ratio"}
	}
	return dar, nil
}

// VideoBitRate returns the first video stream's bit rate in bits/sec.
func (e *Extractor) VideoBitRate() (int64, error) {
	if e.video == nil {
		return 0, &MissingStreamError{Kind: KindVideo}
	}
	return parseCount(KindVideo, "bit_rate", e.video.BitRate)
}

// VideoCodec returns the first video stream's codec name, e.g. "h264".
func (e *Extractor) VideoCodec() (string, error) {
	if e.video == nil {
		return "", &MissingStreamError{Kind: KindVideo}
	}
	if e.video.CodecName == "" {
		return "", &MissingFieldError{Kind: KindVideo, Field: "codec_name"}
	}
	return e.video.CodecName, nil
}

// --- Audio ---

// AudioBitRate returns the first audio stream's bit rate in bits/sec.
func (e *Extractor) AudioBitRate() (int64, error) {
	if e.audio == nil {
		return 0, &MissingStreamError{Kind: KindAudio}
	}
	return parseCount(KindAudio, "bit_rate", e.audio.BitRate)
}

// AudioCodec returns the first audio stream's codec name, e.g. "aac".
func (e *Extractor) AudioCodec() (string, error) {
	if e.audio == nil {
		return "", &MissingStreamError{Kind: KindAudio}
	}
	if e.audio.CodecName == "" {
		return "", &MissingFieldError{Kind: KindAudio, Field: "codec_name"}
	}
	return e.audio.CodecName, nil
}

// AudioSampleRate returns the first audio stream's sample rate in Hz.
func (e *Extractor) AudioSampleRate() (int, error) {
	if e.audio == nil {
		return 0, &MissingStreamError{Kind: KindAudio}
	}
	n, err := parseCount(KindAudio, "sample_rate", e.audio.SampleRate)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, malformed(KindAudio, "sample_rate", e.audio.SampleRate, nil)
	}
	return int(n), nil
}

// AudioBitDepth returns bits per sample. Compressed codecs report 0 for
// bits_per_sample, so the decoder's bits_per_raw_sample is used when set.
func (e *Extractor) AudioBitDepth() (int, error) {
	if e.audio == nil {
		return 0, &MissingStreamError{Kind: KindAudio}
	}
	if e.audio.BitsPerSample > 0 {
		return e.audio.BitsPerSample, nil
	}
	if raw := e.audio.BitsPerRawSample; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, malformed(KindAudio, "bits_per_raw_sample", raw, err)
		}
		if n > 0 {
			return n, nil
		}
	}
	return 0, &MissingFieldError{Kind: KindAudio, Field: "bits_per_sample"}
}

// AudioChannels returns the first audio stream's channel count.
func (e *Extractor) AudioChannels() (int, error) {
	if e.audio == nil {
		return 0, &MissingStreamError{Kind: KindAudio}
	}
	if e.audio.Channels <= 0 {
		return 0, &MissingFieldError{Kind: KindAudio, Field: "channels"}
	}
	return e.audio.Channels, nil
}

// --- Field parsing ---

// parseCount parses a non-negative integer field. Absent fields are
// MissingFieldError, never zero.
func parseCount(kind StreamKind, field, value string) (int64, error) {
	if value == "" {
		return 0, &MissingFieldError{Kind: kind, Field: field}
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, malformed(kind, field, value, err)
	}
	return n, nil
}

func malformed(kind StreamKind, field, value string, err error) *MalformedFieldError {
	return &MalformedFieldError{Kind: kind, Field: field, Value: value, Err: err}
}
