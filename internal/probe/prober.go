package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// TimeoutError is returned by [Runner.Probe] when ffprobe does not finish
// before the deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ffprobe timed out after %s", e.Timeout)
}

// Runner executes ffprobe. The zero value runs "ffprobe" from PATH with no
// deadline beyond the caller's context.
type Runner struct {
	BinPath string
	Timeout time.Duration
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed result.
func (r Runner) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	bin := r.BinPath
	if bin == "" {
		bin = "ffprobe"
	}
	parent := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Don't hang on pipes held open by a killed ffprobe's children.
	cmd.WaitDelay = time.Second

	out, err := cmd.Output()
	// The caller's own cancellation or deadline is not our timeout.
	if perr := parent.Err(); perr != nil {
		return nil, fmt.Errorf("ffprobe: %w", perr)
	}
	if r.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &TimeoutError{Timeout: r.Timeout}
	}
	if err != nil {
		if msg := firstLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffprobe: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if raw.Format == nil && len(raw.Streams) == 0 {
		return nil, errors.New("ffprobe reported no format and no streams")
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  *ffprobeFormat  `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename       string            `json:"filename"`
	NbStreams      int               `json:"nb_streams"`
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	Tags           map[string]string `json:"tags"`
}

type ffprobeStream struct {
	Index              int               `json:"index"`
	CodecName          string            `json:"codec_name"`
	CodecType          string            `json:"codec_type"`
	Profile            string            `json:"profile"`
	PixFmt             string            `json:"pix_fmt"`
	Width              int               `json:"width"`
	Height             int               `json:"height"`
	RFrameRate         string            `json:"r_frame_rate"`
	AvgFrameRate       string            `json:"avg_frame_rate"`
	DisplayAspectRatio string            `json:"display_aspect_ratio"`
	BitRate            string            `json:"bit_rate"`
	Channels           int               `json:"channels"`
	ChannelLayout      string            `json:"channel_layout"`
	SampleRate         string            `json:"sample_rate"`
	BitsPerSample      int               `json:"bits_per_sample"`
	BitsPerRawSample   string            `json:"bits_per_raw_sample"`
	Disposition        map[string]int    `json:"disposition"`
	Tags               map[string]string `json:"tags"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{}
	if raw.Format != nil {
		pr.Format = convertFormat(raw.Format)
	}
	pr.Streams = make([]Stream, 0, len(raw.Streams))
	for i := range raw.Streams {
		pr.Streams = append(pr.Streams, convertStream(&raw.Streams[i]))
	}
	return pr
}

func convertFormat(f *ffprobeFormat) FormatInfo {
	return FormatInfo{
		Filename:       f.Filename,
		NbStreams:      f.NbStreams,
		FormatName:     f.FormatName,
		FormatLongName: f.FormatLongName,
		Duration:       clean(f.Duration),
		Size:           clean(f.Size),
		BitRate:        clean(f.BitRate),
		Tags:           f.Tags,
	}
}

func convertStream(s *ffprobeStream) Stream {
	return Stream{
		Index:              s.Index,
		CodecType:          s.CodecType,
		CodecName:          s.CodecName,
		Profile:            s.Profile,
		Width:              s.Width,
		Height:             s.Height,
		PixFmt:             s.PixFmt,
		RFrameRate:         clean(s.RFrameRate),
		AvgFrameRate:       clean(s.AvgFrameRate),
		DisplayAspectRatio: clean(s.DisplayAspectRatio),
		IsAttachedPic:      s.Disposition["attached_pic"] == 1,
		SampleRate:         clean(s.SampleRate),
		Channels:           s.Channels,
		ChannelLayout:      s.ChannelLayout,
		BitsPerSample:      s.BitsPerSample,
		BitsPerRawSample:   clean(s.BitsPerRawSample),
		BitRate:            streamBitRate(s),
		Language:           s.Tags["language"],
		IsDefault:          s.Disposition["default"] == 1,
		Tags:               s.Tags,
	}
}

// streamBitRate prefers the top-level bit_rate field. Matroska muxers
// usually omit it and record the measured rate in the BPS statistics tag.
func streamBitRate(s *ffprobeStream) string {
	if br := clean(s.BitRate); br != "" {
		return br
	}
	if bps := clean(s.Tags["BPS"]); bps != "" {
		if _, err := strconv.ParseInt(bps, 10, 64); err == nil {
			return bps
		}
	}
	return ""
}

// clean trims whitespace and maps ffprobe's "N/A" placeholder to "".
func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "N/A" {
		return ""
	}
	return s
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
