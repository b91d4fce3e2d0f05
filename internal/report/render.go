package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/vidmeta/internal/config"
	"github.com/backmassage/vidmeta/internal/display"
	"github.com/backmassage/vidmeta/internal/ffmpeg"
	"github.com/backmassage/vidmeta/internal/term"
)

const unknown = "unknown"

// Render writes reports to w in the given format. JSON and YAML emit a
// single document: an object for one report, a list otherwise.
func Render(w io.Writer, reports []Report, format config.OutputFormat) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document(reports))
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(document(reports)); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatText, "":
		for i := range reports {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := renderText(w, &reports[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func document(reports []Report) any {
	if len(reports) == 1 {
		return reports[0]
	}
	if reports == nil {
		return []Report{}
	}
	return reports
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) row(label, value string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "  %s %s\n", term.Cyan(fmt.Sprintf("%-14s", label)), value)
}

func renderText(w io.Writer, r *Report) error {
	if _, err := fmt.Fprintln(w, term.Blue(r.Path)); err != nil {
		return err
	}
	t := &textWriter{w: w}
	if r.Error != "" {
		t.row("Error", term.Red(r.Error))
		return t.err
	}

	t.row("Container", orUnknown(r.FormatName))
	t.row("Duration", show(r.Duration, display.FormatDuration))
	t.row("Size", show(r.FileSize, display.FormatBytes))
	t.row("Bit rate", show(r.FormatBitRate, display.FormatBitrate))

	if v := r.Video; v != nil {
		t.row("Video codec", orUnknown(v.Codec))
		res := unknown
		if v.Width > 0 && v.Height > 0 {
			res = fmt.Sprintf("%dx%d", v.Width, v.Height)
		}
		t.row("Resolution", res)
		t.row("Frame rate", show(v.FrameRate, display.FormatFrameRate))
		t.row("Aspect ratio", orUnknown(v.AspectRatio))
		t.row("Video bitrate", show(v.BitRate, display.FormatBitrate))
		if r.VideoTracks > 1 {
			t.row("Video tracks", fmt.Sprint(r.VideoTracks))
		}
	}

	if a := r.Audio; a != nil {
		t.row("Audio codec", orUnknown(a.Codec))
		t.row("Sample rate", show(a.SampleRate, display.FormatSampleRate))
		t.row("Bit depth", show(a.BitDepth, func(n int) string { return fmt.Sprintf("%d-bit", n) }))
		t.row("Channels", show(a.Channels, display.FormatChannels))
		t.row("Audio bitrate", show(a.BitRate, display.FormatBitrate))
		if r.AudioTracks > 1 {
			t.row("Audio tracks", fmt.Sprint(r.AudioTracks))
		}
	} else {
		t.row("Audio", term.Faint("none"))
	}

	if v := r.Volume; v != nil {
		if v.Silent {
			t.row("Volume", "silent")
		} else {
			t.row("Mean volume", show(v.MeanDB, display.FormatDecibels))
			t.row("Max volume", show(v.MaxDB, display.FormatDecibels))
		}
		if len(v.Histogram) > 0 {
			t.row("Histogram", formatHistogram(v.Histogram))
		}
	}

	for _, n := range r.Notes {
		t.row("Note", term.Yellow(n))
	}
	return t.err
}

// formatHistogram lists bins as "<level> dB: count", loudest first.
func formatHistogram(bins []ffmpeg.HistogramBin) string {
	parts := make([]string, len(bins))
	for i, b := range bins {
		parts[i] = fmt.Sprintf("%d dB: %d", -b.Decibels, b.Count)
	}
	return strings.Join(parts, ", ")
}

func show[T any](v *T, format func(T) string) string {
	if v == nil {
		return term.Faint(unknown)
	}
	return format(*v)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return term.Faint(unknown)
	}
	return s
}
