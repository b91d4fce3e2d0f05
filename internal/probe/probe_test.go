package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Realistic ffprobe JSON for a phone recording in a QuickTime container:
//   - 1 H.264 video stream (1920x1080, 30000/1001 fps)
//   - 1 AAC stereo audio stream (48000 Hz)
//   - 1 timecode data stream
const sampleMOV = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "profile": "High",
      "width": 1920,
      "height": 1080,
      "pix_fmt": "yuv420p",
      "display_aspect_ratio": "16:9",
      "r_frame_rate": "30000/1001",
      "avg_frame_rate": "30000/1001",
      "bit_rate": "15992385",
      "bits_per_raw_sample": "8",
      "disposition": { "default": 1, "attached_pic": 0 },
      "tags": { "language": "und" }
    },
    {
      "index": 1,
      "codec_name": "aac",
      "codec_type": "audio",
      "profile": "LC",
      "sample_rate": "48000",
      "channels": 2,
      "channel_layout": "stereo",
      "bits_per_sample": 0,
      "bit_rate": "192000",
      "disposition": { "default": 1, "attached_pic": 0 },
      "tags": { "language": "eng" }
    },
    {
      "index": 2,
      "codec_type": "data",
      "codec_tag_string": "tmcd",
      "bit_rate": "N/A",
      "disposition": { "default": 1 }
    }
  ],
  "format": {
    "filename": "temp_uploaded_video.mov",
    "nb_streams": 3,
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "format_long_name": "QuickTime / MOV",
    "duration": "12.512500",
    "size": "25336311",
    "bit_rate": "16199079",
    "tags": { "major_brand": "qt  " }
  }
}`

// Matroska file with cover art ahead of the real video and no bit_rate
// fields; the measured rates live in the BPS tags.
const sampleMKV = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "disposition": { "default": 0, "attached_pic": 1 }
    },
    {
      "index": 1,
      "codec_name": "hevc",
      "codec_type": "video",
      "width": 3840,
      "height": 2160,
      "r_frame_rate": "24000/1001",
      "avg_frame_rate": "24000/1001",
      "disposition": { "default": 1, "attached_pic": 0 },
      "tags": { "BPS": "18000000" }
    },
    {
      "index": 2,
      "codec_name": "flac",
      "codec_type": "audio",
      "sample_rate": "48000",
      "channels": 6,
      "bits_per_sample": 0,
      "bits_per_raw_sample": "24",
      "disposition": { "default": 1 },
      "tags": { "language": "jpn", "BPS": "2100000" }
    },
    {
      "index": 3,
      "codec_name": "aac",
      "codec_type": "audio",
      "sample_rate": "44100",
      "channels": 2,
      "bit_rate": "256000",
      "disposition": { "default": 0 },
      "tags": { "language": "eng", "BPS": "not-a-number" }
    }
  ],
  "format": {
    "filename": "/media/test/concert.mkv",
    "nb_streams": 4,
    "format_name": "matroska,webm",
    "duration": "5400.000000",
    "size": "4000000000",
    "tags": {}
  }
}`

func TestParseJSON_MOV(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMOV))
	require.NoError(t, err)

	assert.Equal(t, "temp_uploaded_video.mov", pr.Format.Filename)
	assert.Equal(t, 3, pr.Format.NbStreams)
	assert.Equal(t, "12.512500", pr.Format.Duration)
	assert.Equal(t, "25336311", pr.Format.Size)
	assert.Equal(t, "16199079", pr.Format.BitRate)
	assert.Equal(t, "qt  ", pr.Format.Tags["major_brand"])
	require.Len(t, pr.Streams, 3)

	v := pr.FirstOfType("video")
	require.NotNil(t, v)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, "h264", v.CodecName)
	assert.Equal(t, 1920, v.Width)
	assert.Equal(t, 1080, v.Height)
	assert.Equal(t, "30000/1001", v.RFrameRate)
	assert.Equal(t, "16:9", v.DisplayAspectRatio)
	assert.Equal(t, "15992385", v.BitRate)
	assert.True(t, v.IsDefault)
	assert.False(t, v.IsAttachedPic)

	a := pr.FirstOfType("audio")
	require.NotNil(t, a)
	assert.Equal(t, "aac", a.CodecName)
	assert.Equal(t, "48000", a.SampleRate)
	assert.Equal(t, 2, a.Channels)
	assert.Equal(t, 0, a.BitsPerSample)
	assert.Equal(t, "192000", a.BitRate)
	assert.Equal(t, "eng", a.Language)

	// "N/A" is normalized to absent.
	d := pr.FirstOfType("data")
	require.NotNil(t, d)
	assert.Empty(t, d.BitRate)
}

func TestParseJSON_MKV_SkipsAttachedPic(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMKV))
	require.NoError(t, err)

	v := pr.FirstOfType("video")
	require.NotNil(t, v)
	assert.Equal(t, 1, v.Index, "cover art must not be selected as the video track")
	assert.Equal(t, "hevc", v.CodecName)

	videos := pr.StreamsOfType("video")
	require.Len(t, videos, 1)
	assert.Equal(t, "hevc", videos[0].CodecName)
}

func TestParseJSON_FirstAudioWins(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMKV))
	require.NoError(t, err)

	audio := pr.StreamsOfType("audio")
	require.Len(t, audio, 2)
	assert.Equal(t, "flac", audio[0].CodecName)
	assert.Equal(t, "aac", audio[1].CodecName)

	first := pr.FirstOfType("audio")
	require.NotNil(t, first)
	assert.Equal(t, "flac", first.CodecName)
	assert.Equal(t, "24", first.BitsPerRawSample)
}

func TestStreamBitRate_TagBPSFallback(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMKV))
	require.NoError(t, err)

	// No bit_rate field, falls back to tags.BPS.
	assert.Equal(t, "18000000", pr.FirstOfType("video").BitRate)

	audio := pr.StreamsOfType("audio")
	assert.Equal(t, "2100000", audio[0].BitRate)
	// Top-level value takes precedence over a garbage BPS tag.
	assert.Equal(t, "256000", audio[1].BitRate)

	// Format has no bit_rate at all.
	assert.Empty(t, pr.Format.BitRate)
}

func TestParseJSON_NoVideo(t *testing.T) {
	j := `{
		"streams": [
			{ "index": 0, "codec_name": "mjpeg", "codec_type": "video", "disposition": { "attached_pic": 1 } },
			{ "index": 1, "codec_name": "mp3", "codec_type": "audio", "sample_rate": "44100" }
		],
		"format": { "filename": "song.mp3", "duration": "180.0", "size": "4320000" }
	}`
	pr, err := ParseJSON([]byte(j))
	require.NoError(t, err)
	assert.Nil(t, pr.FirstOfType("video"))
	assert.Empty(t, pr.StreamsOfType("video"))
	assert.NotNil(t, pr.FirstOfType("audio"))
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	_, err := ParseJSON([]byte(`{invalid`))
	assert.Error(t, err)
}

func TestParseJSON_EmptyDocument(t *testing.T) {
	_, err := ParseJSON([]byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no format and no streams")
}

func TestParseJSON_EmptyStreams(t *testing.T) {
	pr, err := ParseJSON([]byte(`{"streams":[],"format":{"filename":"empty.mkv","nb_streams":0}}`))
	require.NoError(t, err)
	assert.Nil(t, pr.FirstOfType("video"))
	assert.Empty(t, pr.Streams)
}

// --- Runner tests against a stand-in ffprobe script ---

func fakeFfprobe(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestRunner_Success(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(out, []byte(sampleMOV), 0o644))
	bin := fakeFfprobe(t, "cat "+out)

	pr, err := Runner{BinPath: bin, Timeout: 5 * time.Second}.Probe(context.Background(), "clip.mov")
	require.NoError(t, err)
	assert.Equal(t, "h264", pr.FirstOfType("video").CodecName)
}

func TestRunner_FailureCarriesStderr(t *testing.T) {
	bin := fakeFfprobe(t, `echo "clip.mov: Invalid data found when processing input" >&2; exit 1`)

	_, err := Runner{BinPath: bin}.Probe(context.Background(), "clip.mov")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found when processing input")
	var te *TimeoutError
	assert.False(t, errors.As(err, &te))
}

func TestRunner_Timeout(t *testing.T) {
	bin := fakeFfprobe(t, "exec sleep 5")

	start := time.Now()
	_, err := Runner{BinPath: bin, Timeout: 100 * time.Millisecond}.Probe(context.Background(), "clip.mov")
	require.Error(t, err)
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 100*time.Millisecond, te.Timeout)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_CallerDeadlineIsNotTimeoutError(t *testing.T) {
	bin := fakeFfprobe(t, "exec sleep 5")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Runner{BinPath: bin}.Probe(ctx, "clip.mov")
	require.Error(t, err)
	var te *TimeoutError
	assert.False(t, errors.As(err, &te), "deadline belongs to the caller")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, err.Error(), "0s")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_CallerCancel(t *testing.T) {
	bin := fakeFfprobe(t, "exec sleep 5")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Runner{BinPath: bin, Timeout: time.Minute}.Probe(ctx, "clip.mov")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_MissingBinary(t *testing.T) {
	_, err := Runner{BinPath: filepath.Join(t.TempDir(), "no-such-ffprobe")}.Probe(context.Background(), "clip.mov")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffprobe")
}
