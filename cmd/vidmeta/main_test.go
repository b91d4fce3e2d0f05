package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTools writes stand-in ffprobe/ffmpeg scripts and returns their paths.
func fakeTools(t *testing.T, probeJSON string) (ffprobe, ffmpeg string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-in requires a POSIX shell")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "probe.json")
	require.NoError(t, os.WriteFile(out, []byte(probeJSON), 0o644))

	ffprobe = filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(ffprobe, []byte("#!/bin/sh\ncat "+out+"\n"), 0o755))
	ffmpeg = filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(ffmpeg, []byte("#!/bin/sh\n"+
		"echo '[Parsed_volumedetect_0 @ 0x1] n_samples: 4800' >&2\n"+
		"echo '[Parsed_volumedetect_0 @ 0x1] mean_volume: -12.5 dB' >&2\n"+
		"echo '[Parsed_volumedetect_0 @ 0x1] max_volume: -1.0 dB' >&2\n"), 0o755))
	return ffprobe, ffmpeg
}

const cliJSON = `{
  "streams": [
    { "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001" },
    { "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2 }
  ],
  "format": { "format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "1.0" }
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("media"), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vidmeta "+version)
}

func TestProbe_JSON(t *testing.T) {
	ffprobe, _ := fakeTools(t, cliJSON)
	out, err := execute(t, "probe", "--ffprobe", ffprobe, "--color", "never", "-f", "json", mediaFile(t))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "h264", got["video"].(map[string]any)["codec"])
}

func TestProbe_MissingFileExitsOne(t *testing.T) {
	ffprobe, _ := fakeTools(t, cliJSON)
	_, err := execute(t, "probe", "--ffprobe", ffprobe, "--color", "never", filepath.Join(t.TempDir(), "gone.mp4"))
	var code exitCode
	require.ErrorAs(t, err, &code)
	assert.Equal(t, exitCode(1), code)
}

func TestProbe_MissingFfprobe(t *testing.T) {
	_, err := execute(t, "probe", "--ffprobe", filepath.Join(t.TempDir(), "nope"), "--color", "never", mediaFile(t))
	var code exitCode
	assert.ErrorAs(t, err, &code)
}

func TestProbe_InvalidFormat(t *testing.T) {
	ffprobe, _ := fakeTools(t, cliJSON)
	_, err := execute(t, "probe", "--ffprobe", ffprobe, "-f", "xml", mediaFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output_format")
}

func TestProbe_RequiresTarget(t *testing.T) {
	_, err := execute(t, "probe")
	assert.Error(t, err)
}

func TestVolume_YAML(t *testing.T) {
	ffprobe, ffmpeg := fakeTools(t, cliJSON)
	out, err := execute(t, "volume", "--ffprobe", ffprobe, "--ffmpeg", ffmpeg, "--color", "never", "-f", "yaml", mediaFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, "mean_volume_db: -12.5")
	assert.Contains(t, out, "max_volume_db: -1")
}

func TestRun_ExitCodes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, 0, run([]string{"version"}))
	assert.Equal(t, 1, run([]string{"no-such-command"}))
}
