// Package ffmpeg runs ffmpeg for measurements the container probe cannot
// provide.
//
// [DetectVolume] decodes the first audio stream through the volumedetect
// filter and parses its summary from stderr:
//
//	ffmpeg -hide_banner -nostdin -loglevel info -i <path> -map 0:a:0 \
//	    -vn -sn -dn -af volumedetect -f null -
//
// Files:
//   - builder.go: argument construction
//   - executor.go: subprocess run with timeout and stderr capture
//   - errors.go: sentinels and stderr patterns
//   - volume.go: result type and parsing
package ffmpeg
