package media

import (
	"fmt"
	"time"
)

// StreamKind names the stream type an accessor reads from.
type StreamKind string

const (
	KindFormat StreamKind = "format"
	KindVideo  StreamKind = "video"
	KindAudio  StreamKind = "audio"
)

// ProbeError reports that the file could not be probed at construction:
// missing or empty file, ffprobe failure, unparseable container fields, or
// a required stream absent. Err holds the cause.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string { return fmt.Sprintf("probe %s: %v", e.Path, e.Err) }
func (e *ProbeError) Unwrap() error { return e.Err }

// ProbeTimeoutError reports that ffprobe did not finish within Timeout.
type ProbeTimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *ProbeTimeoutError) Error() string {
	return fmt.Sprintf("probe %s: timed out after %s", e.Path, e.Timeout)
}

// MissingStreamError reports that the file has no stream of Kind.
type MissingStreamError struct {
	Kind StreamKind
}

func (e *MissingStreamError) Error() string { return fmt.Sprintf("no %s stream", e.Kind) }

// MissingFieldError reports that the stream exists but the encoder or muxer
// omitted Field. Callers should show "unknown", never zero.
type MissingFieldError struct {
	Kind  StreamKind
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s stream has no %s", e.Kind, e.Field)
}

// MalformedFieldError reports that Field is present but Value does not
// parse as the expected rational, decimal or integer.
type MalformedFieldError struct {
	Kind  StreamKind
	Field string
	Value string
	Err   error
}

func (e *MalformedFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s %q: %v", e.Kind, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %s %q is malformed", e.Kind, e.Field, e.Value)
}

func (e *MalformedFieldError) Unwrap() error { return e.Err }
