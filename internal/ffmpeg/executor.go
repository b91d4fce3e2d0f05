package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is wrapped by [Execute] when the run exceeds its deadline.
var ErrTimeout = errors.New("ffmpeg timed out")

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Execute runs args (binary first) under timeout and captures stderr. When
// tee is set, stderr is also copied to os.Stderr as it arrives.
func Execute(ctx context.Context, args []string, timeout time.Duration, tee bool) ExecResult {
	if len(args) == 0 {
		return ExecResult{Err: errors.New("ffmpeg: empty command")}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = time.Second

	var stderrBuf bytes.Buffer
	if tee {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case err != nil:
		if msg := lastLine(stderrBuf.String()); msg != "" {
			err = fmt.Errorf("ffmpeg: %s: %w", msg, err)
		} else {
			err = fmt.Errorf("ffmpeg: %w", err)
		}
	}
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}

// lastLine returns ffmpeg's final stderr line, which names the fatal error.
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}
