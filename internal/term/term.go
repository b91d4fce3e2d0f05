// Package term provides color state and terminal detection.
//
// The painters are package-level because logging, display and report all
// color their output. [Configure] flips color.NoColor once during startup;
// when colors are disabled every painter returns its input unchanged.
package term

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/backmassage/vidmeta/internal/config"
)

// Painters for each log level and for report labels.
var (
	Red     = color.New(color.FgHiRed, color.Bold).SprintFunc()
	Green   = color.New(color.FgHiGreen, color.Bold).SprintFunc()
	Yellow  = color.New(color.FgHiYellow, color.Bold).SprintFunc()
	Blue    = color.New(color.FgHiBlue, color.Bold).SprintFunc()
	Cyan    = color.New(color.FgHiCyan, color.Bold).SprintFunc()
	Magenta = color.New(color.FgHiMagenta, color.Bold).SprintFunc()
	Faint   = color.New(color.FgWhite, color.Italic).SprintFunc()
)

// Configure resolves the color mode and sets color.NoColor accordingly.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	color.NoColor = !resolve(mode)
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY, including Cygwin and
// MSYS pseudo-terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
