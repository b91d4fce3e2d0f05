package display

import (
	"fmt"
	"io"

	"github.com/backmassage/vidmeta/internal/term"
)

const banner = `       _     _                     _
__   _(_) __| |_ __ ___   ___| |_ __ _
\ \ / / |/ _` + "`" + ` | '_ ` + "`" + ` _ \ / _ \ __/ _` + "`" + ` |
 \ V /| | (_| | | | | | |  __/ || (_| |
  \_/ |_|\__,_|_| |_| |_|\___|\__\__,_|`

// PrintBanner writes the ASCII art banner and version line to w, in
// magenta when colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprintln(w, term.Magenta(banner))
	fmt.Fprintln(w, term.Faint("  media metadata inspector "+version))
}
