package display

import (
	"fmt"
	"io"

	"github.com/backmassage/cloak/internal/term"
)

const banner = `      _             _
  ___| | ___   __ _| | __
 / __| |/ _ \ / _`+"`"+` | |/ /
| (__| | (_) | (_| |   <
 \___|_|\___/ \__,_|_|\_\
`

// PrintBanner prints the ASCII art banner in magenta, followed by a blank
// line when colors are on.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta.Paint(banner))
	if term.Enabled() {
		fmt.Fprintln(w)
	}
}
