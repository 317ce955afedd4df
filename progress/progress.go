// Package progress reports the progress of a weld or straighten run, as
// plain text lines or as an interactive terminal view.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/fieldOfView/ArcWelderLib/stats"
)

// Type selects how progress is shown.
type Type string

const (
	None   Type = "NONE"
	Simple Type = "SIMPLE"
	Full   Type = "FULL"
	TUI    Type = "TUI"
)

func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case None, Simple, Full, TUI:
		return t, nil
	case "":
		return Simple, nil
	}
	return "", fmt.Errorf("invalid progress type: %q (must be NONE, SIMPLE, FULL, or TUI)", s)
}

// Printer returns a callback writing SIMPLE or FULL progress to w. NONE
// prints nothing. The callback asks the run to stop once stop is set; stop
// may be nil.
func Printer(w io.Writer, t Type, stop *atomic.Bool) stats.Callback {
	return func(p stats.Progress) bool {
		switch t {
		case Simple:
			fmt.Fprintln(w, p.Simple())
		case Full:
			fmt.Fprintln(w, p.String())
		}
		return stop == nil || !stop.Load()
	}
}
