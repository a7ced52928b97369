package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// colorEnabled reports whether w is a terminal that should get ANSI
// colours. NO_COLOR and TERM=dumb turn colour off.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return colorAllowed(ok && term.IsTerminal(int(f.Fd())))
}

func colorAllowed(isTTY bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
