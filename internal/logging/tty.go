package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is the subset of os.File the terminal probe needs.
type fdWriter interface {
	Fd() uintptr
}

// IsTTY reports whether w is backed by a terminal file descriptor.
func IsTTY(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI escapes are safe to write to w.
func SupportsColor(w io.Writer) bool {
	return colorEnabled(IsTTY(w))
}

// colorEnabled applies the NO_COLOR convention (https://no-color.org)
// and the TERM=dumb opt-out on top of the descriptor check.
func colorEnabled(isTTY bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTTY
}
