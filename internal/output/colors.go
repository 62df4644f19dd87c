package output

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// SgrModifier is an ANSI select graphic rendition parameter.
type SgrModifier int

const (
	DefaultForeground SgrModifier = 39
	Red               SgrModifier = 31
	Green             SgrModifier = 32
	Yellow            SgrModifier = 33
	Magenta           SgrModifier = 35
	Cyan              SgrModifier = 36
	Dim               SgrModifier = 2
)

func TerminalFormat(text string, modifier SgrModifier) string {
	return fmt.Sprintf("\x1B[%dm%s\x1B[0m", modifier, text)
}

func TerminalFormatAsDim(text string) string {
	return TerminalFormat(text, Dim)
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorEnabled resolves a color mode (auto, always, never) for output written to f.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return f != nil && IsTerminal(f) && os.Getenv("NO_COLOR") == ""
	}
}
