package output

import (
	"fmt"
	"io"
)

type Class int

const (
	Required Class = iota
	Error
	Normal
	Verbose
)

type Printer struct {
	classes    map[Class]bool
	terminal   io.Writer
	diagnosis  io.Writer
	useEscapes bool
}

// NewPrinterTo prints the included classes, regular output to terminal and errors to diagnosis.
func NewPrinterTo(include []Class, allowEscapes bool, terminal io.Writer, diagnosis io.Writer) (p Printer) {
	p = Printer{
		classes:    map[Class]bool{},
		terminal:   terminal,
		diagnosis:  diagnosis,
		useEscapes: allowEscapes,
	}
	for _, class := range include {
		p.classes[class] = true
	}
	return
}

func (p Printer) Out(class Class, format string, values ...interface{}) {
	if !p.classes[class] {
		return
	}
	target := &p.terminal
	if class == Error {
		target = &p.diagnosis
	}
	fmt.Fprintf(*target, format, values...)
}

// Colored is Out with the formatted text wrapped in a color if escapes are allowed.
func (p Printer) Colored(class Class, modifier SgrModifier, format string, values ...interface{}) {
	text := fmt.Sprintf(format, values...)
	if p.useEscapes {
		text = TerminalFormat(text, modifier)
	}
	p.Out(class, "%s", text)
}
