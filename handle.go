package bongo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/it-a-me/bongo/internal/library"
	"github.com/it-a-me/bongo/internal/output"
)

// CreateConfig holds a set of common configuration switches that concern all calls to the bongo API.
// The zero value is a sensible default.
type CreateConfig struct {
	Out       io.Writer //requested information, defaults to stdout
	ErrOut    io.Writer //defaults to stderr
	Color     bool      //allow terminal escape sequences
	MaxAscent int       //parent directories searched for an index by Open, 0 = unbounded
	Context   context.Context
}

// Init creates a new library rooted at the given directory and tracks every song below it.
// Existing identities are kept, missing ones are written into the files.
// With force an existing index directly at root is replaced; an index in any parent directory always prevents creation.
func Init(root string, force bool, config CreateConfig) (Bongo, *Report, error) {
	handle := makeBongo(config)
	lib, report, err := library.Init(handle.ctx, mustAbsFilepath(root), force)
	if err != nil {
		return nil, report, newCommandError("library create error", err)
	}
	handle.lib = lib
	return handle, report, nil
}

// Open attaches to the library governing the given directory. (It does not need to be the library root directory.)
func Open(directory string, config CreateConfig) (Bongo, error) {
	handle := makeBongo(config)
	lib, err := library.Open(handle.ctx, mustAbsFilepath(directory), config.MaxAscent)
	if err != nil {
		return nil, newCommandError("library load error", err)
	}
	handle.lib = lib
	return handle, nil
}

type bongo struct {
	lib     *library.Library
	ctx     context.Context
	printer output.Printer
	out     io.Writer
	color   bool
}

func makeBongo(config CreateConfig) *bongo {
	out, errOut := config.Out, config.ErrOut
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &bongo{
		ctx:     ctx,
		printer: output.NewPrinterTo([]output.Class{output.Required, output.Error}, config.Color, out, errOut),
		out:     out,
		color:   config.Color,
	}
}

func (b *bongo) Root() string {
	return b.lib.Root()
}

func (b *bongo) Playlists() ([]string, error) {
	return b.lib.Playlists()
}

func (b *bongo) PrintPlaylists() error {
	playlists, err := b.Playlists()
	if err != nil {
		return newCommandError("library scan error", err)
	}
	for _, playlist := range playlists {
		b.printer.Out(output.Required, "%s\n", b.displayablePath(playlist, true, false))
	}
	return nil
}

func (b *bongo) Close() error {
	if err := b.lib.Close(); err != nil {
		return newCommandError("library close error", err)
	}
	return nil
}

// mustAbsFilepath calls filepath.Abs and asserts that it is successful
func mustAbsFilepath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(fmt.Sprintf("cannot resolve %s: %v", path, err))
	}
	return abs
}
