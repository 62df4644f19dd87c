// Package library ties a scanned song set to the index of its root and keeps both in sync.
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/index"
	"github.com/it-a-me/bongo/internal/scan"
	"github.com/it-a-me/bongo/internal/song"
)

// Library is an open index together with the songs found below its root.
// The song set is built lazily by the first operation needing it.
type Library struct {
	root      string //absolute
	index     *index.Index
	resolver  *identity.Resolver
	songs     []*song.Song
	playlists []string
	scanned   bool
}

// Init creates a new library at root and tracks every song below it, assigning identities as needed.
// Nothing is left behind at root if any step fails.
func Init(ctx context.Context, root string, force bool) (*Library, *Report, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, err
	}
	if err := index.CheckVacant(root, force); err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating library root: %w", err)
	}

	lib := &Library{root: root, resolver: identity.NewResolver()}
	if err := lib.Rescan(false); err != nil {
		return nil, nil, err
	}

	lib.index, err = index.Init(ctx, root, force)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{}
	report.add(Event{Kind: LibraryCreated, Path: lib.index.Path()})
	update, err := lib.Update(ctx, true)
	report.merge(update)
	if err != nil {
		_ = lib.index.Discard()
		return nil, report, err
	}
	return lib, report, nil
}

// Open attaches to the library governing startDir, searching at most maxAscent parents (0 = unbounded).
func Open(ctx context.Context, startDir string, maxAscent int) (*Library, error) {
	ix, err := index.Open(ctx, startDir, maxAscent)
	if err != nil {
		return nil, err
	}
	return &Library{root: ix.Root(), index: ix, resolver: identity.NewResolver()}, nil
}

// Rescan replaces the in-memory song set with a fresh walk of the root.
func (l *Library) Rescan(assign bool) error {
	result, err := scan.Walk(l.root, l.resolver, assign)
	if err != nil {
		return err
	}
	l.songs = result.Songs
	l.playlists = result.Playlists
	l.scanned = true
	return nil
}

func (l *Library) ensureScanned() error {
	if l.scanned {
		return nil
	}
	return l.Rescan(false)
}

func (l *Library) Root() string {
	return l.root
}

// Songs returns the current song set, scanning first if needed.
func (l *Library) Songs() ([]*song.Song, error) {
	if err := l.ensureScanned(); err != nil {
		return nil, err
	}
	return l.songs, nil
}

// Playlists returns the absolute paths of the playlists directly under the root.
func (l *Library) Playlists() ([]string, error) {
	if err := l.ensureScanned(); err != nil {
		return nil, err
	}
	return l.playlists, nil
}

// Tracked returns every index record ordered by path.
func (l *Library) Tracked(ctx context.Context) (records []index.Record, err error) {
	err = l.index.WithReadTransaction(ctx, func(tx *index.Tx) error {
		records, err = tx.All()
		return err
	})
	return
}

func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	return l.index.Close()
}

func canonicalDir(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}
