package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/it-a-me/bongo/internal/fileutil"
	"github.com/it-a-me/bongo/internal/relpath"
	"github.com/it-a-me/bongo/internal/song"
	"github.com/it-a-me/bongo/internal/tagcodec"
)

const (
	UnknownArtist = "UnknownArtist"
	Singles       = "Singles"
)

// SortOptions selects between reorganizing the library in place and copying it out to Destination.
type SortOptions struct {
	Destination string //empty sorts in place
	IgnoreIndex bool   //skip the reconciliation after an in-place sort
	AutoInit    bool   //initialize a library at Destination after copying
}

// CanonicalPath is where a song belongs: Artist/Album/Title.ext.
// Missing or blank tags fall back to UnknownArtist, Singles and the current file name.
func CanonicalPath(s *song.Song) (relpath.RelativePath, error) {
	artist, ok := s.Field(tagcodec.Artist)
	if !ok {
		artist = UnknownArtist
	}
	album, ok := s.Field(tagcodec.Album)
	if !ok {
		album = Singles
	}
	title, ok := s.Field(tagcodec.Title)
	if !ok {
		title = s.Stem()
	}
	name := sanitizeSegment(title)
	if ext := s.Extension(); ext != "" {
		name += "." + ext
	}
	return relpath.FromSegments([]string{sanitizeSegment(artist), sanitizeSegment(album), name})
}

// sanitizeSegment turns a tag value into a visible, single path segment.
func sanitizeSegment(value string) string {
	value = norm.NFC.String(strings.TrimSpace(value))
	value = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator || r == 0 {
			return '_'
		}
		return r
	}, value)
	if value == "" {
		return "_"
	}
	//a leading dot would hide the song from the next scan
	if value[0] == '.' {
		value = "_" + value[1:]
	}
	return value
}

// Sort moves (in place) or copies (to a destination) every song to its canonical path.
// It stops at the first failure; files handled before that stay where they were put.
func (l *Library) Sort(ctx context.Context, opts SortOptions) (*Report, error) {
	if opts.IgnoreIndex && opts.AutoInit {
		return nil, fmt.Errorf("%w: ignoring the index and initializing a new one cannot be combined", ErrConflictingOptions)
	}
	if err := l.ensureScanned(); err != nil {
		return nil, err
	}
	if opts.Destination == "" {
		return l.sortInPlace(ctx, opts)
	}
	return l.copyOut(ctx, opts)
}

func (l *Library) sortInPlace(ctx context.Context, opts SortOptions) (*Report, error) {
	report := &Report{}
	for _, s := range l.songs {
		canonical, err := CanonicalPath(s)
		if err != nil {
			return report, tagcodec.At(s.Path, err)
		}
		current, err := s.RelativePath(l.root)
		if err != nil {
			return report, tagcodec.At(s.Path, err)
		}
		if current.Equal(canonical) {
			continue
		}

		source := s.Path
		target := canonical.Rebase(l.root)
		occupied, err := fileutil.Exists(target)
		if err != nil {
			return report, err
		}
		if occupied {
			if fileutil.SameFile(source, target) {
				return report, fmt.Errorf("%w: %s and %s", ErrSelfCopy, source, target)
			}
			return report, fmt.Errorf("%w: cannot move %s to %s", ErrDestinationExists, source, target)
		}

		if err := transfer(source, target); err != nil {
			return report, err
		}
		if err := os.Remove(source); err != nil {
			return report, fmt.Errorf("removing %s after copy: %w", source, err)
		}
		if err := s.Move(target); err != nil {
			return report, err
		}
		event := Event{Kind: FileMoved, Path: target, From: source}
		if s.ID != nil {
			event.ID = *s.ID
		}
		report.add(event)
	}

	if opts.IgnoreIndex {
		return report, nil
	}
	update, err := l.Update(ctx, false)
	report.merge(update)
	return report, err
}

func (l *Library) copyOut(ctx context.Context, opts SortOptions) (*Report, error) {
	destination, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, err
	}
	if canonicalDir(destination) == canonicalDir(l.root) {
		return nil, fmt.Errorf("%w: %s", ErrSameRoot, destination)
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination: %w", err)
	}
	if fileutil.SameFile(destination, l.root) {
		return nil, fmt.Errorf("%w: %s", ErrSameRoot, destination)
	}

	report := &Report{}
	// files left by an earlier copy-out may be replaced, files written by this one may not
	written := make(map[string]string, len(l.songs))
	for _, s := range l.songs {
		canonical, err := CanonicalPath(s)
		if err != nil {
			return report, tagcodec.At(s.Path, err)
		}
		target := canonical.Rebase(destination)
		if fileutil.SameFile(s.Path, target) {
			return report, fmt.Errorf("%w: %s and %s", ErrSelfCopy, s.Path, target)
		}
		if earlier, taken := written[target]; taken {
			return report, fmt.Errorf("%w: %s and %s both sort to %s", ErrDestinationExists, earlier, s.Path, target)
		}
		written[target] = s.Path
		if err := transfer(s.Path, target); err != nil {
			return report, err
		}
		event := Event{Kind: FileCopied, Path: target, From: s.Path}
		if s.ID != nil {
			event.ID = *s.ID
		}
		report.add(event)
	}

	if !opts.AutoInit {
		return report, nil
	}
	created, initReport, err := Init(ctx, destination, false)
	report.merge(initReport)
	if err != nil {
		return report, err
	}
	return report, created.Close()
}

func transfer(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	if err := fileutil.CopyFile(source, target); err != nil {
		return fmt.Errorf("copying %s to %s: %w", source, target, err)
	}
	return nil
}
