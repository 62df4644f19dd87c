// Package scan walks a library root and parses every supported audio file below it.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/relpath"
	"github.com/it-a-me/bongo/internal/song"
	"github.com/it-a-me/bongo/internal/tagcodec"
)

// MaxDepth bounds how far below the root files are considered. Files directly under the root have depth 1.
const MaxDepth = 5

const playlistExtension = ".m3u"

// Result is everything a single walk found.
type Result struct {
	Songs     []*song.Song
	Playlists []string
}

// Walk collects the songs below root, resolving identities with the given permission.
// Without permission to assign, unidentified songs are kept with a nil ID.
// Any other per-file failure aborts the walk and is returned as a *tagcodec.FileError.
func Walk(root string, resolver *identity.Resolver, assign bool) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("library root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library root %s is not a directory", root)
	}

	result := &Result{}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		depth := depthBelow(root, path)
		if entry.IsDir() {
			if depth >= MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if depth == 1 && filepath.Ext(entry.Name()) == playlistExtension {
			result.Playlists = append(result.Playlists, path)
			return nil
		}
		if !tagcodec.SupportedExtension(strings.TrimPrefix(filepath.Ext(entry.Name()), ".")) {
			return nil
		}
		// the index must be able to store the location losslessly
		if _, err := relpath.Split(root, path); err != nil {
			return tagcodec.At(path, err)
		}
		return result.add(path, resolver, assign)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Result) add(path string, resolver *identity.Resolver, assign bool) error {
	tags, err := tagcodec.Open(path)
	if err != nil {
		return err
	}
	s := song.New(path, tags)
	id, _, err := resolver.Resolve(tags, assign)
	switch {
	case err == nil:
		s.SetID(id)
	case !assign && errors.Is(err, identity.ErrMissingIdentity):
	default:
		return tagcodec.At(path, err)
	}
	r.Songs = append(r.Songs, s)
	return nil
}

func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return MaxDepth + 1
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
