package song

import (
	"path/filepath"
	"strings"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/relpath"
	"github.com/it-a-me/bongo/internal/tagcodec"
)

// Song is a parsed audio file found by a scan.
type Song struct {
	Tags tagcodec.Container
	ID   *identity.Identity //nil until resolved
	Path string             //absolute
}

func New(path string, tags tagcodec.Container) *Song {
	return &Song{Tags: tags, Path: path}
}

func (s *Song) Identified() bool {
	return s.ID != nil
}

func (s *Song) SetID(id identity.Identity) {
	s.ID = &id
}

// RelativePath locates the song below the library root.
func (s *Song) RelativePath(root string) (relpath.RelativePath, error) {
	return relpath.New(root, s.Path)
}

// Extension returns the file extension without the leading dot.
func (s *Song) Extension() string {
	return strings.TrimPrefix(filepath.Ext(s.Path), ".")
}

// Stem returns the base name without its extension.
func (s *Song) Stem() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Field returns a tag value, treating blank values as absent.
func (s *Song) Field(key tagcodec.Key) (string, bool) {
	if s.Tags == nil {
		return "", false
	}
	value, ok := s.Tags.Get(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// Move points the song and its tag container at a new location.
// The file itself must already be there.
func (s *Song) Move(path string) error {
	tags, err := tagcodec.Open(path)
	if err != nil {
		return err
	}
	s.Tags = tags
	s.Path = path
	return nil
}

func (s *Song) String() string {
	if s.ID == nil {
		return s.Path + " (unidentified)"
	}
	return s.Path + " (" + s.ID.String() + ")"
}
