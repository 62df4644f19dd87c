// Package tagcodec gives uniform field access to the metadata tags embedded in audio files.
//
// Every supported container format is wrapped once behind the Container capability
// interface (get, set, remove, save) so that consumers never depend on a specific
// tag library. Field names use the Vorbis comment vocabulary (TITLE, ARTIST, ...);
// codecs translate them to their native representation.
package tagcodec

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrParse             = errors.New("unable to parse tag container")
	ErrUntagged          = errors.New("untagged file")
	ErrWriteFailure      = errors.New("tag field rejected")
	ErrSave              = errors.New("unable to save tags")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Key names a tag field in Vorbis comment vocabulary, always upper case.
type Key string

const (
	Title         Key = "TITLE"
	Artist        Key = "ARTIST"
	Album         Key = "ALBUM"
	AlbumArtist   Key = "ALBUMARTIST"
	TrackNumber   Key = "TRACKNUMBER"
	DiscNumber    Key = "DISCNUMBER"
	Genre         Key = "GENRE"
	Date          Key = "DATE"
	Composer      Key = "COMPOSER"
	CatalogNumber Key = "CATALOGNUMBER"
)

// NormalizeKey upper-cases and trims a user supplied field name.
func NormalizeKey(name string) Key {
	return Key(strings.ToUpper(strings.TrimSpace(name)))
}

// Item is a single textual tag field.
type Item struct {
	Key   Key
	Value string
}

// Container is the capability interface every codec implements.
// Changes are kept in memory until Save writes them to the file the container was opened from.
type Container interface {
	Path() string
	Format() string
	Get(key Key) (value string, present bool)
	Set(key Key, value string) error
	Remove(key Key) (removed bool)
	// RemoveBlank drops every item whose value is blank and leaves other values of the same key alone.
	RemoveBlank() (removed int)
	Items() []Item
	Save() error
}

// FileError attaches the offending file path to a codec or resolver error.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to parse '%s': %s", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// At wraps err with path information unless it already carries it.
func At(path string, err error) error {
	if err == nil {
		return nil
	}
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return err
	}
	return &FileError{Path: path, Err: err}
}

type opener func(path string) (Container, error)

var openers = map[string]opener{
	"mp3":  openID3,
	"aac":  openID3,
	"flac": openFLAC,
}

// SupportedExtension reports whether files with the given extension (without dot, case-sensitive) can be opened.
func SupportedExtension(ext string) bool {
	_, ok := openers[ext]
	return ok
}

// Open parses the primary tag container of the file at path.
// Errors wrap ErrParse, ErrUntagged or ErrUnsupportedFormat and carry the path.
func Open(path string) (Container, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	open, ok := openers[ext]
	if !ok {
		return nil, At(path, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext))
	}
	container, err := open(path)
	if err != nil {
		return nil, At(path, err)
	}
	return container, nil
}

// RemoveEmpty deletes every blank item and returns how many were removed.
func RemoveEmpty(c Container) int {
	return c.RemoveBlank()
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Fields flattens the container into a map. Repeated keys keep the last value.
func Fields(c Container) map[string]string {
	fields := make(map[string]string)
	for _, item := range c.Items() {
		fields[string(item.Key)] = item.Value
	}
	return fields
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})
}

func writeFailure(key Key, reason string) error {
	return fmt.Errorf("%w: %s (%s)", ErrWriteFailure, key, reason)
}
