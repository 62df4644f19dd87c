package bongo

import "github.com/it-a-me/bongo/internal/library"

// Bongo lets you interface with a music library whose handle was retrieved using Init or Open.
type Bongo interface {

	// Root returns the absolute library root directory.
	Root() string

	// Update re-scans the library root and reconciles the index with what was found.
	// New songs are tracked, moved songs have their location updated, and entries of vanished songs are pruned.
	// Blank tag fields are stripped from every song. Songs without identity receive one if assignIdentities is set.
	Update(assignIdentities bool) (*Report, error)

	// Sort moves every song to Artist/Album/Title.ext below the root, or copies it below another destination.
	// See SortOptions for the available modes. Files already moved stay moved if a later one fails.
	Sort(options SortOptions) (*Report, error)

	// PrintTracked outputs the location of every tracked song, as a flat list or as a tree.
	PrintTracked(asTree bool) error

	// PrintIndex outputs the raw index contents in the given format.
	PrintIndex(format DumpFormat) error

	// Playlists lists the playlist files directly under the root.
	Playlists() ([]string, error)

	// PrintPlaylists outputs the location of every playlist file directly under the root.
	PrintPlaylists() error

	// PrintSummary outputs how many events of each kind the report holds, one line per kind.
	PrintSummary(report *Report)

	// DisplayPath turns an absolute path into something easily understandable from the working directory.
	DisplayPath(absolute string) string

	// Close releases the index. The handle must not be used afterwards.
	Close() error
}

// SortOptions selects the sort mode. The zero value sorts in place and reconciles afterwards.
type SortOptions = library.SortOptions

// Report is the ordered list of outcomes of an operation.
type Report = library.Report

// Event is a single outcome within a Report.
type Event = library.Event

type EventKind = library.EventKind

const (
	LibraryCreated   = library.LibraryCreated
	IdentityAssigned = library.IdentityAssigned
	EntryAdded       = library.EntryAdded
	EntryRelocated   = library.EntryRelocated
	EntryPruned      = library.EntryPruned
	TagsCleaned      = library.TagsCleaned
	Unidentified     = library.Unidentified
	FileMoved        = library.FileMoved
	FileCopied       = library.FileCopied
)

// DumpFormat selects how PrintIndex renders the index.
type DumpFormat string

const (
	DumpTable DumpFormat = "table"
	DumpTOML  DumpFormat = "toml"
	DumpJSON  DumpFormat = "json"
)

// RequestChoice represents a single-choice decision callback, the first option is considered the default "yes"-like choice.
// If the choice is aborted an empty string must be returned.
// If cleanup is set the implementation is recommended to remove the choice presentation after selection.
type RequestChoice func(request string, options []string, cleanup bool) (choice string)
