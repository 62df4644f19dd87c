package library

import (
	"github.com/it-a-me/bongo/internal/identity"
)

type EventKind rune

const (
	LibraryCreated   EventKind = '*'
	IdentityAssigned EventKind = '#'
	EntryAdded       EventKind = '+'
	EntryRelocated   EventKind = '>'
	EntryPruned      EventKind = 'X'
	TagsCleaned      EventKind = '~'
	Unidentified     EventKind = '?'
	FileMoved        EventKind = 'M'
	FileCopied       EventKind = 'C'
)

func (k EventKind) String() string {
	switch k {
	case LibraryCreated:
		return "library created"
	case IdentityAssigned:
		return "identity assigned"
	case EntryAdded:
		return "entry added"
	case EntryRelocated:
		return "entry relocated"
	case EntryPruned:
		return "entry pruned"
	case TagsCleaned:
		return "tags cleaned"
	case Unidentified:
		return "unidentified"
	case FileMoved:
		return "file moved"
	case FileCopied:
		return "file copied"
	default:
		return "unknown"
	}
}

// Event is one observable outcome of a library operation. Paths are absolute.
type Event struct {
	Kind   EventKind
	ID     identity.Identity //zero for events not tied to a song
	Path   string
	From   string //previous location for relocations, moves and copies
	Fields int    //number of removed fields for TagsCleaned
}

// Report lists the events of an operation in the order they happened.
type Report struct {
	Events []Event
}

func (r *Report) add(e Event) {
	r.Events = append(r.Events, e)
}

func (r *Report) merge(other *Report) {
	if other != nil {
		r.Events = append(r.Events, other.Events...)
	}
}

// Count returns how many events of the given kind were recorded.
func (r *Report) Count(kind EventKind) (n int) {
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return
}

// Of returns the events of the given kind.
func (r *Report) Of(kind EventKind) (events []Event) {
	for _, e := range r.Events {
		if e.Kind == kind {
			events = append(events, e)
		}
	}
	return
}
