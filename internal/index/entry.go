package index

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/relpath"
)

// Entry is what the index remembers about one identity.
type Entry struct {
	Path relpath.RelativePath
}

// Record pairs an entry with its key.
type Record struct {
	ID    identity.Identity
	Entry Entry
}

type storedEntry struct {
	PathSegments []string `json:"path_segments"`
}

func encodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(storedEntry{PathSegments: e.Path.Segments()})
}

func decodeEntry(raw []byte) (Entry, error) {
	var stored storedEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	path, err := relpath.FromSegments(stored.PathSegments)
	if err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return Entry{Path: path}, nil
}
