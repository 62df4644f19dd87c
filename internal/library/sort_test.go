package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/it-a-me/bongo/internal/song"
	"github.com/it-a-me/bongo/internal/tagcodec"
	"github.com/it-a-me/bongo/internal/testsupport"
)

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		fields   testsupport.Fields
		expected string
	}{
		{"complete", "x.flac", testsupport.Fields{"ARTIST": "A", "ALBUM": "B", "TITLE": "C"}, "A/B/C.flac"},
		{"no artist", "x.flac", testsupport.Fields{"ALBUM": "B", "TITLE": "C"}, "UnknownArtist/B/C.flac"},
		{"no album", "x.flac", testsupport.Fields{"ARTIST": "A", "TITLE": "C"}, "A/Singles/C.flac"},
		{"no title", "orig.name.flac", testsupport.Fields{"ARTIST": "A", "ALBUM": "B"}, "A/B/orig.name.flac"},
		{"blank values", "file.flac", testsupport.Fields{"ARTIST": "  ", "ALBUM": "", "TITLE": "\t"}, "UnknownArtist/Singles/file.flac"},
		{"separators", "x.flac", testsupport.Fields{"ARTIST": "AC/DC", "ALBUM": "..", "TITLE": ".hidden"}, "AC_DC/_./_hidden.flac"},
		{"decomposed", "x.flac", testsupport.Fields{"ARTIST": "Beyonce\u0301", "TITLE": "T"}, "Beyonc\u00e9/Singles/T.flac"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			testsupport.WriteFLAC(t, path, tt.fields)
			tags, err := tagcodec.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			canonical, err := CanonicalPath(song.New(path, tags))
			if err != nil {
				t.Fatal(err)
			}
			if canonical.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, canonical.String())
			}
		})
	}
}

func TestCanonicalPathKeepsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.aac")
	testsupport.WriteMP3(t, path, 4, testsupport.Fields{"ARTIST": "A", "ALBUM": "B", "TITLE": "C"})
	tags, err := tagcodec.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	canonical, err := CanonicalPath(song.New(path, tags))
	if err != nil {
		t.Fatal(err)
	}
	if canonical.String() != "A/B/C.aac" {
		t.Errorf("unexpected canonical path %s", canonical)
	}
}

func TestSortInPlaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)

	report, err := lib.Sort(ctx, SortOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if n := report.Count(FileMoved); n != 3 {
		t.Errorf("expected 3 moves, got %d", n)
	}
	if n := report.Count(EntryRelocated); n != 3 {
		t.Errorf("expected 3 relocations, got %d", n)
	}

	expected := []string{"Alpha/First/One.mp3", "Beta/Singles/Two.flac", "UnknownArtist/Loose/three.aac"}
	got := sortedPaths(trackedPaths(t, lib))
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], got[i])
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(expected[i]))); err != nil {
			t.Errorf("file missing at canonical location: %v", err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "two.flac")); !errors.Is(err, os.ErrNotExist) {
		t.Error("source of a move must be gone")
	}
	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}

	second := mustOpen(t, root)
	again, err := second.Sort(ctx, SortOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Events) != 0 {
		t.Errorf("second sort changed something: %+v", again.Events)
	}
}

func TestSortIgnoringIndexLeavesEntries(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	before := sortedPaths(trackedPaths(t, lib))

	report, err := lib.Sort(context.Background(), SortOptions{IgnoreIndex: true})
	if err != nil {
		t.Fatal(err)
	}
	if report.Count(EntryRelocated) != 0 {
		t.Error("index must not be touched")
	}
	after := sortedPaths(trackedPaths(t, lib))
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("entry changed from %s to %s", before[i], after[i])
		}
	}
}

func TestSortRefusesToOverwrite(t *testing.T) {
	root := t.TempDir()
	fields := testsupport.Fields{"ARTIST": "Same", "ALBUM": "Same", "TITLE": "Same"}
	testsupport.WriteFLAC(t, filepath.Join(root, "a.flac"), fields)
	testsupport.WriteFLAC(t, filepath.Join(root, "b.flac"), fields)
	lib, _ := mustInit(t, root)

	_, err := lib.Sort(context.Background(), SortOptions{})
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected destination exists, got %v", err)
	}
}

func TestSortOptionsValidation(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	ctx := context.Background()

	if _, err := lib.Sort(ctx, SortOptions{IgnoreIndex: true, AutoInit: true}); !errors.Is(err, ErrConflictingOptions) {
		t.Errorf("expected conflicting options, got %v", err)
	}
	if _, err := lib.Sort(ctx, SortOptions{Destination: root}); !errors.Is(err, ErrSameRoot) {
		t.Errorf("expected same root, got %v", err)
	}
}

func TestSortCopyOutWithAutoInit(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	source := trackedPaths(t, lib)
	destination := filepath.Join(t.TempDir(), "copy")

	report, err := lib.Sort(ctx, SortOptions{Destination: destination, AutoInit: true})
	if err != nil {
		t.Fatal(err)
	}
	if n := report.Count(FileCopied); n != 3 {
		t.Errorf("expected 3 copies, got %d", n)
	}
	if n := report.Count(IdentityAssigned); n != 0 {
		t.Errorf("copies keep their identities, got %d assignments", n)
	}
	if _, err := os.Stat(filepath.Join(root, "two.flac")); err != nil {
		t.Errorf("copy-out must not touch the source: %v", err)
	}

	copied := mustOpen(t, destination)
	if copied.Root() != destination {
		t.Fatalf("destination library rooted at %s", copied.Root())
	}
	tracked := trackedPaths(t, copied)
	if len(tracked) != len(source) {
		t.Fatalf("expected %d entries in the copy, got %d", len(source), len(tracked))
	}
	for id := range source {
		if _, ok := tracked[id]; !ok {
			t.Errorf("identity %s missing from the copy", id)
		}
	}
	if tracked[idAt(t, source, "two.flac")] != "Beta/Singles/Two.flac" {
		t.Errorf("unexpected copy layout %v", tracked)
	}
}

func TestSortCopyOutWithoutInit(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	destination := t.TempDir()

	if _, err := lib.Sort(context.Background(), SortOptions{Destination: destination}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(destination, "Alpha", "First", "One.mp3")); err != nil {
		t.Errorf("copy missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destination, ".bongo.db")); !errors.Is(err, os.ErrNotExist) {
		t.Error("no index may be created without auto init")
	}
}

func TestSortCopyOutRefusesCollidingSongs(t *testing.T) {
	root := t.TempDir()
	fields := testsupport.Fields{"ARTIST": "Same", "ALBUM": "Same", "TITLE": "Same"}
	testsupport.WriteFLAC(t, filepath.Join(root, "a.flac"), fields)
	testsupport.WriteFLAC(t, filepath.Join(root, "b.flac"), fields)
	lib, _ := mustInit(t, root)
	destination := t.TempDir()

	report, err := lib.Sort(context.Background(), SortOptions{Destination: destination, AutoInit: true})
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("expected destination exists, got %v", err)
	}
	if n := report.Count(FileCopied); n != 1 {
		t.Errorf("expected one copy before the collision, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(destination, ".bongo.db")); !errors.Is(err, os.ErrNotExist) {
		t.Error("a failed copy-out must not initialize the destination")
	}
}

func TestSortCopyOutReplacesEarlierCopies(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	destination := t.TempDir()

	for i := 0; i < 2; i++ {
		if _, err := lib.Sort(context.Background(), SortOptions{Destination: destination}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
