package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/index"
	"github.com/it-a-me/bongo/internal/tagcodec"
	"github.com/it-a-me/bongo/internal/testsupport"
)

func populate(t *testing.T, root string) {
	t.Helper()
	testsupport.WriteMP3(t, filepath.Join(root, "incoming", "one.mp3"), 4, testsupport.Fields{
		"TITLE": "One", "ARTIST": "Alpha", "ALBUM": "First",
	})
	testsupport.WriteFLAC(t, filepath.Join(root, "two.flac"), testsupport.Fields{
		"TITLE": "Two", "ARTIST": "Beta",
	})
	testsupport.WriteMP3(t, filepath.Join(root, "misc", "deeper", "three.aac"), 3, testsupport.Fields{
		"ALBUM": "Loose",
	})
}

func mustInit(t *testing.T, root string) (*Library, *Report) {
	t.Helper()
	lib, report, err := Init(context.Background(), root, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib, report
}

func mustOpen(t *testing.T, dir string) *Library {
	t.Helper()
	lib, err := Open(context.Background(), dir, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func trackedPaths(t *testing.T, lib *Library) map[identity.Identity]string {
	t.Helper()
	records, err := lib.Tracked(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	paths := make(map[identity.Identity]string, len(records))
	for _, record := range records {
		paths[record.ID] = record.Entry.Path.String()
	}
	return paths
}

func TestInitTracksEverySong(t *testing.T) {
	root := t.TempDir()
	populate(t, root)

	lib, report := mustInit(t, root)

	if n := report.Count(LibraryCreated); n != 1 {
		t.Errorf("expected creation event, got %d", n)
	}
	if n := report.Count(IdentityAssigned); n != 3 {
		t.Errorf("expected 3 assignments, got %d", n)
	}
	if n := report.Count(EntryAdded); n != 3 {
		t.Errorf("expected 3 added entries, got %d", n)
	}

	tracked := trackedPaths(t, lib)
	if len(tracked) != 3 {
		t.Fatalf("expected 3 entries, got %v", tracked)
	}
	songs, err := lib.Songs()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range songs {
		if !s.Identified() {
			t.Fatalf("%s left unidentified", s.Path)
		}
		rel, err := s.RelativePath(root)
		if err != nil {
			t.Fatal(err)
		}
		if tracked[*s.ID] != rel.String() {
			t.Errorf("entry for %s is %q, expected %q", s.ID, tracked[*s.ID], rel)
		}
		stored, err := tagcodec.Open(s.Path)
		if err != nil {
			t.Fatal(err)
		}
		if value, _ := stored.Get(identity.Field); value != s.ID.String() {
			t.Errorf("identity of %s not persisted in the file", s.Path)
		}
	}
}

func TestInitAbortsOnUnparsableFile(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	broken := filepath.Join(root, "broken.flac")
	testsupport.WriteGarbage(t, broken)

	_, _, err := Init(context.Background(), root, false)
	if !errors.Is(err, tagcodec.ErrParse) {
		t.Fatalf("expected parse failure, got %v", err)
	}
	var fileErr *tagcodec.FileError
	if !errors.As(err, &fileErr) || fileErr.Path != broken {
		t.Errorf("error must name %s: %v", broken, err)
	}
	if _, err := os.Stat(filepath.Join(root, index.FileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed init left an index behind: %v", err)
	}
	one, err := tagcodec.Open(filepath.Join(root, "incoming", "one.mp3"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := one.Get(identity.Field); ok {
		t.Error("failed init must not write identities")
	}
}

func TestInitNestingGuard(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	before := trackedPaths(t, lib)
	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Init(ctx, root, false); !errors.Is(err, index.ErrIndexAlreadyExists) {
		t.Errorf("re-init without force: expected already exists, got %v", err)
	}
	if _, _, err := Init(ctx, filepath.Join(root, "misc"), false); !errors.Is(err, index.ErrIndexAlreadyExists) {
		t.Errorf("nested init: expected already exists, got %v", err)
	}
	if _, _, err := Init(ctx, filepath.Join(root, "misc"), true); !errors.Is(err, index.ErrIndexAlreadyExists) {
		t.Errorf("forced nested init: expected already exists, got %v", err)
	}

	forced, report, err := Init(ctx, root, true)
	if err != nil {
		t.Fatalf("forced re-init: %v", err)
	}
	defer forced.Close()
	if n := report.Count(IdentityAssigned); n != 0 {
		t.Errorf("re-init reassigned %d identities", n)
	}
	after := trackedPaths(t, forced)
	if len(after) != len(before) {
		t.Fatalf("expected %d entries after re-init, got %d", len(before), len(after))
	}
	for id, path := range before {
		if after[id] != path {
			t.Errorf("entry %s changed from %q to %q", id, path, after[id])
		}
	}
}

func TestUpdatePropagatesDeletion(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)

	deleted := filepath.Join(root, "two.flac")
	var deletedID identity.Identity
	songs, _ := lib.Songs()
	for _, s := range songs {
		if s.Path == deleted {
			deletedID = *s.ID
		}
	}
	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(deleted); err != nil {
		t.Fatal(err)
	}

	reopened := mustOpen(t, filepath.Join(root, "incoming"))
	report, err := reopened.Update(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	pruned := report.Of(EntryPruned)
	if len(pruned) != 1 || pruned[0].ID != deletedID {
		t.Fatalf("expected %s to be pruned, got %+v", deletedID, pruned)
	}
	if filepath.Base(pruned[0].Path) != "two.flac" {
		t.Errorf("prune event must carry the old path, got %s", pruned[0].Path)
	}
	tracked := trackedPaths(t, reopened)
	if len(tracked) != 2 {
		t.Errorf("expected 2 entries, got %v", tracked)
	}
	if _, ok := tracked[deletedID]; ok {
		t.Error("deleted song still tracked")
	}
}

func TestUpdateRecordsRelocation(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}

	if err := os.Rename(filepath.Join(root, "two.flac"), filepath.Join(root, "incoming", "renamed.flac")); err != nil {
		t.Fatal(err)
	}
	reopened := mustOpen(t, root)
	report, err := reopened.Update(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	relocated := report.Of(EntryRelocated)
	if len(relocated) != 1 {
		t.Fatalf("expected one relocation, got %+v", report.Events)
	}
	if report.Count(EntryPruned) != 0 || report.Count(EntryAdded) != 0 {
		t.Errorf("a move must not add or prune entries: %+v", report.Events)
	}
	if trackedPaths(t, reopened)[relocated[0].ID] != "incoming/renamed.flac" {
		t.Error("index does not record the new location")
	}
}

func TestUpdateWithoutAssignmentReportsUnidentified(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	lib, _ := mustInit(t, root)
	if err := lib.Close(); err != nil {
		t.Fatal(err)
	}
	newcomer := filepath.Join(root, "new.flac")
	testsupport.WriteFLAC(t, newcomer, testsupport.Fields{"TITLE": "New"})

	reopened := mustOpen(t, root)
	report, err := reopened.Update(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	unidentified := report.Of(Unidentified)
	if len(unidentified) != 1 || unidentified[0].Path != newcomer {
		t.Errorf("expected %s to be reported unidentified, got %+v", newcomer, unidentified)
	}
	if len(trackedPaths(t, reopened)) != 3 {
		t.Error("unidentified songs must not be tracked")
	}
}

func TestUpdateCleansBlankFields(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blank.flac")
	testsupport.WriteFLAC(t, path, testsupport.Fields{"TITLE": "Blank", "ARTIST": " ", "GENRE": ""})

	lib, report := mustInit(t, root)
	cleaned := report.Of(TagsCleaned)
	if len(cleaned) != 1 || cleaned[0].Fields != 2 {
		t.Fatalf("expected two fields cleaned, got %+v", cleaned)
	}

	stored, err := tagcodec.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stored.Get(tagcodec.Artist); ok {
		t.Error("blank artist still stored")
	}

	again, err := lib.Update(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if again.Count(TagsCleaned) != 0 {
		t.Error("clean files must not be saved again")
	}
}

func TestUpdateCleaningKeepsRepeatedFieldValues(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "multi.flac")
	testsupport.WriteFLACComments(t, path, []string{"TITLE=A", "GENRE=", "GENRE=Rock"})

	_, report := mustInit(t, root)
	if cleaned := report.Of(TagsCleaned); len(cleaned) != 1 || cleaned[0].Fields != 1 {
		t.Fatalf("expected one blank item cleaned, got %+v", cleaned)
	}
	stored, err := tagcodec.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if genre, _ := stored.Get(tagcodec.Genre); genre != "Rock" {
		t.Errorf("GENRE = %q, want Rock", genre)
	}
}

func TestInitAssignsOverBlankIdentity(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "blank-id.mp3")
	testsupport.WriteMP3(t, path, 4, testsupport.Fields{"TITLE": "x", "CATALOGNUMBER": ""})

	lib, report := mustInit(t, root)
	if report.Count(IdentityAssigned) != 1 {
		t.Fatalf("expected an identity to be assigned, got %+v", report.Events)
	}
	stored, err := tagcodec.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	value, _ := stored.Get(identity.Field)
	id, err := identity.Parse(value)
	if err != nil {
		t.Fatalf("stored identity %q: %v", value, err)
	}
	if trackedPaths(t, lib)[id] != "blank-id.mp3" {
		t.Errorf("song not tracked under its new identity")
	}
}

func TestPlaylists(t *testing.T) {
	root := t.TempDir()
	populate(t, root)
	testsupport.WriteGarbage(t, filepath.Join(root, "best.m3u"))
	lib, _ := mustInit(t, root)

	playlists, err := lib.Playlists()
	if err != nil {
		t.Fatal(err)
	}
	if len(playlists) != 1 || filepath.Base(playlists[0]) != "best.m3u" {
		t.Errorf("unexpected playlists %v", playlists)
	}
}

func sortedPaths(m map[identity.Identity]string) []string {
	var values []string
	for _, v := range m {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func idAt(t *testing.T, tracked map[identity.Identity]string, path string) identity.Identity {
	t.Helper()
	for id, p := range tracked {
		if p == path {
			return id
		}
	}
	t.Fatalf("nothing tracked at %s", path)
	return identity.Identity{}
}
