//go:build !windows

package relpath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		root   string
		target string
		want   string
		err    error
	}{
		{name: "FileInRoot", root: "/my/lib", target: "/my/lib/file.mp3", want: "file.mp3"},
		{name: "Nested", root: "/my/lib", target: "/my/lib/a/b/file.mp3", want: "a/b/file.mp3"},
		{name: "TrailingSlashRoot", root: "/my/lib/", target: "/my/lib/a/file", want: "a/file"},
		{name: "RootItself", root: "/my/lib", target: "/my/lib", want: ""},
		{name: "Sibling", root: "/my/lib", target: "/my/other/file", err: ErrNotDescendant},
		{name: "Parent", root: "/my/lib", target: "/my", err: ErrNotDescendant},
		{name: "PrefixButNotChild", root: "/my/lib", target: "/my/library/file", err: ErrNotDescendant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.root, tt.target)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Errorf("Split() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestFromSegmentsRejectsBadSegments(t *testing.T) {
	for _, bad := range [][]string{{""}, {"a", ".."}, {"."}, {"a/b"}, {"x\x00y"}, {"Artist", "caf\xe9.mp3"}} {
		if _, err := FromSegments(bad); !errors.Is(err, ErrInvalidSegment) {
			t.Errorf("segments %q not rejected, got %v", bad, err)
		}
	}
}

func TestRebaseAndSegments(t *testing.T) {
	p, err := FromSegments([]string{"Artist", "Album", "Title.mp3"})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Rebase("/music"); got != "/music/Artist/Album/Title.mp3" {
		t.Errorf("unexpected rebase result %s", got)
	}
	if got := p.String(); got != "Artist/Album/Title.mp3" {
		t.Errorf("unexpected slashed form %s", got)
	}
	segments := p.Segments()
	segments[0] = "changed"
	if p.Segments()[0] != "Artist" {
		t.Error("Segments must return a copy")
	}
}

func TestNewResolvesSymlinks(t *testing.T) {
	realRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(realRoot, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(realRoot, "sub", "song.mp3")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(realRoot, link); err != nil {
		t.Skip("symlinks unsupported:", err)
	}

	got, err := New(link, file)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "sub/song.mp3" {
		t.Errorf("expected sub/song.mp3, got %s", got)
	}

	if _, err := New(realRoot, filepath.Join(realRoot, "missing.mp3")); err == nil {
		t.Error("expected error for missing target")
	}
}
