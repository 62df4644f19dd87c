// Package index persists the identity to location mapping of a library in a
// single SQLite file at the library root.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// FileName is the name of the index file directly under a library root.
const FileName = ".bongo.db"

var (
	ErrIndexNotFound      = errors.New("no library index found")
	ErrIndexAlreadyExists = errors.New("library index already exists")
	ErrTransaction        = errors.New("index transaction failed")
	ErrIndexBusy          = errors.New("library index is in use by another process")
	ErrSchemaMismatch     = errors.New("index schema version mismatch")
)

// Index is an open library index. It holds an advisory lock on the index file until closed.
type Index struct {
	db   *sql.DB
	lock *flock.Flock
	root string
	path string
}

// Locate walks upward from startDir (inclusive) and returns the first directory holding an index file.
// At most maxAscent parent steps are taken; 0 means up to the filesystem root.
func Locate(startDir string, maxAscent int) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for steps := 0; ; steps++ {
		info, err := os.Stat(filepath.Join(dir, FileName))
		switch {
		case err == nil && info.Mode().IsRegular():
			return dir, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("probing %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir || (maxAscent > 0 && steps >= maxAscent) {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w in %s or its parents", ErrIndexNotFound, startDir)
}

// CheckVacant fails with ErrIndexAlreadyExists if root or any of its ancestors hosts an index.
// With force the index of root itself is ignored.
func CheckVacant(root string, force bool) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	start := root
	if force {
		start = filepath.Dir(root)
		if start == root {
			return nil
		}
	}
	found, err := Locate(start, 0)
	if errors.Is(err, ErrIndexNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if found == root {
		return fmt.Errorf("%w at %s (use force to replace it)", ErrIndexAlreadyExists, root)
	}
	return fmt.Errorf("%w at %s, %s is part of that library", ErrIndexAlreadyExists, found, root)
}

// Init creates an empty index at root, creating root itself when missing.
// With force an existing index at root is replaced.
func Init(ctx context.Context, root string, force bool) (*Index, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := CheckVacant(root, force); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating library root: %w", err)
	}

	path := filepath.Join(root, FileName)
	if force {
		if err := removeFiles(path); err != nil {
			return nil, fmt.Errorf("removing previous index: %w", err)
		}
	}

	ix, err := open(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := ix.createSchema(ctx); err != nil {
		_ = ix.Close()
		_ = removeFiles(path)
		return nil, err
	}
	return ix, nil
}

// Open locates the nearest index at or above startDir and opens it. It never creates an index.
func Open(ctx context.Context, startDir string, maxAscent int) (*Index, error) {
	root, err := Locate(startDir, maxAscent)
	if err != nil {
		return nil, err
	}
	ix, err := open(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := ix.verifySchema(ctx); err != nil {
		_ = ix.Close()
		return nil, err
	}
	return ix, nil
}

func open(ctx context.Context, root string) (*Index, error) {
	path := filepath.Join(root, FileName)

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock index %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrIndexBusy, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=DELETE",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	return &Index{db: db, lock: lock, root: root, path: path}, nil
}

func removeFiles(path string) error {
	for _, p := range []string{path, path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Root is the library root directory the index governs.
func (ix *Index) Root() string {
	return ix.root
}

// Path is the location of the index file.
func (ix *Index) Path() string {
	return ix.path
}

// Close releases the database and the advisory lock.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	err := ix.db.Close()
	ix.db = nil
	if unlockErr := ix.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}

// Discard closes the index and deletes its file.
func (ix *Index) Discard() error {
	path := ix.path
	if err := ix.Close(); err != nil {
		return err
	}
	return removeFiles(path)
}
