package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/it-a-me/bongo/internal/identity"
)

// Tx is a transactional view of the index valid only inside a transaction scope.
type Tx struct {
	ctx context.Context
	tx  *sql.Tx
}

func txFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransaction, op, err)
}

// WithWriteTransaction runs fn in one transaction. Everything fn changes is committed
// together when it returns nil and rolled back otherwise.
func (ix *Index) WithWriteTransaction(ctx context.Context, fn func(*Tx) error) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return txFailure("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return txFailure("commit", err)
	}
	return nil
}

// WithReadTransaction runs fn against a consistent snapshot. Nothing is committed.
func (ix *Index) WithReadTransaction(ctx context.Context, fn func(*Tx) error) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return txFailure("begin", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(&Tx{ctx: ctx, tx: tx})
}

// Get returns the entry for id; found is false when there is none.
func (t *Tx) Get(id identity.Identity) (entry Entry, found bool, err error) {
	var raw []byte
	err = t.tx.QueryRowContext(t.ctx, "SELECT entry FROM songs WHERE identity = ?", id.Bytes()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, txFailure("get "+id.String(), err)
	}
	entry, err = decodeEntry(raw)
	if err != nil {
		return Entry{}, false, txFailure("get "+id.String(), err)
	}
	return entry, true, nil
}

// InsertIfAbsent stores entry unless id is already present.
func (t *Tx) InsertIfAbsent(id identity.Identity, entry Entry) (inserted bool, err error) {
	raw, err := encodeEntry(entry)
	if err != nil {
		return false, txFailure("insert "+id.String(), err)
	}
	res, err := t.tx.ExecContext(t.ctx, "INSERT OR IGNORE INTO songs (identity, entry) VALUES (?, ?)", id.Bytes(), raw)
	if err != nil {
		return false, txFailure("insert "+id.String(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, txFailure("insert "+id.String(), err)
	}
	return affected > 0, nil
}

// Put stores entry, replacing any previous one.
func (t *Tx) Put(id identity.Identity, entry Entry) error {
	raw, err := encodeEntry(entry)
	if err != nil {
		return txFailure("put "+id.String(), err)
	}
	_, err = t.tx.ExecContext(t.ctx,
		"INSERT INTO songs (identity, entry) VALUES (?, ?) ON CONFLICT(identity) DO UPDATE SET entry = excluded.entry",
		id.Bytes(), raw)
	if err != nil {
		return txFailure("put "+id.String(), err)
	}
	return nil
}

// Remove deletes the entry for id and returns it.
func (t *Tx) Remove(id identity.Identity) (entry Entry, found bool, err error) {
	entry, found, err = t.Get(id)
	if err != nil || !found {
		return entry, found, err
	}
	if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM songs WHERE identity = ?", id.Bytes()); err != nil {
		return Entry{}, false, txFailure("remove "+id.String(), err)
	}
	return entry, true, nil
}

// All returns every record ordered by path.
func (t *Tx) All() ([]Record, error) {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT identity, entry FROM songs")
	if err != nil {
		return nil, txFailure("list", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rawID, rawEntry []byte
		if err := rows.Scan(&rawID, &rawEntry); err != nil {
			return nil, txFailure("list", err)
		}
		id, err := identity.FromBytes(rawID)
		if err != nil {
			return nil, txFailure("list", err)
		}
		entry, err := decodeEntry(rawEntry)
		if err != nil {
			return nil, txFailure("list "+id.String(), err)
		}
		records = append(records, Record{ID: id, Entry: entry})
	}
	if err := rows.Err(); err != nil {
		return nil, txFailure("list", err)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].Entry.Path.String(), records[j].Entry.Path.String()
		if a != b {
			return a < b
		}
		return records[i].ID.Less(records[j].ID)
	})
	return records, nil
}
