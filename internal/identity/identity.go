// Package identity resolves and assigns the stable identity embedded in a song's tags.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/it-a-me/bongo/internal/tagcodec"
)

// Field is the reserved tag field holding the identity.
const Field = tagcodec.CatalogNumber

var (
	ErrMissingIdentity = errors.New("file has no identity")
	ErrInvalidIdentity = errors.New("identity field is not a valid identity")
)

// Identity is a random 128-bit value that follows a file across moves.
type Identity struct {
	id uuid.UUID
}

// New generates a random identity.
func New() Identity {
	return Identity{id: uuid.New()}
}

// Parse reads the canonical textual form (any form accepted by uuid.Parse).
func Parse(text string) (Identity, error) {
	id, err := uuid.Parse(text)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %q: %w", ErrInvalidIdentity, text, err)
	}
	return Identity{id: id}, nil
}

// FromBytes reads the 16 byte binary form.
func FromBytes(raw []byte) (Identity, error) {
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}
	return Identity{id: id}, nil
}

func (i Identity) String() string {
	return i.id.String()
}

// Bytes returns the 16 byte binary form.
func (i Identity) Bytes() []byte {
	raw := i.id
	return raw[:]
}

func (i Identity) IsZero() bool {
	return i.id == uuid.Nil
}

func (i Identity) Less(other Identity) bool {
	for n := range i.id {
		if i.id[n] != other.id[n] {
			return i.id[n] < other.id[n]
		}
	}
	return false
}

// Fields is the part of a tag container the resolver needs.
type Fields interface {
	Get(key tagcodec.Key) (string, bool)
	Set(key tagcodec.Key, value string) error
	Save() error
}

// Resolver reads identities and, when permitted, assigns new ones.
type Resolver struct {
	generate func() Identity
}

// NewResolver returns a resolver generating random identities.
func NewResolver() *Resolver {
	return &Resolver{generate: New}
}

// Resolve returns the identity stored in f. If there is none and assign is set,
// a new identity is written and saved immediately; assigned reports that case.
// Files that already carry an identity are never written.
func (r *Resolver) Resolve(f Fields, assign bool) (id Identity, assigned bool, err error) {
	// a blank field counts as absent
	if stored, present := f.Get(Field); present && strings.TrimSpace(stored) != "" {
		id, err = Parse(stored)
		return id, false, err
	}
	if !assign {
		return Identity{}, false, ErrMissingIdentity
	}

	id = r.generate()
	if err = f.Set(Field, id.String()); err != nil {
		if !errors.Is(err, tagcodec.ErrWriteFailure) {
			err = fmt.Errorf("%w: %w", tagcodec.ErrWriteFailure, err)
		}
		return Identity{}, false, err
	}
	if err = f.Save(); err != nil {
		if !errors.Is(err, tagcodec.ErrSave) {
			err = fmt.Errorf("%w: %w", tagcodec.ErrSave, err)
		}
		return Identity{}, false, err
	}
	return id, true, nil
}
