package identity

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/it-a-me/bongo/internal/tagcodec"
	"github.com/it-a-me/bongo/internal/testsupport"
)

type memoryFields struct {
	values  map[tagcodec.Key]string
	saves   int
	setErr  error
	saveErr error
}

func (m *memoryFields) Get(key tagcodec.Key) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *memoryFields) Set(key tagcodec.Key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memoryFields) Save() error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	return nil
}

func TestResolveAssignsOnce(t *testing.T) {
	fields := &memoryFields{values: map[tagcodec.Key]string{}}
	resolver := NewResolver()

	first, assigned, err := resolver.Resolve(fields, true)
	if err != nil {
		t.Fatal(err)
	}
	if !assigned || first.IsZero() {
		t.Fatalf("expected fresh identity, got %v (assigned=%v)", first, assigned)
	}
	if fields.saves != 1 {
		t.Fatalf("expected one save, got %d", fields.saves)
	}

	second, assigned, err := resolver.Resolve(fields, true)
	if err != nil {
		t.Fatal(err)
	}
	if assigned {
		t.Error("identity assigned twice")
	}
	if second != first {
		t.Errorf("identity changed from %v to %v", first, second)
	}
	if fields.saves != 1 {
		t.Errorf("resolving an identified file wrote it again (%d saves)", fields.saves)
	}
}

func TestResolveTreatsBlankFieldAsMissing(t *testing.T) {
	for _, blank := range []string{"", "   "} {
		fields := &memoryFields{values: map[tagcodec.Key]string{Field: blank}}

		if _, _, err := NewResolver().Resolve(fields, false); !errors.Is(err, ErrMissingIdentity) {
			t.Errorf("%q without assignment: expected missing identity, got %v", blank, err)
		}
		id, assigned, err := NewResolver().Resolve(fields, true)
		if err != nil {
			t.Fatalf("%q: %v", blank, err)
		}
		if !assigned || fields.values[Field] != id.String() {
			t.Errorf("%q: identity not written, field is %q", blank, fields.values[Field])
		}
	}
}

func TestResolveFailures(t *testing.T) {
	diskFull := errors.New("disk full")
	tests := []struct {
		name     string
		fields   *memoryFields
		assign   bool
		expected error
	}{
		{"missing without assignment", &memoryFields{values: map[tagcodec.Key]string{}}, false, ErrMissingIdentity},
		{"garbage identity", &memoryFields{values: map[tagcodec.Key]string{Field: "not-a-uuid"}}, true, ErrInvalidIdentity},
		{"rejected field", &memoryFields{values: map[tagcodec.Key]string{}, setErr: errors.New("nope")}, true, tagcodec.ErrWriteFailure},
		{"save failure", &memoryFields{values: map[tagcodec.Key]string{}, saveErr: diskFull}, true, tagcodec.ErrSave},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, assigned, err := NewResolver().Resolve(tt.fields, tt.assign)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			if assigned {
				t.Error("failed resolution reported an assignment")
			}
		})
	}
}

func TestResolvePersistsIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	testsupport.WriteFLAC(t, path, testsupport.Fields{"TITLE": "x"})

	container, err := tagcodec.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	id, _, err := NewResolver().Resolve(container, true)
	if err != nil {
		t.Fatal(err)
	}

	reopened, err := tagcodec.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	again, assigned, err := NewResolver().Resolve(reopened, false)
	if err != nil {
		t.Fatal(err)
	}
	if assigned || again != id {
		t.Errorf("expected %v from disk, got %v (assigned=%v)", id, again, assigned)
	}
}

func TestBinaryForm(t *testing.T) {
	id := New()
	back, err := FromBytes(id.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Errorf("binary form changed identity: %v != %v", back, id)
	}
	if _, err := FromBytes([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidIdentity) {
		t.Errorf("short input accepted: %v", err)
	}
}
