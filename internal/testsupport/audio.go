package testsupport

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// Fields maps upper-case Vorbis style field names to values.
type Fields map[string]string

var id3Native = map[string]string{
	"TITLE":  "TIT2",
	"ARTIST": "TPE1",
	"ALBUM":  "TALB",
	"GENRE":  "TCON",
}

// audioPayload stands in for encoded audio: one MPEG frame header and silence.
// It must be longer than an ID3v2 header because id3v2 reads that much before deciding the file is untagged.
var audioPayload = append([]byte{0xff, 0xfb, 0x90, 0x64}, make([]byte, 508)...)

func mkdirFor(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
}

// WriteMP3 creates an audio file carrying an ID3v2 tag of the given version (3 or 4) with the given fields.
// Known fields use native text frames, everything else is written as user defined text.
func WriteMP3(t testing.TB, path string, version byte, fields Fields) {
	t.Helper()
	mkdirFor(t, path)
	if err := os.WriteFile(path, audioPayload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tag of %s: %v", path, err)
	}
	defer tag.Close()

	tag.SetVersion(version)
	for _, name := range sortedNames(fields) {
		value := fields[name]
		if frame, ok := id3Native[name]; ok {
			tag.AddTextFrame(frame, tag.DefaultEncoding(), value)
			continue
		}
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    tag.DefaultEncoding(),
			Description: name,
			Value:       value,
		})
	}
	if err := tag.Save(); err != nil {
		t.Fatalf("save tag of %s: %v", path, err)
	}
}

// WriteFLAC creates a minimal FLAC stream with a Vorbis comment block holding the given fields.
func WriteFLAC(t testing.TB, path string, fields Fields) {
	t.Helper()
	lines := make([]string, 0, len(fields))
	for _, name := range sortedNames(fields) {
		lines = append(lines, name+"="+fields[name])
	}
	WriteFLACComments(t, path, lines)
}

// WriteFLACComments is WriteFLAC with raw NAME=value comments, so a name may repeat.
func WriteFLACComments(t testing.TB, path string, lines []string) {
	t.Helper()
	mkdirFor(t, path)

	comments := flacvorbis.New()
	comments.Comments = append(comments.Comments, lines...)
	block := comments.Marshal()
	stream := &flac.File{
		Meta: []*flac.MetaDataBlock{
			{Type: flac.StreamInfo, Data: make([]byte, 34)},
			&block,
		},
	}
	data := append(stream.Marshal(), audioPayload...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteGarbage creates a file no codec can parse.
func WriteGarbage(t testing.TB, path string) {
	t.Helper()
	mkdirFor(t, path)
	if err := os.WriteFile(path, []byte("this is not an audio file at all"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func sortedNames(fields Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
