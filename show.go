package bongo

import (
	"errors"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"

	"github.com/it-a-me/bongo/internal/output"
	"github.com/it-a-me/bongo/internal/tagcodec"
)

type shownFile struct {
	Container string            `json:"container" toml:"container"`
	FileType  string            `json:"file_type,omitempty" toml:"file_type,omitempty"`
	Size      string            `json:"size" toml:"size"`
	Fields    map[string]string `json:"fields" toml:"fields"`
}

// Show prints the tag fields of the given files, keyed by path, as TOML (or JSON).
// Files that cannot be parsed or carry no tags are skipped and returned as failures; any other error aborts.
func Show(out io.Writer, paths []string, asJSON bool) (failures []error, err error) {
	shown := make(map[string]shownFile, len(paths))
	for _, path := range paths {
		file, err := describe(path)
		if errors.Is(err, tagcodec.ErrParse) || errors.Is(err, tagcodec.ErrUntagged) || errors.Is(err, tagcodec.ErrUnsupportedFormat) {
			failures = append(failures, err)
			continue
		}
		if err != nil {
			return failures, newCommandError("show error", err)
		}
		shown[path] = file
	}
	if len(shown) == 0 {
		return failures, nil
	}

	var encoded []byte
	if asJSON {
		encoded, err = json.MarshalIndent(shown, "", "  ")
		encoded = append(encoded, '\n')
	} else {
		encoded, err = toml.Marshal(shown)
	}
	if err != nil {
		return failures, newCommandError("show encode error", err)
	}
	printer := output.NewPrinterTo([]output.Class{output.Required}, false, out, io.Discard)
	printer.Out(output.Required, "%s", encoded)
	return failures, nil
}

func describe(path string) (shownFile, error) {
	container, err := tagcodec.Open(path)
	if err != nil {
		return shownFile{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return shownFile{}, tagcodec.At(path, err)
	}
	file := shownFile{
		Container: container.Format(),
		Size:      output.Filesize(info.Size()),
		Fields:    tagcodec.Fields(container),
	}
	if description, err := tagcodec.Describe(path); err == nil {
		file.FileType = description.FileType
	}
	return file, nil
}
