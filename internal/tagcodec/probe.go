package tagcodec

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Description is a read-only summary of a file as seen by a generic tag reader.
type Description struct {
	Format   string
	FileType string
}

// Describe identifies the tag format and file type without going through a codec.
func Describe(path string) (Description, error) {
	file, err := os.Open(path)
	if err != nil {
		return Description{}, At(path, fmt.Errorf("%w: %w", ErrParse, err))
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			return Description{}, At(path, ErrUntagged)
		}
		return Description{}, At(path, fmt.Errorf("%w: %w", ErrParse, err))
	}
	return Description{
		Format:   string(metadata.Format()),
		FileType: string(metadata.FileType()),
	}, nil
}
