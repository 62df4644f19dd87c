package tagcodec

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/it-a-me/bongo/internal/fileutil"
)

// flacContainer holds only the Vorbis comment block; audio frames are read again on Save.
type flacContainer struct {
	path     string
	comments *flacvorbis.MetaDataBlockVorbisComment
}

func openFLAC(path string) (Container, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer file.Close()

	meta, err := flac.ParseMetadata(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	for _, block := range meta.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		comments, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return &flacContainer{path: path, comments: comments}, nil
	}
	return nil, ErrUntagged
}

func (c *flacContainer) Path() string {
	return c.path
}

func (c *flacContainer) Format() string {
	return "VorbisComments"
}

func splitComment(comment string) (Key, string) {
	name, value, _ := strings.Cut(comment, "=")
	return NormalizeKey(name), value
}

func (c *flacContainer) Get(key Key) (string, bool) {
	for _, comment := range c.comments.Comments {
		if name, value := splitComment(comment); name == key {
			return value, true
		}
	}
	return "", false
}

func validVorbisName(key Key) bool {
	if key == "" {
		return false
	}
	for _, r := range string(key) {
		if r < 0x20 || r > 0x7d || r == '=' {
			return false
		}
	}
	return true
}

func (c *flacContainer) Set(key Key, value string) error {
	if !validVorbisName(key) {
		return writeFailure(key, "not a valid Vorbis comment field name")
	}
	c.Remove(key)
	c.comments.Comments = append(c.comments.Comments, string(key)+"="+value)
	return nil
}

func (c *flacContainer) Remove(key Key) (removed bool) {
	kept := c.comments.Comments[:0]
	for _, comment := range c.comments.Comments {
		if name, _ := splitComment(comment); name == key {
			removed = true
			continue
		}
		kept = append(kept, comment)
	}
	c.comments.Comments = kept
	return
}

func (c *flacContainer) RemoveBlank() (removed int) {
	kept := c.comments.Comments[:0]
	for _, comment := range c.comments.Comments {
		if _, value := splitComment(comment); isBlank(value) {
			removed++
			continue
		}
		kept = append(kept, comment)
	}
	c.comments.Comments = kept
	return
}

func (c *flacContainer) Items() []Item {
	items := make([]Item, 0, len(c.comments.Comments))
	for _, comment := range c.comments.Comments {
		key, value := splitComment(comment)
		items = append(items, Item{Key: key, Value: value})
	}
	sortItems(items)
	return items
}

func (c *flacContainer) Save() error {
	file, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	full, err := flac.ParseBytes(bufio.NewReader(file))
	file.Close()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	block := c.comments.Marshal()
	replaced := false
	for i, existing := range full.Meta {
		if existing.Type == flac.VorbisComment {
			full.Meta[i] = &block
			replaced = true
			break
		}
	}
	if !replaced {
		full.Meta = append(full.Meta, &block)
	}

	if err := fileutil.WriteFileAtomic(c.path, full.Marshal()); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}
