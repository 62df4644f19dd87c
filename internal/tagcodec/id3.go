package tagcodec

import (
	"fmt"
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"
)

const userTextFrame = "TXXX"

var id3Frames = map[Key]string{
	Title:       "TIT2",
	Artist:      "TPE1",
	Album:       "TALB",
	AlbumArtist: "TPE2",
	TrackNumber: "TRCK",
	DiscNumber:  "TPOS",
	Genre:       "TCON",
	Date:        "TDRC",
	Composer:    "TCOM",
}

var id3Keys = func() map[string]Key {
	keys := make(map[string]Key, len(id3Frames))
	for key, frame := range id3Frames {
		keys[frame] = key
	}
	return keys
}()

// id3Container keeps a detached copy of the tag; Save re-reads the file to splice the tag back in.
type id3Container struct {
	path string
	tag  *id3v2.Tag
}

func openID3(path string) (Container, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer file.Close()

	tag, err := id3v2.ParseReader(file, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if !tag.HasFrames() {
		return nil, ErrUntagged
	}
	return &id3Container{path: path, tag: tag}, nil
}

func (c *id3Container) Path() string {
	return c.path
}

func (c *id3Container) Format() string {
	return fmt.Sprintf("ID3v2.%d", c.tag.Version())
}

// textFrameID maps a key to a native text frame ID. Keys without one are stored as user defined text.
func textFrameID(key Key) (string, bool) {
	if frame, ok := id3Frames[key]; ok {
		return frame, true
	}
	name := string(key)
	if len(name) == 4 && name[0] == 'T' && name != userTextFrame && strings.ToUpper(name) == name {
		return name, true
	}
	return "", false
}

func (c *id3Container) Get(key Key) (string, bool) {
	if frame, ok := textFrameID(key); ok {
		for _, f := range c.tag.GetFrames(frame) {
			if text, ok := f.(id3v2.TextFrame); ok {
				return text.Text, true
			}
		}
		return "", false
	}
	for _, f := range c.tag.GetFrames(userTextFrame) {
		if udtf, ok := f.(id3v2.UserDefinedTextFrame); ok && strings.EqualFold(udtf.Description, string(key)) {
			return udtf.Value, true
		}
	}
	return "", false
}

func (c *id3Container) Set(key Key, value string) error {
	if key == "" {
		return writeFailure(key, "empty field name")
	}
	if strings.ContainsRune(value, 0) {
		return writeFailure(key, "value contains a NUL byte")
	}
	// v2.3 and older cannot carry UTF-8 text
	if c.tag.Version() < 4 {
		c.tag.SetVersion(4)
	}
	if frame, ok := textFrameID(key); ok {
		c.tag.DeleteFrames(frame)
		c.tag.AddTextFrame(frame, c.tag.DefaultEncoding(), value)
		return nil
	}
	c.removeUserText(key)
	c.tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    c.tag.DefaultEncoding(),
		Description: string(key),
		Value:       value,
	})
	return nil
}

func (c *id3Container) Remove(key Key) bool {
	if frame, ok := textFrameID(key); ok {
		present := len(c.tag.GetFrames(frame)) > 0
		c.tag.DeleteFrames(frame)
		return present
	}
	return c.removeUserText(key)
}

func (c *id3Container) removeUserText(key Key) (removed bool) {
	frames := c.tag.GetFrames(userTextFrame)
	if len(frames) == 0 {
		return false
	}
	c.tag.DeleteFrames(userTextFrame)
	for _, f := range frames {
		if udtf, ok := f.(id3v2.UserDefinedTextFrame); ok && strings.EqualFold(udtf.Description, string(key)) {
			removed = true
			continue
		}
		c.tag.AddFrame(userTextFrame, f)
	}
	return
}

func (c *id3Container) RemoveBlank() (removed int) {
	for id, frames := range c.tag.AllFrames() {
		kept := make([]id3v2.Framer, 0, len(frames))
		for _, f := range frames {
			if value, isText := frameText(f); isText && isBlank(value) {
				removed++
				continue
			}
			kept = append(kept, f)
		}
		if len(kept) == len(frames) {
			continue
		}
		c.tag.DeleteFrames(id)
		for _, f := range kept {
			c.tag.AddFrame(id, f)
		}
	}
	return
}

func frameText(f id3v2.Framer) (string, bool) {
	switch frame := f.(type) {
	case id3v2.TextFrame:
		return frame.Text, true
	case id3v2.UserDefinedTextFrame:
		return frame.Value, true
	}
	return "", false
}

func (c *id3Container) Items() []Item {
	var items []Item
	for id, frames := range c.tag.AllFrames() {
		for _, f := range frames {
			switch frame := f.(type) {
			case id3v2.TextFrame:
				key, known := id3Keys[id]
				if !known {
					key = Key(id)
				}
				items = append(items, Item{Key: key, Value: frame.Text})
			case id3v2.UserDefinedTextFrame:
				items = append(items, Item{Key: NormalizeKey(frame.Description), Value: frame.Value})
			}
		}
	}
	sortItems(items)
	return items
}

func (c *id3Container) Save() error {
	onDisk, err := id3v2.Open(c.path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	defer onDisk.Close()

	onDisk.DeleteAllFrames()
	for id, frames := range c.tag.AllFrames() {
		for _, f := range frames {
			onDisk.AddFrame(id, f)
		}
	}
	onDisk.SetVersion(c.tag.Version())
	if err := onDisk.Save(); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}
