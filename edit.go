package bongo

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/tagcodec"
)

var ErrIdentityLocked = errors.New("the identity field cannot be edited")

// EditConfig controls the external editor round trip of Edit.
type EditConfig struct {
	Editor string                           //command line of the editor, the draft path is appended
	Launch func(editor, draft string) error //defaults to RunEditor
	Prompt RequestChoice                    //asked whether to retry after malformed input, no retry if nil
}

// RunEditor starts the editor on the draft file attached to the current terminal and waits for it to exit.
func RunEditor(editor string, draft string) error {
	args := strings.Fields(editor)
	if len(args) == 0 {
		return fmt.Errorf("no editor configured")
	}
	cmd := exec.Command(args[0], append(args[1:], draft)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Edit writes the tag fields of the file to a TOML draft, lets the user change it in an external editor,
// and applies the result: changed and new fields are set, deleted fields are removed, and the file is saved.
// Malformed drafts can be edited again. The number of changed fields is returned.
func Edit(path string, config EditConfig) (changed int, err error) {
	container, err := tagcodec.Open(path)
	if err != nil {
		return 0, newCommandError("edit error", err)
	}
	original := tagcodec.Fields(container)

	draftPath, err := writeDraft(original)
	if err != nil {
		return 0, newCommandError("draft error", err)
	}
	defer os.Remove(draftPath)

	launch := config.Launch
	if launch == nil {
		launch = RunEditor
	}

	var edited map[string]string
	for {
		if err := launch(config.Editor, draftPath); err != nil {
			return 0, newCommandError("editor error", err)
		}
		edited, err = readDraft(draftPath, original)
		if err == nil {
			break
		}
		if config.Prompt == nil {
			return 0, newCommandError("edit aborted", err)
		}
		if choice := config.Prompt(fmt.Sprintf("Malformed input (%v). Edit again?", err), []string{"yes", "no"}, false); choice != "yes" {
			return 0, newCommandError("edit aborted", err)
		}
	}

	for _, name := range sortedFieldNames(edited) {
		if previous, present := original[name]; present && previous == edited[name] {
			continue
		}
		if err := container.Set(tagcodec.Key(name), edited[name]); err != nil {
			return 0, newCommandError("edit error", tagcodec.At(path, err))
		}
		changed++
	}
	for _, name := range sortedFieldNames(original) {
		if _, kept := edited[name]; !kept && container.Remove(tagcodec.Key(name)) {
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if err := container.Save(); err != nil {
		return 0, newCommandError("edit error", tagcodec.At(path, err))
	}
	return changed, nil
}

func writeDraft(fields map[string]string) (string, error) {
	encoded, err := toml.Marshal(fields)
	if err != nil {
		return "", err
	}
	draft, err := os.CreateTemp("", "bongo-edit-*.toml")
	if err != nil {
		return "", err
	}
	if _, err := draft.Write(encoded); err != nil {
		draft.Close()
		os.Remove(draft.Name())
		return "", err
	}
	if err := draft.Close(); err != nil {
		os.Remove(draft.Name())
		return "", err
	}
	return draft.Name(), nil
}

func readDraft(draftPath string, original map[string]string) (map[string]string, error) {
	content, err := os.ReadFile(draftPath)
	if err != nil {
		return nil, err
	}
	var decoded map[string]interface{}
	if err := toml.Unmarshal(content, &decoded); err != nil {
		return nil, err
	}

	edited := make(map[string]string, len(decoded))
	for name, value := range decoded {
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %s must be a string, got %T", name, value)
		}
		key := string(tagcodec.NormalizeKey(name))
		if key == "" {
			return nil, fmt.Errorf("empty field name")
		}
		edited[key] = text
	}

	field := string(identity.Field)
	before, hadIdentity := original[field]
	after, hasIdentity := edited[field]
	if hadIdentity != hasIdentity || before != after {
		return nil, ErrIdentityLocked
	}
	return edited, nil
}

func sortedFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
