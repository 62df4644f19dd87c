package bongo

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"

	"github.com/it-a-me/bongo/internal/library"
	"github.com/it-a-me/bongo/internal/output"
)

func (b *bongo) Update(assignIdentities bool) (*Report, error) {
	if err := b.lib.Rescan(false); err != nil {
		return nil, newCommandError("library scan error", err)
	}
	report, err := b.lib.Update(b.ctx, assignIdentities)
	if err != nil {
		return report, newCommandError("library update error", err)
	}
	return report, nil
}

func (b *bongo) Sort(options SortOptions) (*Report, error) {
	report, err := b.lib.Sort(b.ctx, options)
	if err != nil {
		return report, newCommandError("sort error", err)
	}
	return report, nil
}

func (b *bongo) PrintTracked(asTree bool) error {
	records, err := b.lib.Tracked(b.ctx)
	if err != nil {
		return newCommandError("index read error", err)
	}
	if asTree {
		tree := output.NewVisualFileTree(b.displayablePath(b.lib.Root(), true, false))
		for _, record := range records {
			tree.InsertPath(record.Entry.Path.String(), "")
		}
		b.printer.Out(output.Required, "%s", tree.Render())
		return nil
	}
	for _, record := range records {
		b.printer.Out(output.Required, "%s\n", b.displayablePath(record.Entry.Path.Rebase(b.lib.Root()), true, false))
	}
	return nil
}

type dumpedEntry struct {
	Identity string `json:"identity" toml:"identity"`
	Path     string `json:"path" toml:"path"`
}

func (b *bongo) PrintIndex(format DumpFormat) error {
	records, err := b.lib.Tracked(b.ctx)
	if err != nil {
		return newCommandError("index read error", err)
	}
	entries := make([]dumpedEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, dumpedEntry{Identity: record.ID.String(), Path: record.Entry.Path.String()})
	}

	switch format {
	case DumpTable, "":
		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, []string{entry.Identity, entry.Path})
		}
		b.printer.Out(output.Required, "%s\n", output.RenderTable([]string{"Identity", "Path"}, rows))
	case DumpTOML:
		byIdentity := make(map[string]string, len(entries))
		for _, entry := range entries {
			byIdentity[entry.Identity] = entry.Path
		}
		encoded, err := toml.Marshal(byIdentity)
		if err != nil {
			return newCommandError("index encode error", err)
		}
		b.printer.Out(output.Required, "%s", encoded)
	case DumpJSON:
		encoded, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return newCommandError("index encode error", err)
		}
		b.printer.Out(output.Required, "%s\n", encoded)
	default:
		return newCommandError(fmt.Sprintf("unknown dump format %q", format), nil)
	}
	return nil
}

type summaryLine struct {
	kind     EventKind
	singular string
	plural   string
}

var summaryLines = []summaryLine{
	{IdentityAssigned, "identity assigned", "identities assigned"},
	{EntryAdded, "entry added", "entries added"},
	{EntryRelocated, "entry relocated", "entries relocated"},
	{EntryPruned, "entry pruned", "entries pruned"},
	{TagsCleaned, "song cleaned", "songs cleaned"},
	{Unidentified, "song without identity", "songs without identity"},
	{FileMoved, "file moved", "files moved"},
	{FileCopied, "file copied", "files copied"},
}

func (b *bongo) PrintSummary(report *Report) {
	if report == nil {
		return
	}
	printed := false
	for _, line := range summaryLines {
		n := report.Count(line.kind)
		if n == 0 {
			continue
		}
		text := output.Indent(2, fmt.Sprintf("%c %s", rune(line.kind), output.Count(n, line.singular, line.plural)))
		b.printer.Colored(output.Required, library.ColorForEvent(line.kind), "%s", text)
		b.printer.Out(output.Required, "\n")
		printed = true
	}
	if !printed {
		b.printer.Out(output.Required, "%s\n", output.Indent(2, "nothing changed"))
	}
}
