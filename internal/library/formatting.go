package library

import "github.com/it-a-me/bongo/internal/output"

func ColorForEvent(kind EventKind) output.SgrModifier {
	switch kind {
	case EntryAdded, IdentityAssigned, LibraryCreated:
		return output.Cyan //color of progress
	case EntryRelocated, FileMoved, FileCopied, TagsCleaned:
		return output.Green //color of good news (harmless)
	case Unidentified:
		return output.Yellow //color of attention
	case EntryPruned:
		return output.Magenta //color of waste
	default:
		return output.DefaultForeground
	}
}
