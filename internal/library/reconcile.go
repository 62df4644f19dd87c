package library

import (
	"context"

	"github.com/it-a-me/bongo/internal/identity"
	"github.com/it-a-me/bongo/internal/index"
	"github.com/it-a-me/bongo/internal/song"
	"github.com/it-a-me/bongo/internal/tagcodec"
)

// Update synchronizes the index with the current song set in four fixed steps:
// assign missing identities (only if assign is set), record new and moved songs,
// prune entries whose song is gone, and strip blank tag fields.
// Steps two and three run in separate transactions; a crash in between leaves
// stale entries that the next Update prunes.
func (l *Library) Update(ctx context.Context, assign bool) (*Report, error) {
	report := &Report{}
	if err := l.ensureScanned(); err != nil {
		return report, err
	}

	identified, err := l.assignIdentities(report, assign)
	if err != nil {
		return report, err
	}
	if err := l.recordLocations(ctx, report, identified); err != nil {
		return report, err
	}
	if err := l.pruneStale(ctx, report, identified); err != nil {
		return report, err
	}
	if err := l.cleanTags(report); err != nil {
		return report, err
	}
	return report, nil
}

func (l *Library) assignIdentities(report *Report, assign bool) (identified []*song.Song, err error) {
	for _, s := range l.songs {
		if !s.Identified() && assign {
			id, assigned, err := l.resolver.Resolve(s.Tags, true)
			if err != nil {
				return nil, tagcodec.At(s.Path, err)
			}
			s.SetID(id)
			if assigned {
				report.add(Event{Kind: IdentityAssigned, ID: id, Path: s.Path})
			}
		}
		if !s.Identified() {
			report.add(Event{Kind: Unidentified, Path: s.Path})
			continue
		}
		identified = append(identified, s)
	}
	return
}

func (l *Library) recordLocations(ctx context.Context, report *Report, identified []*song.Song) error {
	var events []Event
	err := l.index.WithWriteTransaction(ctx, func(tx *index.Tx) error {
		for _, s := range identified {
			current, err := s.RelativePath(l.root)
			if err != nil {
				return tagcodec.At(s.Path, err)
			}
			entry, found, err := tx.Get(*s.ID)
			if err != nil {
				return err
			}
			switch {
			case !found:
				if _, err := tx.InsertIfAbsent(*s.ID, index.Entry{Path: current}); err != nil {
					return err
				}
				events = append(events, Event{Kind: EntryAdded, ID: *s.ID, Path: s.Path})
			case !entry.Path.Equal(current):
				if err := tx.Put(*s.ID, index.Entry{Path: current}); err != nil {
					return err
				}
				events = append(events, Event{Kind: EntryRelocated, ID: *s.ID, Path: s.Path, From: entry.Path.Rebase(l.root)})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	report.Events = append(report.Events, events...)
	return nil
}

func (l *Library) pruneStale(ctx context.Context, report *Report, identified []*song.Song) error {
	present := make(map[identity.Identity]bool, len(identified))
	for _, s := range identified {
		present[*s.ID] = true
	}

	var events []Event
	err := l.index.WithWriteTransaction(ctx, func(tx *index.Tx) error {
		records, err := tx.All()
		if err != nil {
			return err
		}
		for _, record := range records {
			if present[record.ID] {
				continue
			}
			removed, found, err := tx.Remove(record.ID)
			if err != nil {
				return err
			}
			if found {
				events = append(events, Event{Kind: EntryPruned, ID: record.ID, Path: removed.Path.Rebase(l.root)})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	report.Events = append(report.Events, events...)
	return nil
}

func (l *Library) cleanTags(report *Report) error {
	for _, s := range l.songs {
		removed := tagcodec.RemoveEmpty(s.Tags)
		if removed == 0 {
			continue
		}
		if err := s.Tags.Save(); err != nil {
			return tagcodec.At(s.Path, err)
		}
		event := Event{Kind: TagsCleaned, Path: s.Path, Fields: removed}
		if s.ID != nil {
			event.ID = *s.ID
		}
		report.add(event)
	}
	return nil
}
