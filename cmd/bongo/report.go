package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/it-a-me/bongo"
)

// presentReport logs one record per event and, unless quiet, prints a summary of the counts.
func (c *commandContext) presentReport(handle bongo.Bongo, report *bongo.Report) {
	logReport(c.logger, handle, report)
	if handle != nil && !c.options.quiet {
		handle.PrintSummary(report)
	}
}

func logReport(logger *slog.Logger, handle bongo.Bongo, report *bongo.Report) {
	if report == nil {
		return
	}
	display := func(path string) string {
		if handle == nil || path == "" {
			return path
		}
		return handle.DisplayPath(path)
	}
	for _, event := range report.Events {
		attrs := []any{}
		if event.Path != "" {
			attrs = append(attrs, "path", display(event.Path))
		}
		if event.From != "" {
			attrs = append(attrs, "from", display(event.From))
		}
		if !event.ID.IsZero() {
			attrs = append(attrs, "id", event.ID.String())
		}
		if event.Kind == bongo.TagsCleaned {
			attrs = append(attrs, "fields", event.Fields)
		}
		level := slog.LevelInfo
		if event.Kind == bongo.Unidentified {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, fmt.Sprintf("[%c] %s", rune(event.Kind), event.Kind), attrs...)
	}
}
