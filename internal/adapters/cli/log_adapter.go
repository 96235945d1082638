package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/dealerops/internal/ports/primary"
)

// LogAdapter translates CLI operations to LogService calls.
type LogAdapter struct {
	service primary.LogService
	out     io.Writer
}

// NewLogAdapter creates a new LogAdapter with the given service.
func NewLogAdapter(service primary.LogService, out io.Writer) *LogAdapter {
	return &LogAdapter{service: service, out: out}
}

// List prints matching audit entries, oldest first.
func (a *LogAdapter) List(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	entries, err := a.service.ListLogs(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No log entries found.")
		return entries, nil
	}

	for i := len(entries) - 1; i >= 0; i-- {
		a.printEntry(entries[i])
	}
	return entries, nil
}

func (a *LogAdapter) printEntry(entry *primary.LogEntry) {
	actor := entry.ActorID
	if actor == "" {
		actor = "-"
	}

	fmt.Fprintf(a.out, "%s | %-12s | %s %s | %s/%s",
		formatTimestamp(entry.CreatedAt),
		actor,
		actionIcon(entry.Action),
		entry.Action,
		entry.EntityType,
		entry.EntityID,
	)
	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Fprintf(a.out, " | %s: %s -> %s", entry.FieldName, entry.OldValue, entry.NewValue)
	}
	fmt.Fprintln(a.out)
}

// Prune deletes entries older than days.
func (a *LogAdapter) Prune(ctx context.Context, days int) (int, error) {
	count, err := a.service.PruneLogs(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("failed to prune logs: %w", err)
	}
	if count == 0 {
		fmt.Fprintf(a.out, "No log entries older than %d days found.\n", days)
	} else {
		fmt.Fprintf(a.out, "Pruned %d log entries older than %d days.\n", count, days)
	}
	return count, nil
}

func actionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
