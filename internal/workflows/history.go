package workflows

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hocktide/v-c-tool/internal/audit"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// HistoryOptions configures the history workflow.
type HistoryOptions struct {
	// Limit keeps only the most recent Limit entries. 0 means no limit.
	Limit int

	// Reverse lists the most recent entry first.
	Reverse bool

	// Operations keeps only entries with one of these operations.
	Operations []string

	// Entity keeps only entries whose entity id starts with this prefix.
	Entity string

	// Since keeps entries on or after this date (YYYY-MM-DD).
	Since string
}

// HistoryResult contains the outcome of a history query.
type HistoryResult struct {
	Entries []audit.Entry

	// Total is the number of entries in the log before filtering.
	Total int
}

// History reads and filters the key history log. A missing log yields an
// empty result.
func History(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	var since time.Time
	if opts.Since != "" {
		var err error
		since, err = time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since date %q, use YYYY-MM-DD", opts.Since)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("reading history log: %w", err)
	}

	result := &HistoryResult{Total: len(entries)}

	filtered := entries[:0:0]
	for _, entry := range entries {
		if len(opts.Operations) > 0 && !slices.ContainsFunc(opts.Operations, func(op string) bool {
			return strings.EqualFold(strings.TrimSpace(op), entry.Operation)
		}) {
			continue
		}
		if opts.Entity != "" && !strings.HasPrefix(entry.EntityID, strings.ToLower(opts.Entity)) {
			continue
		}
		if !since.IsZero() {
			ts, ok := parseTimestamp(entry.Timestamp)
			if !ok || ts.Before(since) {
				continue
			}
		}
		filtered = append(filtered, entry)
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[len(filtered)-opts.Limit:]
	}
	if opts.Reverse {
		slices.Reverse(filtered)
	}

	result.Entries = filtered
	return result, nil
}

func parseTimestamp(ts string) (time.Time, bool) {
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

// FormatDateTime formats an entry timestamp as "YYYY-MM-DD HH:MM:SS".
func FormatDateTime(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails describes what an entry did, for display next to its
// operation.
func FormatDetails(e audit.Entry) string {
	var parts []string
	if e.EntityID != "" {
		parts = append(parts, "entity="+shortID(e.EntityID))
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	if e.Source != "" {
		parts = append(parts, "from "+e.Source)
	}
	switch {
	case e.Encrypted:
		parts = append(parts, fmt.Sprintf("encrypted (%d rounds)", e.Rounds))
	case e.Operation != "pubkey":
		parts = append(parts, "unencrypted")
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
