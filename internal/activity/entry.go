package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for a malformed page cursor.
var ErrInvalidCursor = errors.New("invalid cursor")

// Entry is one item of a variant's history.
type Entry struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	VariantID  string    `json:"variant_id"`
	Actor      string    `json:"actor"`
	Source     string    `json:"source"`
	Summary    string    `json:"summary"`
	Categories []string  `json:"categories"`
	Weight     string    `json:"weight"`
	Changed    []string  `json:"changed,omitempty"`
}

// Store reads and writes history entries.
type Store interface {
	// WriteEntries stores entries. Entries whose event id is already
	// stored are ignored.
	WriteEntries(ctx context.Context, entries []Entry) error

	// QueryByVariant returns a variant's entries, newest first.
	QueryByVariant(ctx context.Context, variantID string, opts QueryOptions) (entries []Entry, nextCursor string, totalCount int, err error)

	// Search matches summaries case-insensitively, newest first.
	Search(ctx context.Context, query string, opts SearchOptions) (entries []Entry, totalCount int, err error)
}

// cursorLayout is fixed-width so encoded times sort as strings.
const cursorLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) string {
	return t.UTC().Format(cursorLayout)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(cursorLayout, s)
}

// position is a decoded page cursor: the last entry of the previous page.
type position struct {
	at      time.Time
	eventID string
}

// before reports whether e sorts after the cursor position, i.e. belongs
// to the next page.
func (p *position) before(e Entry) bool {
	if !e.OccurredAt.Equal(p.at) {
		return e.OccurredAt.Before(p.at)
	}
	return e.EventID < p.eventID
}

func cursorOf(e Entry) string {
	return encodeTime(e.OccurredAt) + "|" + e.EventID
}

func parseCursor(s string) (*position, error) {
	if s == "" {
		return nil, nil
	}
	ts, id, ok := strings.Cut(s, "|")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	at, err := decodeTime(ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	return &position{at: at, eventID: id}, nil
}
