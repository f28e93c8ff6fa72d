package activity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/store"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testEntry(id, variantID, category, weight, summary string, daysAgo int) Entry {
	return Entry{
		EventID:    id,
		EventType:  "variant_updated",
		OccurredAt: base.AddDate(0, 0, -daysAgo),
		VariantID:  variantID,
		Actor:      "alice",
		Source:     "user",
		Summary:    summary,
		Categories: []string{category},
		Weight:     weight,
	}
}

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "activity.db") + "?_pragma=foreign_keys(1)"
	vs, err := store.OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { vs.Close() })
	s := NewSQLStore(vs.Driver())
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, openSQLite(t)) })
}

func seed(t *testing.T, s Store, entries ...Entry) {
	t.Helper()
	if err := s.WriteEntries(context.Background(), entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}
}

func TestStore_WriteAndQuery(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		seed(t, s,
			testEntry("e1", "v1", CategoryPricing, WeightModerate, "Base price changed", 10),
			testEntry("e2", "v1", CategorySpecifications, WeightInfo, "Specifications changed", 5),
			testEntry("e3", "v2", CategoryPricing, WeightModerate, "Base price changed", 10),
		)

		results, next, total, err := s.QueryByVariant(context.Background(), "v1", QueryOptions{})
		if err != nil {
			t.Fatalf("QueryByVariant: %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		if len(results) != 2 {
			t.Fatalf("results = %d, want 2", len(results))
		}
		if results[0].EventID != "e2" {
			t.Errorf("first result = %s, want e2 (newest first)", results[0].EventID)
		}
		if !results[1].OccurredAt.Equal(base.AddDate(0, 0, -10)) {
			t.Errorf("occurred_at = %v, want %v", results[1].OccurredAt, base.AddDate(0, 0, -10))
		}
		if next != "" {
			t.Errorf("nextCursor = %q, want empty", next)
		}
	})
}

func TestStore_DuplicateEventIgnored(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		e := testEntry("e1", "v1", CategoryPricing, WeightModerate, "Base price changed", 1)
		seed(t, s, e)
		seed(t, s, e)

		_, _, total, err := s.QueryByVariant(context.Background(), "v1", QueryOptions{})
		if err != nil {
			t.Fatalf("QueryByVariant: %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}
	})
}

func TestStore_QueryFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		seed(t, s,
			testEntry("e1", "v1", CategoryPricing, WeightModerate, "Base price changed", 30),
			testEntry("e2", "v1", CategorySpecifications, WeightInfo, "Specifications changed", 20),
			testEntry("e3", "v1", CategoryLifecycle, WeightSignificant, "Variant deleted", 1),
		)
		ctx := context.Background()

		tests := []struct {
			name string
			opts QueryOptions
			want int
		}{
			{"category", QueryOptions{Categories: []string{CategoryPricing, CategoryLifecycle}}, 2},
			{"min weight", QueryOptions{MinWeight: WeightModerate}, 2},
			{"significant only", QueryOptions{MinWeight: WeightSignificant}, 1},
			{"since", QueryOptions{Since: ptr(base.AddDate(0, 0, -25))}, 2},
			{"until", QueryOptions{Until: ptr(base.AddDate(0, 0, -25))}, 1},
		}
		for _, tt := range tests {
			results, _, total, err := s.QueryByVariant(ctx, "v1", tt.opts)
			if err != nil {
				t.Fatalf("%s: QueryByVariant: %v", tt.name, err)
			}
			if total != tt.want || len(results) != tt.want {
				t.Errorf("%s: total = %d, results = %d, want %d", tt.name, total, len(results), tt.want)
			}
		}
	})
}

func TestStore_CursorPagination(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		// e2 and e3 share a timestamp; the cursor must not skip either.
		seed(t, s,
			testEntry("e1", "v1", CategoryPricing, WeightModerate, "a", 3),
			testEntry("e2", "v1", CategoryPricing, WeightModerate, "b", 2),
			testEntry("e3", "v1", CategoryPricing, WeightModerate, "c", 2),
			testEntry("e4", "v1", CategoryPricing, WeightModerate, "d", 1),
		)
		ctx := context.Background()

		var got []string
		cursor := ""
		for page := 0; page < 10; page++ {
			results, next, total, err := s.QueryByVariant(ctx, "v1", QueryOptions{Limit: 2, Cursor: cursor})
			if err != nil {
				t.Fatalf("QueryByVariant: %v", err)
			}
			if total != 4 {
				t.Errorf("total = %d, want 4", total)
			}
			for _, r := range results {
				got = append(got, r.EventID)
			}
			if next == "" {
				break
			}
			cursor = next
		}
		want := []string{"e4", "e3", "e2", "e1"}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got %v, want %v", got, want)
				break
			}
		}

		_, _, _, err := s.QueryByVariant(ctx, "v1", QueryOptions{Cursor: "garbage"})
		if !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("err = %v, want ErrInvalidCursor", err)
		}
	})
}

func TestStore_Search(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		bob := testEntry("e3", "v2", CategoryPricing, WeightModerate, "Base price changed by bob", 1)
		bob.Actor = "bob"
		seed(t, s,
			testEntry("e1", "v1", CategoryPricing, WeightModerate, "Base price changed by alice", 10),
			testEntry("e2", "v1", CategoryIdentity, WeightInfo, "Renamed by alice", 5),
			bob,
		)
		ctx := context.Background()

		results, total, err := s.Search(ctx, "PRICE", SearchOptions{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if total != 2 || len(results) != 2 {
			t.Errorf("total = %d, results = %d, want 2", total, len(results))
		}

		results, total, err = s.Search(ctx, "price", SearchOptions{Actor: "bob"})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if total != 1 || results[0].EventID != "e3" {
			t.Errorf("actor filter: total = %d, results = %v", total, results)
		}

		results, _, err = s.Search(ctx, "by", SearchOptions{Limit: 1})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("limit: results = %d, want 1", len(results))
		}
	})
}

func ptr[T any](v T) *T { return &v }
