package activity

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const activityTable = "variant_activity"

var entryColumns = []string{
	"event_id", "event_type", "occurred_at", "variant_id", "actor", "source",
	"summary", "categories", "weight", "changed",
}

// SQLStore implements Store on an ent SQL driver. The table lives next to
// the variants table but is not part of the ent schema; history rows are
// append-only and never loaded as entities.
type SQLStore struct {
	drv *entsql.Driver
}

// NewSQLStore creates a store on drv. Call Migrate before use.
func NewSQLStore(drv *entsql.Driver) *SQLStore {
	return &SQLStore{drv: drv}
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

// Migrate creates the history table and its index if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	table := s.builder().CreateTable(activityTable).IfNotExists()
	for _, c := range entryColumns {
		table.Column(entsql.Column(c).Type("text").Attr("NOT NULL"))
	}
	table.PrimaryKey("event_id")
	createTable, _ := table.Query()
	createIndex, _ := s.builder().CreateIndex(activityTable+"_variant_time").IfNotExists().
		Table(activityTable).
		Columns("variant_id", "occurred_at").
		Query()

	for _, stmt := range []string{createTable, createIndex} {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("running migration %q: %w", stmt, err)
		}
	}
	return nil
}

// WriteEntries inserts entries, skipping event ids already stored.
func (s *SQLStore) WriteEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ins := s.builder().Insert(activityTable).Columns(entryColumns...)
	for _, e := range entries {
		categories, err := json.Marshal(nonNil(e.Categories))
		if err != nil {
			return fmt.Errorf("encoding categories: %w", err)
		}
		changed, err := json.Marshal(nonNil(e.Changed))
		if err != nil {
			return fmt.Errorf("encoding changed fields: %w", err)
		}
		ins.Values(
			e.EventID, e.EventType, encodeTime(e.OccurredAt), e.VariantID, e.Actor, e.Source,
			e.Summary, string(categories), e.Weight, string(changed),
		)
	}
	query, args := ins.OnConflict(entsql.ConflictColumns("event_id"), entsql.DoNothing()).Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("writing activity entries: %w", err)
	}
	return nil
}

// variantPredicates builds the filters of a variant query, without the
// cursor.
func variantPredicates(variantID string, opts QueryOptions) []*entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("variant_id", variantID)}
	if opts.Since != nil {
		preds = append(preds, entsql.GTE("occurred_at", encodeTime(*opts.Since)))
	}
	if opts.Until != nil {
		preds = append(preds, entsql.LTE("occurred_at", encodeTime(*opts.Until)))
	}
	if len(opts.Categories) > 0 {
		or := make([]*entsql.Predicate, len(opts.Categories))
		for i, c := range opts.Categories {
			or[i] = entsql.Contains("categories", `"`+c+`"`)
		}
		preds = append(preds, entsql.Or(or...))
	}
	if opts.MinWeight != "" {
		weights := weightsAtLeast(opts.MinWeight)
		args := make([]any, len(weights))
		for i, w := range weights {
			args[i] = w
		}
		preds = append(preds, entsql.In("weight", args...))
	}
	return preds
}

func (s *SQLStore) QueryByVariant(ctx context.Context, variantID string, opts QueryOptions) ([]Entry, string, int, error) {
	after, err := parseCursor(opts.Cursor)
	if err != nil {
		return nil, "", 0, err
	}

	count := s.builder().Select(entsql.Count("*")).From(entsql.Table(activityTable))
	for _, p := range variantPredicates(variantID, opts) {
		count.Where(p)
	}
	total, err := s.count(ctx, count)
	if err != nil {
		return nil, "", 0, err
	}

	sel := s.builder().Select(entryColumns...).From(entsql.Table(activityTable))
	for _, p := range variantPredicates(variantID, opts) {
		sel.Where(p)
	}
	if after != nil {
		at := encodeTime(after.at)
		sel.Where(entsql.Or(
			entsql.LT("occurred_at", at),
			entsql.And(entsql.EQ("occurred_at", at), entsql.LT("event_id", after.eventID)),
		))
	}
	limit := opts.limit()
	query, args := sel.OrderBy(entsql.Desc("occurred_at"), entsql.Desc("event_id")).
		Limit(limit + 1).
		Query()
	entries, err := s.query(ctx, query, args)
	if err != nil {
		return nil, "", 0, err
	}

	var nextCursor string
	if len(entries) > limit {
		entries = entries[:limit]
		nextCursor = cursorOf(entries[len(entries)-1])
	}
	return entries, nextCursor, total, nil
}

func (s *SQLStore) Search(ctx context.Context, query string, opts SearchOptions) ([]Entry, int, error) {
	preds := func() []*entsql.Predicate {
		ps := []*entsql.Predicate{entsql.ContainsFold("summary", query)}
		if opts.EventType != "" {
			ps = append(ps, entsql.EQ("event_type", opts.EventType))
		}
		if opts.Actor != "" {
			ps = append(ps, entsql.EQ("actor", opts.Actor))
		}
		if opts.Since != nil {
			ps = append(ps, entsql.GTE("occurred_at", encodeTime(*opts.Since)))
		}
		return ps
	}

	count := s.builder().Select(entsql.Count("*")).From(entsql.Table(activityTable))
	for _, p := range preds() {
		count.Where(p)
	}
	total, err := s.count(ctx, count)
	if err != nil {
		return nil, 0, err
	}

	sel := s.builder().Select(entryColumns...).From(entsql.Table(activityTable))
	for _, p := range preds() {
		sel.Where(p)
	}
	q, args := sel.OrderBy(entsql.Desc("occurred_at"), entsql.Desc("event_id")).
		Limit(opts.limit()).
		Query()
	entries, err := s.query(ctx, q, args)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *SQLStore) count(ctx context.Context, sel *entsql.Selector) (int, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("counting activity entries: %w", err)
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scanning count: %w", err)
		}
	}
	return n, rows.Err()
}

func (s *SQLStore) query(ctx context.Context, query string, args []any) ([]Entry, error) {
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("querying activity entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                   Entry
			occurredAt          string
			categories, changed string
		)
		err := rows.Scan(
			&e.EventID, &e.EventType, &occurredAt, &e.VariantID, &e.Actor, &e.Source,
			&e.Summary, &categories, &e.Weight, &changed,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		if e.OccurredAt, err = decodeTime(occurredAt); err != nil {
			return nil, fmt.Errorf("parsing occurred_at %q: %w", occurredAt, err)
		}
		if err := json.Unmarshal([]byte(categories), &e.Categories); err != nil {
			return nil, fmt.Errorf("decoding categories of %s: %w", e.EventID, err)
		}
		if err := json.Unmarshal([]byte(changed), &e.Changed); err != nil {
			return nil, fmt.Errorf("decoding changed fields of %s: %w", e.EventID, err)
		}
		if len(e.Changed) == 0 {
			e.Changed = nil
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
