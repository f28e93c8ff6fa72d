package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"

	_ "modernc.org/sqlite"
)

// SQLStore implements Store on an ent SQL driver. The table layout comes
// from the ent schema; see Migrate.
type SQLStore struct {
	drv *entsql.Driver
}

// NewSQLStore wraps an open driver.
func NewSQLStore(drv *entsql.Driver) *SQLStore {
	return &SQLStore{drv: drv}
}

// OpenSQLite opens a SQLite database and returns a store on it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return NewSQLStore(entsql.OpenDB(dialect.SQLite, db)), nil
}

// Driver returns the underlying driver so other tables can share the
// database.
func (s *SQLStore) Driver() *entsql.Driver {
	return s.drv
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.drv.Close()
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

// recordColumns is the select list shared by Get and List.
var recordColumns = []string{
	"id", "model_id", "name", "base_price", "specs", "features",
	"created_at", "updated_at", "created_by", "updated_by", "source", "correlation_id",
}

func (s *SQLStore) Create(ctx context.Context, rec *types.VariantRecord) error {
	values, err := recordValues(rec)
	if err != nil {
		return err
	}
	if err := validateColumns(values); err != nil {
		return err
	}
	cols := make([]string, 0, len(recordColumns))
	args := make([]any, 0, len(recordColumns))
	for _, c := range recordColumns {
		cols = append(cols, c)
		args = append(args, values[c])
	}
	query, qargs := s.builder().Insert(variantTable).Columns(cols...).Values(args...).Query()
	if err := s.drv.Exec(ctx, query, qargs, nil); err != nil {
		return fmt.Errorf("inserting variant: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*types.VariantRecord, error) {
	query, args := s.builder().Select(recordColumns...).
		From(entsql.Table(variantTable)).
		Where(entsql.EQ("id", id)).
		Query()

	recs, err := s.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

func (s *SQLStore) Update(ctx context.Context, rec *types.VariantRecord) error {
	values, err := recordValues(rec)
	if err != nil {
		return err
	}
	if err := validateColumns(values); err != nil {
		return err
	}
	u := s.builder().Update(variantTable)
	for _, c := range recordColumns {
		switch c {
		case "id", "created_at", "created_by":
			continue
		}
		u.Set(c, values[c])
	}
	query, args := u.Where(entsql.EQ("id", rec.ID)).Query()

	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("updating variant: %w", err)
	}
	return affectedOne(res)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	query, args := s.builder().Delete(variantTable).Where(entsql.EQ("id", id)).Query()
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("deleting variant: %w", err)
	}
	return affectedOne(res)
}

func (s *SQLStore) List(ctx context.Context, opts ListOptions) ([]*types.VariantRecord, int, error) {
	opts = opts.normalized()

	count := s.builder().Select(entsql.Count("*")).From(entsql.Table(variantTable))
	sel := s.builder().Select(recordColumns...).From(entsql.Table(variantTable))
	if opts.ModelID != "" {
		count.Where(entsql.EQ("model_id", opts.ModelID))
		sel.Where(entsql.EQ("model_id", opts.ModelID))
	}

	query, args := count.Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, 0, fmt.Errorf("counting variants: %w", err)
	}
	var total int
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scanning count: %w", err)
		}
	}
	rows.Close()

	query, args = sel.OrderBy(entsql.Asc("created_at"), entsql.Asc("id")).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Query()
	recs, err := s.query(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	if recs == nil {
		recs = []*types.VariantRecord{}
	}
	return recs, total, nil
}

func (s *SQLStore) query(ctx context.Context, query string, args []any) ([]*types.VariantRecord, error) {
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("querying variants: %w", err)
	}
	defer rows.Close()

	var recs []*types.VariantRecord
	for rows.Next() {
		var (
			rec                  types.VariantRecord
			specs, features      string
			createdAt, updatedAt string
			correlationID        sql.NullString
		)
		err := rows.Scan(
			&rec.ID, &rec.ModelID, &rec.Name, &rec.BasePrice, &specs, &features,
			&createdAt, &updatedAt, &rec.CreatedBy, &rec.UpdatedBy, &rec.Source, &correlationID,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		if err := json.Unmarshal([]byte(specs), &rec.Specs); err != nil {
			return nil, fmt.Errorf("decoding specs of %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
			return nil, fmt.Errorf("decoding features of %s: %w", rec.ID, err)
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		rec.CorrelationID = correlationID.String
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func recordValues(rec *types.VariantRecord) (map[string]any, error) {
	specs := rec.Specs
	if specs == nil {
		specs = types.WireSpecs{}
	}
	features := rec.Features
	if features == nil {
		features = types.WireFeatures{}
	}
	specsJSON, err := json.Marshal(specs)
	if err != nil {
		return nil, fmt.Errorf("encoding specs: %w", err)
	}
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encoding features: %w", err)
	}
	var correlationID any
	if rec.CorrelationID != "" {
		correlationID = rec.CorrelationID
	}
	return map[string]any{
		"id":             rec.ID,
		"model_id":       rec.ModelID,
		"name":           rec.Name,
		"base_price":     rec.BasePrice,
		"specs":          string(specsJSON),
		"features":       string(featuresJSON),
		"created_at":     formatTime(rec.CreatedAt),
		"updated_at":     formatTime(rec.UpdatedAt),
		"created_by":     rec.CreatedBy,
		"updated_by":     rec.UpdatedBy,
		"source":         rec.Source,
		"correlation_id": correlationID,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
