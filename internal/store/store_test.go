package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

func testRecord(id, modelID string, createdAt time.Time) *types.VariantRecord {
	return &types.VariantRecord{
		ID:        id,
		ModelID:   modelID,
		Name:      "Variant " + id,
		BasePrice: 42000,
		Specs: types.WireSpecs{
			"Horsepower": {Value: 670.0, Unit: "hp"},
			"DriveType":  {Value: "AWD"},
		},
		Features: types.WireFeatures{
			"safety":      {"BackupCamera"},
			"convenience": {},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		CreatedBy: "alice",
		UpdatedBy: "alice",
		Source:    "user",
	}
}

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "variants.db") + "?_pragma=foreign_keys(1)"
	s, err := OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
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

var timeEqual = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func TestStore_CreateGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		now := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)
		rec := testRecord("v-1", "model-1", now)
		rec.CorrelationID = "req-1"

		if err := s.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := s.Get(ctx, "v-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if diff := cmp.Diff(rec, got, timeEqual); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}

		got.Specs["Horsepower"] = types.SpecValue{Value: 1.0}
		again, _ := s.Get(ctx, "v-1")
		if again.Specs["Horsepower"].Value != 670.0 {
			t.Errorf("store shares spec map with caller")
		}

		if err := s.Create(ctx, rec); err == nil {
			t.Errorf("duplicate Create: want error")
		}
	})
}

func TestStore_GetMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.Get(context.Background(), "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_Update(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		rec := testRecord("v-1", "model-1", created)
		if err := s.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}

		upd := rec.Clone()
		upd.Name = "Renamed"
		upd.BasePrice = 39990
		upd.Specs = types.WireSpecs{"Range": {Value: 520.0, Unit: "km"}}
		upd.Features = types.WireFeatures{"safety": {}}
		upd.UpdatedAt = created.Add(time.Hour)
		upd.UpdatedBy = "bob"
		upd.CreatedBy = "mallory"
		if err := s.Update(ctx, upd); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, err := s.Get(ctx, "v-1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "Renamed" || got.BasePrice != 39990 {
			t.Errorf("got name=%q price=%v", got.Name, got.BasePrice)
		}
		if got.CreatedBy != "alice" {
			t.Errorf("CreatedBy = %q, want alice", got.CreatedBy)
		}
		if !got.UpdatedAt.Equal(upd.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, upd.UpdatedAt)
		}
		if diff := cmp.Diff(upd.Specs, got.Specs); diff != "" {
			t.Errorf("specs mismatch (-want +got):\n%s", diff)
		}

		missing := testRecord("v-2", "model-1", created)
		if err := s.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update missing: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.Create(ctx, testRecord("v-1", "model-1", time.Now())); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, "v-1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, "v-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete: err = %v", err)
		}
		if err := s.Delete(ctx, "v-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete: err = %v, want ErrNotFound", err)
		}
	})
}

func TestStore_List(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			model := "model-a"
			if i%2 == 1 {
				model = "model-b"
			}
			rec := testRecord(fmt.Sprintf("v-%d", i), model, base.Add(time.Duration(i)*time.Minute))
			if err := s.Create(ctx, rec); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}

		all, total, err := s.List(ctx, ListOptions{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if total != 5 || len(all) != 5 {
			t.Fatalf("total=%d len=%d, want 5/5", total, len(all))
		}
		if all[0].ID != "v-0" || all[4].ID != "v-4" {
			t.Errorf("order = %s..%s, want v-0..v-4", all[0].ID, all[4].ID)
		}

		page, total, err := s.List(ctx, ListOptions{ModelID: "model-a", Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("List filtered: %v", err)
		}
		ids := make([]string, len(page))
		for i, r := range page {
			ids[i] = r.ID
		}
		if total != 3 {
			t.Errorf("filtered total = %d, want 3", total)
		}
		if diff := cmp.Diff([]string{"v-2", "v-4"}, ids); diff != "" {
			t.Errorf("page ids (-want +got):\n%s", diff)
		}

		empty, total, err := s.List(ctx, ListOptions{Offset: 50})
		if err != nil {
			t.Fatalf("List past end: %v", err)
		}
		if total != 5 || len(empty) != 0 || empty == nil {
			t.Errorf("past end: total=%d page=%v", total, empty)
		}
	})
}

func TestSQLStore_RejectsInvalidColumns(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	rec := testRecord("v-1", "", time.Now())
	if err := s.Create(ctx, rec); err == nil {
		t.Errorf("empty model_id: want error")
	}
	rec = testRecord("v-1", "model-1", time.Now())
	rec.Source = "robot"
	if err := s.Create(ctx, rec); err == nil {
		t.Errorf("unknown source: want error")
	}
	rec = testRecord("v-1", "model-1", time.Now())
	rec.BasePrice = -1
	if err := s.Create(ctx, rec); err == nil {
		t.Errorf("negative price: want error")
	}
}

func TestSQLStore_MigrateIsIdempotent(t *testing.T) {
	s := openSQLite(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestRecordColumnsMatchSchema(t *testing.T) {
	var names []string
	for _, f := range variantFields() {
		names = append(names, f.Descriptor().Name)
	}
	if diff := cmp.Diff(recordColumns, names, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("recordColumns out of sync with ent schema (-cols +schema):\n%s", diff)
	}
}
