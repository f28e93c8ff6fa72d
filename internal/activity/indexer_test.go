package activity

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		eventType  string
		changed    []string
		wantOK     bool
		wantCats   []string
		wantWeight string
	}{
		{"created", event.TypeVariantCreated, nil, true, []string{CategoryLifecycle}, WeightInfo},
		{"deleted", event.TypeVariantDeleted, nil, true, []string{CategoryLifecycle}, WeightSignificant},
		{"price and specs", event.TypeVariantUpdated, []string{"basePrice", "specs"}, true, []string{CategoryPricing, CategorySpecifications}, WeightModerate},
		{"name and model", event.TypeVariantUpdated, []string{"modelId", "name"}, true, []string{CategoryIdentity}, WeightSignificant},
		{"no change", event.TypeVariantUpdated, nil, false, nil, ""},
		{"unknown type", "variant_archived", nil, false, nil, ""},
	}
	for _, tt := range tests {
		c, ok := Classify(tt.eventType, tt.changed)
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if len(c.Categories) != len(tt.wantCats) {
			t.Errorf("%s: categories = %v, want %v", tt.name, c.Categories, tt.wantCats)
			continue
		}
		for i := range tt.wantCats {
			if c.Categories[i] != tt.wantCats[i] {
				t.Errorf("%s: categories = %v, want %v", tt.name, c.Categories, tt.wantCats)
			}
		}
		if c.Weight != tt.wantWeight {
			t.Errorf("%s: weight = %q, want %q", tt.name, c.Weight, tt.wantWeight)
		}
	}
}

func TestIsAtLeastWeight(t *testing.T) {
	if !IsAtLeastWeight(WeightSignificant, WeightModerate) {
		t.Error("significant should satisfy moderate")
	}
	if IsAtLeastWeight(WeightInfo, WeightModerate) {
		t.Error("info should not satisfy moderate")
	}
	if IsAtLeastWeight("bogus", WeightInfo) {
		t.Error("unknown weight should never qualify")
	}
}

func TestIndexer_HandleEvent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	idx := NewIndexer(s, zerolog.Nop())

	now := time.Now().UTC()
	rec := &types.VariantRecord{
		ID: "v1", ModelID: "m1", Name: "Standard", BasePrice: 39990,
		CreatedAt: now, UpdatedAt: now, CreatedBy: "alice", UpdatedBy: "alice", Source: "user",
	}
	updated := *rec
	updated.BasePrice = 41990
	updated.UpdatedBy = "bob"
	updated.UpdatedAt = now.Add(time.Minute)

	for _, evt := range []event.DomainEvent{
		event.NewVariantCreated(rec),
		event.NewVariantUpdated(rec, &updated),
		event.NewVariantUpdated(&updated, &updated),
	} {
		if err := idx.HandleEvent(ctx, evt); err != nil {
			t.Fatalf("HandleEvent(%s): %v", evt.EventType, err)
		}
	}

	results, _, total, err := s.QueryByVariant(ctx, "v1", QueryOptions{})
	if err != nil {
		t.Fatalf("QueryByVariant: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2 (no-op update is not indexed)", total)
	}
	latest := results[0]
	if latest.Summary != "Base price changed by bob" {
		t.Errorf("summary = %q", latest.Summary)
	}
	if latest.Weight != WeightModerate {
		t.Errorf("weight = %q, want moderate", latest.Weight)
	}
	if len(latest.Changed) != 1 || latest.Changed[0] != "basePrice" {
		t.Errorf("changed = %v, want [basePrice]", latest.Changed)
	}
	if results[1].Summary != `Variant "Standard" created for model m1 by alice` {
		t.Errorf("created summary = %q", results[1].Summary)
	}
}

func TestIndexer_BadPayload(t *testing.T) {
	idx := NewIndexer(NewMemoryStore(), zerolog.Nop())
	err := idx.HandleEvent(context.Background(), event.DomainEvent{
		ID: "x", EventType: event.TypeVariantUpdated, Payload: []byte("{"),
	})
	if err == nil {
		t.Fatal("expected decode error")
	}
}
