package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

func sampleRecord() *types.VariantRecord {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return &types.VariantRecord{
		ID:        "0f8a7c1e-1111-2222-3333-444455556666",
		ModelID:   "model-1",
		Name:      "Long Range",
		BasePrice: 45990,
		Specs:     types.WireSpecs{"Horsepower": {Value: 670.0, Unit: "hp"}},
		Features:  types.WireFeatures{"safety": {"BackupCamera"}},
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "alice",
		UpdatedBy: "alice",
		Source:    "user",
	}
}

func TestNewVariantCreated(t *testing.T) {
	rec := sampleRecord()
	evt := NewVariantCreated(rec)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, TypeVariantCreated, evt.EventType)
	assert.Equal(t, "alice", evt.Actor)
	assert.Equal(t, rec.ID, evt.VariantID)
	assert.Equal(t, rec.CreatedAt, evt.OccurredAt)
	assert.Contains(t, evt.Summary, "Long Range")

	var p VariantCreatedPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	assert.Equal(t, rec.ID, p.Record.ID)
}

func TestNewVariantUpdated_ListsChangedFields(t *testing.T) {
	prev := sampleRecord()
	rec := prev.Clone()
	rec.Name = "Performance"
	rec.Specs["Horsepower"] = types.SpecValue{Value: 700.0, Unit: "hp"}
	rec.UpdatedBy = "bob"

	evt := NewVariantUpdated(prev, rec)
	assert.Equal(t, "bob", evt.Actor)
	assert.Contains(t, evt.Summary, "0f8a7c1e")

	var p VariantUpdatedPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	assert.Equal(t, []string{"name", "specs"}, p.Changed)
}

func TestChangedFields_EmptyCategoriesAreEqual(t *testing.T) {
	prev := sampleRecord()
	rec := prev.Clone()
	rec.Features["convenience"] = []string{}
	assert.Empty(t, ChangedFields(prev, rec))

	rec.Features["convenience"] = []string{"RemoteStart"}
	assert.Equal(t, []string{"features"}, ChangedFields(prev, rec))
}

type countingPublisher struct{ n int }

func (p *countingPublisher) Publish(context.Context, DomainEvent) { p.n++ }

func TestMemoryRecorder(t *testing.T) {
	r := NewMemoryRecorder()
	pub := &countingPublisher{}
	r.SetPublisher(pub)

	rec := sampleRecord()
	require.NoError(t, r.Record(context.Background(), NewVariantCreated(rec)))
	require.NoError(t, r.Record(context.Background(), NewVariantDeleted(rec, "bob", "user")))

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, TypeVariantDeleted, events[1].EventType)
	assert.Equal(t, 2, pub.n)
}
