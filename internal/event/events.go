package event

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// Event types.
const (
	TypeVariantCreated = "variant_created"
	TypeVariantUpdated = "variant_updated"
	TypeVariantDeleted = "variant_deleted"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      string          `json:"actor"`
	Source     string          `json:"source"` // "user", "import", "system"
	VariantID  string          `json:"variantId"`
	Summary    string          `json:"summary"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// VariantCreatedPayload carries the record as stored.
type VariantCreatedPayload struct {
	Record *types.VariantRecord `json:"record"`
}

func NewVariantCreated(rec *types.VariantRecord) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeVariantCreated,
		OccurredAt: rec.CreatedAt,
		Actor:      rec.CreatedBy,
		Source:     rec.Source,
		VariantID:  rec.ID,
		Summary:    fmt.Sprintf("Variant %q created for model %s", rec.Name, rec.ModelID),
		Payload:    mustJSON(VariantCreatedPayload{Record: rec}),
	}
}

// VariantUpdatedPayload carries the new record and the names of the
// top-level fields that changed.
type VariantUpdatedPayload struct {
	Record  *types.VariantRecord `json:"record"`
	Changed []string             `json:"changed"`
}

func NewVariantUpdated(prev, rec *types.VariantRecord) DomainEvent {
	changed := ChangedFields(prev, rec)
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeVariantUpdated,
		OccurredAt: rec.UpdatedAt,
		Actor:      rec.UpdatedBy,
		Source:     rec.Source,
		VariantID:  rec.ID,
		Summary:    fmt.Sprintf("Variant %s updated (%d fields changed)", shortID(rec.ID), len(changed)),
		Payload:    mustJSON(VariantUpdatedPayload{Record: rec, Changed: changed}),
	}
}

// VariantDeletedPayload identifies the removed variant.
type VariantDeletedPayload struct {
	VariantID string `json:"variantId"`
	ModelID   string `json:"modelId"`
	Name      string `json:"name"`
}

func NewVariantDeleted(rec *types.VariantRecord, actor, source string) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeVariantDeleted,
		OccurredAt: time.Now().UTC(),
		Actor:      actor,
		Source:     source,
		VariantID:  rec.ID,
		Summary:    fmt.Sprintf("Variant %q deleted from model %s", rec.Name, rec.ModelID),
		Payload:    mustJSON(VariantDeletedPayload{VariantID: rec.ID, ModelID: rec.ModelID, Name: rec.Name}),
	}
}

// ChangedFields lists the wire names of the fields that differ between two
// versions of a record, in a fixed order.
func ChangedFields(prev, rec *types.VariantRecord) []string {
	var out []string
	if prev.ModelID != rec.ModelID {
		out = append(out, "modelId")
	}
	if prev.Name != rec.Name {
		out = append(out, "name")
	}
	if prev.BasePrice != rec.BasePrice {
		out = append(out, "basePrice")
	}
	if !specsEqual(prev.Specs, rec.Specs) {
		out = append(out, "specs")
	}
	if !featuresEqual(prev.Features, rec.Features) {
		out = append(out, "features")
	}
	return out
}

func specsEqual(a, b types.WireSpecs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || va.Unit != vb.Unit || fmt.Sprint(va.Value) != fmt.Sprint(vb.Value) {
			return false
		}
	}
	return true
}

func featuresEqual(a, b types.WireFeatures) bool {
	for k, v := range a {
		if !slices.Equal(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if _, ok := a[k]; !ok && len(v) > 0 {
			return false
		}
	}
	return true
}
