// Package types provides the Go structs shared between the attribute engine,
// the variant service and its clients. Wire structs carry the JSON shape the
// backing store exchanges; record structs carry what is persisted.
package types

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// SpecValue is a single technical specification value on the wire.
// Value is a number (float64) or a string; Unit is set iff the owning field
// declares a unit.
type SpecValue struct {
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// WireSpecs maps a wire spec key to its value.
type WireSpecs map[string]SpecValue

// WireFeatures maps a lower-case feature category to its selected flags.
type WireFeatures map[string][]string

// BaseFields are the required, non-attribute fields of a variant.
type BaseFields struct {
	ModelID   string  `json:"modelId"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"basePrice"`
}

// WirePayload is a complete, validated submission for the backing store.
type WirePayload struct {
	ModelID   string       `json:"modelId"`
	Name      string       `json:"name"`
	BasePrice float64      `json:"basePrice"`
	Specs     WireSpecs    `json:"specs"`
	Features  WireFeatures `json:"features"`

	specOrder    []string
	featureOrder []string
}

// SetKeyOrder records the order in which spec and feature keys are marshalled.
// Keys missing from the order are appended in sorted order.
func (p *WirePayload) SetKeyOrder(specs, features []string) {
	p.specOrder = specs
	p.featureOrder = features
}

// MarshalJSON emits specs and features in registry order when one is set.
func (p WirePayload) MarshalJSON() ([]byte, error) {
	specs, err := marshalOrdered(p.Specs, p.specOrder)
	if err != nil {
		return nil, err
	}
	features, err := marshalOrdered(p.Features, p.featureOrder)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		ModelID   string          `json:"modelId"`
		Name      string          `json:"name"`
		BasePrice float64         `json:"basePrice"`
		Specs     json.RawMessage `json:"specs"`
		Features  json.RawMessage `json:"features"`
	}{p.ModelID, p.Name, p.BasePrice, specs, features})
}

func marshalOrdered[V any](m map[string]V, order []string) (json.RawMessage, error) {
	if len(order) == 0 {
		if m == nil {
			return json.RawMessage("{}"), nil
		}
		return json.Marshal(m)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]bool, len(m))
	first := true
	write := func(k string, v V) error {
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	for _, k := range order {
		v, ok := m[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		if err := write(k, v); err != nil {
			return nil, err
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	for _, k := range rest {
		if err := write(k, m[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// VariantRecord is a persisted vehicle variant. Specs are keyed by canonical
// field name and features by lower-case category, matching what the store
// serves back to readers.
type VariantRecord struct {
	ID        string       `json:"id"`
	ModelID   string       `json:"modelId"`
	Name      string       `json:"name"`
	BasePrice float64      `json:"basePrice"`
	Specs     WireSpecs    `json:"specs"`
	Features  WireFeatures `json:"features"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	CreatedBy string       `json:"createdBy,omitempty"`
	UpdatedBy string       `json:"updatedBy,omitempty"`
	Source    string       `json:"source,omitempty"`

	CorrelationID string `json:"correlationId,omitempty"`
}

// Base returns the record's required fields.
func (r *VariantRecord) Base() BaseFields {
	return BaseFields{ModelID: r.ModelID, Name: r.Name, BasePrice: r.BasePrice}
}

// Clone returns a deep copy of the record.
func (r *VariantRecord) Clone() *VariantRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Specs = r.Specs.Clone()
	c.Features = r.Features.Clone()
	return &c
}

// Clone returns a copy of the spec map.
func (s WireSpecs) Clone() WireSpecs {
	if s == nil {
		return nil
	}
	out := make(WireSpecs, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Clone returns a copy of the feature map with copied flag slices.
func (f WireFeatures) Clone() WireFeatures {
	if f == nil {
		return nil
	}
	out := make(WireFeatures, len(f))
	for k, v := range f {
		out[k] = append([]string{}, v...)
	}
	return out
}
