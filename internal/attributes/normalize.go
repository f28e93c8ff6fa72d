package attributes

import (
	"fmt"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// KeyCasing selects how inbound spec keys are treated.
type KeyCasing string

const (
	// KeyCasingLegacy copies inbound spec keys unchanged while outbound keys
	// have their first character lower-cased. A read-then-write round trip
	// therefore changes the casing of spec keys.
	KeyCasingLegacy KeyCasing = "legacy"
	// KeyCasingSymmetric upper-cases the first character of inbound spec
	// keys, making inbound the inverse of outbound.
	KeyCasingSymmetric KeyCasing = "symmetric"
)

// ParseKeyCasing validates a casing mode name. The empty string selects legacy.
func ParseKeyCasing(s string) (KeyCasing, error) {
	switch KeyCasing(s) {
	case "", KeyCasingLegacy:
		return KeyCasingLegacy, nil
	case KeyCasingSymmetric:
		return KeyCasingSymmetric, nil
	default:
		return "", fmt.Errorf("unknown spec key casing %q (want %q or %q)", s, KeyCasingLegacy, KeyCasingSymmetric)
	}
}

// Normalizer converts between State and the wire shape.
type Normalizer struct {
	Casing KeyCasing
}

// Inbound builds a State from wire data using the legacy casing.
func Inbound(specs types.WireSpecs, features types.WireFeatures) *State {
	return Normalizer{}.Inbound(specs, features)
}

// Outbound converts a State to wire data.
func Outbound(s *State, reg *catalog.Registry) (types.WireSpecs, types.WireFeatures) {
	return Normalizer{}.Outbound(s, reg)
}

// Inbound builds a State from wire data. Spec entries are copied without
// checking them against any registry; feature categories are canonicalized
// by upper-casing their first character. Unknown keys are kept.
func (n Normalizer) Inbound(specs types.WireSpecs, features types.WireFeatures) *State {
	s := NewState()
	for key, v := range specs {
		if n.Casing == KeyCasingSymmetric {
			key = catalog.UpperFirst(key)
		}
		s.PutSpec(key, v)
	}
	for category, flags := range features {
		s.PutFeatures(catalog.UpperFirst(category), flags)
	}
	return s
}

// Outbound converts a State to wire data. Specs are emitted sparsely in
// registry order: empty values are skipped, keys are lower-first, values are
// numbers for unit-bearing fields and strings otherwise. Features are dense:
// every registry category appears, keyed by its lower-cased name.
//
// Outbound never fails. Non-numeric input for a unit-bearing field becomes
// NaN, which is emitted as a null value.
func (n Normalizer) Outbound(s *State, reg *catalog.Registry) (types.WireSpecs, types.WireFeatures) {
	specs := make(types.WireSpecs)
	for _, c := range reg.SpecCategories() {
		for _, def := range reg.SpecFieldsOf(c) {
			v, ok := s.specs[string(def.Name)]
			if !ok || isEmpty(v.Value) {
				continue
			}
			out := types.SpecValue{}
			if def.HasUnit() {
				out.Value = wireNumber(ToNumber(v.Value))
				out.Unit = def.Unit
			} else {
				out.Value = ToString(v.Value)
			}
			specs[def.WireKey()] = out
		}
	}

	features := make(types.WireFeatures)
	for _, c := range reg.FeatureCategories() {
		selected := s.features[string(c)]
		features[c.WireKey()] = append([]string{}, selected...)
	}
	return specs, features
}
