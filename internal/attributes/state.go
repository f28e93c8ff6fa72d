// Package attributes holds the in-memory attribute model of a variant being
// edited and the normalizer that converts it to and from the wire shape.
package attributes

import (
	"slices"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// State is the mutable attribute record of one wizard. Specs are sparse: a
// missing key means no value was entered. Features map a canonical category
// to its selected flags in selection order.
//
// Keys are plain strings, not catalog identifiers, because inbound data may
// carry keys the registry does not declare and those pass through untouched.
// A State is owned by a single editor and is not safe for concurrent use.
type State struct {
	specs    map[string]types.SpecValue
	features map[string][]string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		specs:    make(map[string]types.SpecValue),
		features: make(map[string][]string),
	}
}

// Spec returns the stored value for a spec key.
func (s *State) Spec(key string) (types.SpecValue, bool) {
	v, ok := s.specs[key]
	return v, ok
}

// SetSpec stores a raw value for a spec key. The unit is attached from the
// registry definition when the key is declared there.
func (s *State) SetSpec(reg *catalog.Registry, key string, raw any) {
	v := types.SpecValue{Value: raw}
	if def, ok := reg.SpecField(catalog.SpecField(key)); ok && def.HasUnit() {
		v.Unit = def.Unit
	}
	s.specs[key] = v
}

// PutSpec stores a value verbatim.
func (s *State) PutSpec(key string, v types.SpecValue) {
	s.specs[key] = v
}

// ClearSpec removes a spec key.
func (s *State) ClearSpec(key string) {
	delete(s.specs, key)
}

// SpecKeys returns the stored spec keys in sorted order.
func (s *State) SpecKeys() []string {
	keys := make([]string, 0, len(s.specs))
	for k := range s.specs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Specs returns a copy of the spec map.
func (s *State) Specs() types.WireSpecs {
	return types.WireSpecs(s.specs).Clone()
}

// Selected returns a copy of the flags selected under a category.
func (s *State) Selected(category string) []string {
	return append([]string(nil), s.features[category]...)
}

// IsSelected reports whether flag is selected under category.
func (s *State) IsSelected(category, flag string) bool {
	return slices.Contains(s.features[category], flag)
}

// SetFeature selects or deselects a flag. Selecting appends in selection
// order and is idempotent.
func (s *State) SetFeature(category, flag string, selected bool) {
	cur := s.features[category]
	idx := slices.Index(cur, flag)
	switch {
	case selected && idx < 0:
		s.features[category] = append(cur, flag)
	case !selected && idx >= 0:
		s.features[category] = slices.Delete(slices.Clone(cur), idx, idx+1)
	}
}

// ToggleFeature flips a flag and reports the new selection.
func (s *State) ToggleFeature(category, flag string) bool {
	on := !s.IsSelected(category, flag)
	s.SetFeature(category, flag, on)
	return on
}

// PutFeatures replaces the selection of a category, dropping duplicates.
func (s *State) PutFeatures(category string, flags []string) {
	set := make([]string, 0, len(flags))
	for _, f := range flags {
		if !slices.Contains(set, f) {
			set = append(set, f)
		}
	}
	s.features[category] = set
}

// FeatureCategories returns the categories present in the state, sorted.
func (s *State) FeatureCategories() []string {
	keys := make([]string, 0, len(s.features))
	for k := range s.features {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Features returns a copy of the feature map.
func (s *State) Features() map[string][]string {
	return types.WireFeatures(s.features).Clone()
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{
		specs:    types.WireSpecs(s.specs).Clone(),
		features: types.WireFeatures(s.features).Clone(),
	}
}
