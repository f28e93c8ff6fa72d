// Package catalog provides the vehicle-variant attribute schema: the ordered
// spec categories with their field definitions, and the ordered feature
// categories with their flags.
//
// A Registry is built once (Default, LoadCUE, or by hand for tests) and is
// read-only afterwards, so it is safe for concurrent readers. Declaration
// order is significant: it drives UI section order and the order in which
// outbound wire maps are enumerated.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// FieldType classifies how a spec value is entered and coerced.
type FieldType int

const (
	FieldNumber FieldType = iota
	FieldText
)

// String returns the wire name of the type.
func (ft FieldType) String() string {
	switch ft {
	case FieldNumber:
		return "number"
	case FieldText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseFieldType maps a wire name back to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "number":
		return FieldNumber, nil
	case "text":
		return FieldText, nil
	default:
		return 0, fmt.Errorf("unknown field type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (ft FieldType) MarshalText() ([]byte, error) {
	return []byte(ft.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ft *FieldType) UnmarshalText(b []byte) error {
	v, err := ParseFieldType(string(b))
	if err != nil {
		return err
	}
	*ft = v
	return nil
}

// SpecCategory names a group of spec fields, e.g. "Performance".
type SpecCategory string

// SpecField is the canonical, capitalized name of a spec field, e.g. "Horsepower".
type SpecField string

// FeatureCategory names a group of feature flags, e.g. "Safety".
type FeatureCategory string

// FeatureFlag is the capitalized name of a boolean feature, e.g. "BackupCamera".
type FeatureFlag string

// Option is one entry of a label-mapped field's fixed value set.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// SpecFieldDef describes one technical specification.
type SpecFieldDef struct {
	Category SpecCategory `json:"category" yaml:"category"`
	Name     SpecField    `json:"name" yaml:"name"`
	Unit     string       `json:"unit,omitempty" yaml:"unit,omitempty"` // empty when the field has no unit
	Type     FieldType    `json:"type" yaml:"type"`
	Label    string       `json:"label" yaml:"label"`
	Options  []Option     `json:"options,omitempty" yaml:"options,omitempty"` // non-nil for label-mapped fields
}

// HasUnit reports whether the field declares a unit.
func (d SpecFieldDef) HasUnit() bool { return d.Unit != "" }

// LabelMapped reports whether raw values are shown through the option table.
func (d SpecFieldDef) LabelMapped() bool { return len(d.Options) > 0 }

// OptionLabel returns the display label for a raw option value. Unknown
// values are returned unchanged.
func (d SpecFieldDef) OptionLabel(raw string) string {
	for _, o := range d.Options {
		if o.Value == raw {
			return o.Label
		}
	}
	return raw
}

// WireKey is the outbound wire key: the canonical name with its first
// character lower-cased.
func (d SpecFieldDef) WireKey() string {
	return LowerFirst(string(d.Name))
}

// FeatureFlagDef describes one boolean feature.
type FeatureFlagDef struct {
	Category FeatureCategory `json:"category" yaml:"category"`
	Name     FeatureFlag     `json:"name" yaml:"name"`
	Label    string          `json:"label" yaml:"label"`
}

// WireKey is the outbound wire key for a feature category.
func (c FeatureCategory) WireKey() string {
	return strings.ToLower(string(c))
}

// Registry holds the attribute schema.
type Registry struct {
	specCategories    []SpecCategory
	specFields        map[SpecCategory][]SpecFieldDef
	fieldIndex        map[SpecField]SpecFieldDef
	featureCategories []FeatureCategory
	featureFlags      map[FeatureCategory][]FeatureFlagDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specFields:   make(map[SpecCategory][]SpecFieldDef),
		fieldIndex:   make(map[SpecField]SpecFieldDef),
		featureFlags: make(map[FeatureCategory][]FeatureFlagDef),
	}
}

// RegisterSpecCategory appends a spec category with its fields in order.
// Field names must be unique across all categories.
func (r *Registry) RegisterSpecCategory(c SpecCategory, fields ...SpecFieldDef) error {
	if c == "" {
		return fmt.Errorf("spec category name is empty")
	}
	if _, ok := r.specFields[c]; ok {
		return fmt.Errorf("duplicate spec category %q", c)
	}
	defs := make([]SpecFieldDef, 0, len(fields))
	seen := make(map[SpecField]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("spec category %q: field name is empty", c)
		}
		if _, ok := r.fieldIndex[f.Name]; ok || seen[f.Name] {
			return fmt.Errorf("duplicate spec field %q", f.Name)
		}
		seen[f.Name] = true
		f.Category = c
		f.Options = append([]Option(nil), f.Options...)
		if f.Label == "" {
			f.Label = Humanize(string(f.Name))
		}
		defs = append(defs, f)
	}
	r.specCategories = append(r.specCategories, c)
	r.specFields[c] = defs
	for _, f := range defs {
		r.fieldIndex[f.Name] = f
	}
	return nil
}

// RegisterFeatureCategory appends a feature category with its flags in order.
func (r *Registry) RegisterFeatureCategory(c FeatureCategory, flags ...FeatureFlag) error {
	if c == "" {
		return fmt.Errorf("feature category name is empty")
	}
	if _, ok := r.featureFlags[c]; ok {
		return fmt.Errorf("duplicate feature category %q", c)
	}
	defs := make([]FeatureFlagDef, 0, len(flags))
	seen := make(map[FeatureFlag]bool, len(flags))
	for _, f := range flags {
		if f == "" {
			return fmt.Errorf("feature category %q: flag name is empty", c)
		}
		if seen[f] {
			return fmt.Errorf("feature category %q: duplicate flag %q", c, f)
		}
		seen[f] = true
		defs = append(defs, FeatureFlagDef{Category: c, Name: f, Label: Humanize(string(f))})
	}
	r.featureCategories = append(r.featureCategories, c)
	r.featureFlags[c] = defs
	return nil
}

// SpecCategories returns the spec categories in declaration order.
func (r *Registry) SpecCategories() []SpecCategory {
	return append([]SpecCategory(nil), r.specCategories...)
}

// SpecFieldsOf returns the fields of a spec category in declaration order,
// or nil for an unknown category.
func (r *Registry) SpecFieldsOf(c SpecCategory) []SpecFieldDef {
	fields, ok := r.specFields[c]
	if !ok {
		return nil
	}
	out := make([]SpecFieldDef, len(fields))
	for i, f := range fields {
		f.Options = append([]Option(nil), f.Options...)
		out[i] = f
	}
	return out
}

// FeatureCategories returns the feature categories in declaration order.
func (r *Registry) FeatureCategories() []FeatureCategory {
	return append([]FeatureCategory(nil), r.featureCategories...)
}

// FeatureFlagsOf returns the flags of a feature category in declaration
// order, or nil for an unknown category.
func (r *Registry) FeatureFlagsOf(c FeatureCategory) []FeatureFlagDef {
	flags, ok := r.featureFlags[c]
	if !ok {
		return nil
	}
	return append([]FeatureFlagDef(nil), flags...)
}

// SpecField returns the definition of a canonical field name.
func (r *Registry) SpecField(name SpecField) (SpecFieldDef, bool) {
	d, ok := r.fieldIndex[name]
	return d, ok
}

// SpecFields returns every field across all categories in registry order.
func (r *Registry) SpecFields() []SpecFieldDef {
	var out []SpecFieldDef
	for _, c := range r.specCategories {
		out = append(out, r.SpecFieldsOf(c)...)
	}
	return out
}

// HasFeatureCategory reports whether c is declared.
func (r *Registry) HasFeatureCategory(c FeatureCategory) bool {
	_, ok := r.featureFlags[c]
	return ok
}

// HasFeatureFlag reports whether flag is declared under category c.
func (r *Registry) HasFeatureFlag(c FeatureCategory, flag FeatureFlag) bool {
	for _, f := range r.featureFlags[c] {
		if f.Name == flag {
			return true
		}
	}
	return false
}

// SpecWireKeys returns the outbound spec keys in registry order.
func (r *Registry) SpecWireKeys() []string {
	var keys []string
	for _, c := range r.specCategories {
		for _, f := range r.specFields[c] {
			keys = append(keys, f.WireKey())
		}
	}
	return keys
}

// FeatureWireKeys returns the outbound feature keys in registry order.
func (r *Registry) FeatureWireKeys() []string {
	keys := make([]string, len(r.featureCategories))
	for i, c := range r.featureCategories {
		keys[i] = c.WireKey()
	}
	return keys
}

// Drift lists attribute keys that the registry does not declare.
type Drift struct {
	SpecKeys          []string `json:"spec_keys,omitempty"`
	FeatureCategories []string `json:"feature_categories,omitempty"`
	FeatureFlags      []string `json:"feature_flags,omitempty"` // "category.Flag"
}

// Empty reports whether nothing drifted.
func (d Drift) Empty() bool {
	return len(d.SpecKeys) == 0 && len(d.FeatureCategories) == 0 && len(d.FeatureFlags) == 0
}

// Unknown reports the canonical spec keys and feature categories/flags in
// the given maps that match no declaration. Feature category keys are
// compared after upper-casing their first character.
func (r *Registry) Unknown(specs types.WireSpecs, features types.WireFeatures) Drift {
	var d Drift
	for k := range specs {
		if _, ok := r.fieldIndex[SpecField(k)]; !ok {
			d.SpecKeys = append(d.SpecKeys, k)
		}
	}
	for k, flags := range features {
		c := FeatureCategory(UpperFirst(k))
		if !r.HasFeatureCategory(c) {
			d.FeatureCategories = append(d.FeatureCategories, k)
			continue
		}
		for _, f := range flags {
			if !r.HasFeatureFlag(c, FeatureFlag(f)) {
				d.FeatureFlags = append(d.FeatureFlags, string(c)+"."+f)
			}
		}
	}
	slices.Sort(d.SpecKeys)
	slices.Sort(d.FeatureCategories)
	slices.Sort(d.FeatureFlags)
	return d
}

// Document is the serializable form of a registry, used by the schema
// endpoint and the CLI dump.
type Document struct {
	Specs    []SpecCategoryDoc    `json:"specs" yaml:"specs"`
	Features []FeatureCategoryDoc `json:"features" yaml:"features"`
}

// SpecCategoryDoc is one spec category in a Document.
type SpecCategoryDoc struct {
	Category SpecCategory   `json:"category" yaml:"category"`
	Fields   []SpecFieldDef `json:"fields" yaml:"fields"`
}

// FeatureCategoryDoc is one feature category in a Document.
type FeatureCategoryDoc struct {
	Category FeatureCategory  `json:"category" yaml:"category"`
	Flags    []FeatureFlagDef `json:"flags" yaml:"flags"`
}

// Document returns the registry contents in declaration order.
func (r *Registry) Document() Document {
	var doc Document
	for _, c := range r.specCategories {
		doc.Specs = append(doc.Specs, SpecCategoryDoc{Category: c, Fields: r.SpecFieldsOf(c)})
	}
	for _, c := range r.featureCategories {
		doc.Features = append(doc.Features, FeatureCategoryDoc{Category: c, Flags: r.FeatureFlagsOf(c)})
	}
	return doc
}
