// Package payload assembles validated variant submissions from base fields
// and an attribute state.
package payload

import (
	"fmt"
	"math"
	"strings"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// Field names reported in validation errors. They match the wire keys.
const (
	FieldModelID   = "modelId"
	FieldName      = "name"
	FieldBasePrice = "basePrice"
)

// FieldError is one failed required-field check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every failed required-field check of a submission.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// FieldNames returns the failing field names in check order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// ValidateBase checks the required base fields and returns a
// *ValidationError naming every failure, or nil.
func ValidateBase(base types.BaseFields) error {
	var fields []FieldError
	if base.ModelID == "" {
		fields = append(fields, FieldError{Field: FieldModelID, Message: "model is required"})
	}
	if strings.TrimSpace(base.Name) == "" {
		fields = append(fields, FieldError{Field: FieldName, Message: "name is required"})
	}
	if math.IsNaN(base.BasePrice) || math.IsInf(base.BasePrice, 0) || base.BasePrice <= 0 {
		fields = append(fields, FieldError{
			Field:   FieldBasePrice,
			Message: fmt.Sprintf("base price must be a number greater than 0 (got %s)", attributes.FormatNumber(base.BasePrice)),
		})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Builder validates and assembles submissions against a registry.
type Builder struct {
	registry   *catalog.Registry
	normalizer attributes.Normalizer
}

// NewBuilder creates a Builder. Build only converts outbound; the
// normalizer's casing is used by callers that load records through
// Normalizer().
func NewBuilder(reg *catalog.Registry, n attributes.Normalizer) *Builder {
	return &Builder{registry: reg, normalizer: n}
}

// Registry returns the builder's registry.
func (b *Builder) Registry() *catalog.Registry { return b.registry }

// Normalizer returns the builder's normalizer.
func (b *Builder) Normalizer() attributes.Normalizer { return b.normalizer }

// Build validates base and assembles the wire payload. On failure it returns
// a *ValidationError and no payload. Build does no I/O.
func (b *Builder) Build(base types.BaseFields, s *attributes.State) (*types.WirePayload, error) {
	if err := ValidateBase(base); err != nil {
		return nil, err
	}
	specs, features := b.normalizer.Outbound(s, b.registry)
	p := &types.WirePayload{
		ModelID:   base.ModelID,
		Name:      base.Name,
		BasePrice: base.BasePrice,
		Specs:     specs,
		Features:  features,
	}
	p.SetKeyOrder(b.registry.SpecWireKeys(), b.registry.FeatureWireKeys())
	return p, nil
}
