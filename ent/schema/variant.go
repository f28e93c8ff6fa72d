package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// Variant is a priced configuration of a vehicle model with its technical
// specifications and feature selections.
type Variant struct {
	ent.Schema
}

// Mixin of the Variant.
func (Variant) Mixin() []ent.Mixin {
	return []ent.Mixin{AuditMixin{}}
}

// Fields of the Variant.
func (Variant) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("model_id").
			NotEmpty().
			Comment("Owning vehicle model"),
		field.String("name").
			NotEmpty(),
		field.Float("base_price").
			Positive(),
		field.JSON("specs", types.WireSpecs{}).
			Comment("Spec values keyed by canonical field name"),
		field.JSON("features", types.WireFeatures{}).
			Comment("Selected flags keyed by lower-case category"),
	}
}

// Indexes of the Variant.
func (Variant) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("model_id"),
	}
}
