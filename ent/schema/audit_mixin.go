package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// Sources a change may originate from.
var Sources = []string{"user", "import", "system"}

// AuditMixin adds who/when/where-from columns to a stored entity.
type AuditMixin struct {
	mixin.Schema
}

// Fields of the AuditMixin.
func (AuditMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable().
			Comment("When the variant was created"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now).
			Comment("When the variant was last updated"),
		field.String("created_by").
			NotEmpty().
			Comment("Actor that created the variant"),
		field.String("updated_by").
			NotEmpty().
			Comment("Actor that last updated the variant"),
		field.Enum("source").
			Values(Sources...).
			Comment("Origin of the change"),
		field.String("correlation_id").
			Optional().
			Nillable().
			Comment("Request id of the last write"),
	}
}
