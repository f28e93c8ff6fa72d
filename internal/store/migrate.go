package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/schema/field"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/ent/schema"
)

const variantTable = "variants"

// variantFields returns the ent fields of the Variant schema, id first and
// mixin fields last.
func variantFields() []ent.Field {
	fields := schema.Variant{}.Fields()
	for _, m := range (schema.Variant{}).Mixin() {
		fields = append(fields, m.Fields()...)
	}
	return fields
}

func columnType(t field.Type) string {
	switch t {
	case field.TypeFloat32, field.TypeFloat64:
		return "real"
	case field.TypeInt, field.TypeInt8, field.TypeInt16, field.TypeInt32, field.TypeInt64,
		field.TypeUint, field.TypeUint8, field.TypeUint16, field.TypeUint32, field.TypeUint64:
		return "integer"
	case field.TypeBool:
		return "bool"
	case field.TypeTime:
		return "datetime"
	case field.TypeBytes:
		return "blob"
	default:
		return "text"
	}
}

// Migrate creates the variants table and its indexes if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.ddl() {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("running migration %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *SQLStore) ddl() []string {
	table := s.builder().CreateTable(variantTable).IfNotExists()
	for _, f := range variantFields() {
		d := f.Descriptor()
		col := entsql.Column(d.Name).Type(columnType(d.Info.Type))
		if !d.Optional {
			col.Attr("NOT NULL")
		}
		if d.Unique && d.Name != "id" {
			col.Attr("UNIQUE")
		}
		table.Column(col)
	}
	table.PrimaryKey("id")
	stmt, _ := table.Query()
	stmts := []string{stmt}

	for _, idx := range (schema.Variant{}).Indexes() {
		d := idx.Descriptor()
		name := variantTable + "_" + strings.Join(d.Fields, "_")
		b := s.builder().CreateIndex(name).IfNotExists().Table(variantTable).Columns(d.Fields...)
		if d.Unique {
			b.Unique()
		}
		stmt, _ := b.Query()
		stmts = append(stmts, stmt)
	}
	return stmts
}

// validateColumns applies the schema's field validators and enum values to
// a row about to be written.
func validateColumns(values map[string]any) error {
	for _, f := range variantFields() {
		d := f.Descriptor()
		v, ok := values[d.Name]
		if !ok || v == nil {
			continue
		}
		if len(d.Enums) > 0 {
			s, _ := v.(string)
			if !slices.ContainsFunc(d.Enums, func(e struct{ N, V string }) bool { return e.V == s }) {
				return fmt.Errorf("%s: invalid value %q", d.Name, s)
			}
		}
		for _, fn := range d.Validators {
			var err error
			switch fn := fn.(type) {
			case func(string) error:
				s, _ := v.(string)
				err = fn(s)
			case func(float64) error:
				n, _ := v.(float64)
				err = fn(n)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", d.Name, err)
			}
		}
	}
	return nil
}
