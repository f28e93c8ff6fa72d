package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var builtinCUE []byte

// BuiltinCUE returns the CUE source of the built-in schema.
func BuiltinCUE() []byte {
	return append([]byte(nil), builtinCUE...)
}

// constraintsCUE closes the schema document. Feature categories are a
// single capitalized word so that lower-casing them for the wire and
// upper-casing the first character on the way back is lossless.
const constraintsCUE = `
#Option: {
	value: string & !=""
	label: string & !=""
}

#SpecField: {
	name:     =~"^[A-Z][A-Za-z0-9]*$"
	unit?:    string & !=""
	type:     "number" | "text"
	label?:   string & !=""
	options?: [...#Option]
}

#SpecCategory: {
	category: =~"^[A-Z][A-Za-z0-9]*$"
	fields: [...#SpecField]
}

#FeatureCategory: {
	category: =~"^[A-Z][a-z0-9]*$"
	flags: [...=~"^[A-Z][A-Za-z0-9]*$"]
}

specs: [...#SpecCategory]
features: [...#FeatureCategory]
`

type cueDocument struct {
	Specs []struct {
		Category string `json:"category"`
		Fields   []struct {
			Name    string   `json:"name"`
			Unit    string   `json:"unit"`
			Type    string   `json:"type"`
			Label   string   `json:"label"`
			Options []Option `json:"options"`
		} `json:"fields"`
	} `json:"specs"`
	Features []struct {
		Category string   `json:"category"`
		Flags    []string `json:"flags"`
	} `json:"features"`
}

// LoadCUE builds a registry from a CUE schema document. The document is
// unified with the built-in constraints before decoding, so shape errors
// surface as CUE validation errors.
func LoadCUE(filename string, src []byte) (*Registry, error) {
	ctx := cuecontext.New()

	constraints := ctx.CompileString(constraintsCUE, cue.Filename("constraints.cue"))
	if err := constraints.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema constraints: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", filename, err)
	}

	v = constraints.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating %s: %w", filename, err)
	}

	var doc cueDocument
	if err := v.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}

	r := NewRegistry()
	for _, c := range doc.Specs {
		fields := make([]SpecFieldDef, 0, len(c.Fields))
		for _, f := range c.Fields {
			ft, err := ParseFieldType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: field %s: %w", filename, f.Name, err)
			}
			fields = append(fields, SpecFieldDef{
				Name:    SpecField(f.Name),
				Unit:    f.Unit,
				Type:    ft,
				Label:   f.Label,
				Options: f.Options,
			})
		}
		if err := r.RegisterSpecCategory(SpecCategory(c.Category), fields...); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	for _, c := range doc.Features {
		flags := make([]FeatureFlag, len(c.Flags))
		for i, f := range c.Flags {
			flags[i] = FeatureFlag(f)
		}
		if err := r.RegisterFeatureCategory(FeatureCategory(c.Category), flags...); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return r, nil
}

// LoadCUEFile reads and loads a CUE schema file.
func LoadCUEFile(path string) (*Registry, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return LoadCUE(filepath.Base(path), src)
}
