// Package importer loads vehicle variants in bulk from spreadsheets.
//
// The first sheet must start with a header row. Recognised columns are
// ModelId, Name and BasePrice, any spec field name from the registry, and
// "Category.Flag" for feature flags. A truthy cell (1, x, yes, true, y)
// selects a flag. Every data row goes through the same payload builder as
// the wizard, so a row either yields a complete payload or a validation
// error.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// Base column headers.
const (
	ColModelID   = "ModelId"
	ColName      = "Name"
	ColBasePrice = "BasePrice"
)

// Creator persists one payload.
type Creator interface {
	Create(ctx context.Context, p *types.WirePayload) (*types.VariantRecord, error)
}

// Row is one valid data row.
type Row struct {
	Line    int
	Payload *types.WirePayload
}

// RowError is a failure tied to a spreadsheet row.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Result collects the outcome of an import.
type Result struct {
	Rows      []Row
	Errors    []*RowError
	Submitted []*types.VariantRecord
}

// OK reports whether every row was valid and, if submitted, stored.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// column describes what a header cell maps to.
type column struct {
	kind     columnKind
	spec     catalog.SpecFieldDef
	category catalog.FeatureCategory
	flag     catalog.FeatureFlag
}

type columnKind int

const (
	colModelID columnKind = iota
	colName
	colBasePrice
	colSpec
	colFeature
)

// Importer reads spreadsheets into payloads.
type Importer struct {
	builder *payload.Builder
	log     zerolog.Logger
}

// New returns an importer that validates rows with builder.
func New(builder *payload.Builder, logger zerolog.Logger) *Importer {
	return &Importer{builder: builder, log: logger}
}

// ReadFile parses the spreadsheet at path.
func (im *Importer) ReadFile(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()
	return im.parse(f)
}

// Read parses a spreadsheet from r.
func (im *Importer) Read(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()
	return im.parse(f)
}

func (im *Importer) parse(f *excelize.File) (*Result, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("spreadsheet is empty")
	}

	cols, err := im.mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for i, cells := range rows[1:] {
		line := i + 2
		if blank(cells) {
			continue
		}
		p, err := im.buildRow(cols, cells)
		if err != nil {
			res.Errors = append(res.Errors, &RowError{Line: line, Err: err})
			continue
		}
		res.Rows = append(res.Rows, Row{Line: line, Payload: p})
	}
	im.log.Info().
		Str("sheet", sheets[0]).
		Int("valid", len(res.Rows)).
		Int("invalid", len(res.Errors)).
		Msg("spreadsheet parsed")
	return res, nil
}

// mapColumns resolves every header cell. Header matching ignores case.
func (im *Importer) mapColumns(header []string) ([]column, error) {
	reg := im.builder.Registry()
	specs := make(map[string]catalog.SpecFieldDef)
	for _, def := range reg.SpecFields() {
		specs[strings.ToLower(string(def.Name))] = def
	}

	cols := make([]column, len(header))
	seen := make(map[string]bool)
	for i, raw := range header {
		h := strings.TrimSpace(raw)
		key := strings.ToLower(h)
		if h == "" {
			return nil, fmt.Errorf("column %d has an empty header", i+1)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		seen[key] = true

		switch key {
		case strings.ToLower(ColModelID):
			cols[i] = column{kind: colModelID}
			continue
		case strings.ToLower(ColName):
			cols[i] = column{kind: colName}
			continue
		case strings.ToLower(ColBasePrice):
			cols[i] = column{kind: colBasePrice}
			continue
		}
		if def, ok := specs[key]; ok {
			cols[i] = column{kind: colSpec, spec: def}
			continue
		}
		if cat, flag, ok := lookupFlag(reg, h); ok {
			cols[i] = column{kind: colFeature, category: cat, flag: flag}
			continue
		}
		return nil, fmt.Errorf("unknown column %q", h)
	}
	return cols, nil
}

func lookupFlag(reg *catalog.Registry, header string) (catalog.FeatureCategory, catalog.FeatureFlag, bool) {
	catName, flagName, ok := strings.Cut(header, ".")
	if !ok {
		return "", "", false
	}
	for _, c := range reg.FeatureCategories() {
		if !strings.EqualFold(string(c), catName) {
			continue
		}
		for _, def := range reg.FeatureFlagsOf(c) {
			if strings.EqualFold(string(def.Name), flagName) {
				return c, def.Name, true
			}
		}
	}
	return "", "", false
}

func (im *Importer) buildRow(cols []column, cells []string) (*types.WirePayload, error) {
	reg := im.builder.Registry()
	var base types.BaseFields
	state := attributes.NewState()
	for i, col := range cols {
		var cell string
		if i < len(cells) {
			cell = strings.TrimSpace(cells[i])
		}
		switch col.kind {
		case colModelID:
			base.ModelID = cell
		case colName:
			base.Name = cell
		case colBasePrice:
			base.BasePrice = attributes.ToNumber(strings.ReplaceAll(cell, ",", ""))
		case colSpec:
			if cell != "" {
				state.SetSpec(reg, string(col.spec.Name), cell)
			}
		case colFeature:
			if truthy(cell) {
				state.SetFeature(string(col.category), string(col.flag), true)
			}
		}
	}
	return im.builder.Build(base, state)
}

// Submit stores every valid row through c. Failures are recorded per row
// and do not stop the remaining rows.
func (im *Importer) Submit(ctx context.Context, res *Result, c Creator) error {
	for _, row := range res.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := c.Create(ctx, row.Payload)
		if err != nil {
			im.log.Warn().Err(err).Int("row", row.Line).Msg("import row rejected")
			res.Errors = append(res.Errors, &RowError{Line: row.Line, Err: err})
			continue
		}
		res.Submitted = append(res.Submitted, rec)
	}
	return nil
}

// Template returns a workbook whose header row lists every column the
// importer understands for reg.
func Template(reg *catalog.Registry) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []any{ColModelID, ColName, ColBasePrice}
	for _, def := range reg.SpecFields() {
		header = append(header, string(def.Name))
	}
	for _, c := range reg.FeatureCategories() {
		for _, def := range reg.FeatureFlagsOf(c) {
			header = append(header, string(c)+"."+string(def.Name))
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func truthy(cell string) bool {
	switch strings.ToLower(cell) {
	case "1", "x", "y", "yes", "true":
		return true
	}
	return false
}
