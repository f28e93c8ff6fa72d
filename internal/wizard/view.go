package wizard

import (
	"errors"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
)

// InputKind tells a front end which control to draw.
type InputKind string

const (
	InputNumber   InputKind = "number"
	InputText     InputKind = "text"
	InputSelect   InputKind = "select"
	InputCheckbox InputKind = "checkbox"
	InputReadOnly InputKind = "readonly"
)

// Input is one rendered field or feature flag.
type Input struct {
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Kind    InputKind        `json:"kind"`
	Value   string           `json:"value,omitempty"`
	Unit    string           `json:"unit,omitempty"`
	Options []catalog.Option `json:"options,omitempty"`
	Checked bool             `json:"checked,omitempty"`
}

// Section groups the inputs of one category.
type Section struct {
	Title  string  `json:"title"`
	Inputs []Input `json:"inputs"`
}

// StepIndicator is one entry of the step bar.
type StepIndicator struct {
	Step    Step   `json:"step"`
	Title   string `json:"title"`
	Current bool   `json:"current"`
}

// ErrorView is the inline error banner.
type ErrorView struct {
	Message string               `json:"message"`
	Fields  []payload.FieldError `json:"fields,omitempty"`
}

// View is a render of the current step.
type View struct {
	Mode       Mode            `json:"mode"`
	Step       Step            `json:"step"`
	Steps      []StepIndicator `json:"steps"`
	ReadOnly   bool            `json:"readOnly"`
	CanSubmit  bool            `json:"canSubmit"`
	Submitting bool            `json:"submitting"`
	Sections   []Section       `json:"sections"`
	Error      *ErrorView      `json:"error,omitempty"`
}

// Render draws the current step. In view mode every value is formatted text
// and only entered specs and selected features are listed.
func (c *Controller) Render() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	ro := c.mode == ModeView
	v := View{
		Mode:       c.mode,
		Step:       c.step,
		ReadOnly:   ro,
		CanSubmit:  !ro && !c.closed && !c.submitting && c.step == StepFeatures,
		Submitting: c.submitting,
		Error:      errorView(c.lastErr),
	}
	for _, s := range Steps {
		v.Steps = append(v.Steps, StepIndicator{Step: s, Title: s.Title(), Current: s == c.step})
	}

	reg := c.builder.Registry()
	switch c.step {
	case StepBasicInfo:
		v.Sections = []Section{c.renderBasic(ro)}
	case StepSpecifications:
		for _, cat := range reg.SpecCategories() {
			sec := Section{Title: catalog.Humanize(string(cat))}
			for _, def := range reg.SpecFieldsOf(cat) {
				if in, ok := c.renderSpec(def, ro); ok {
					sec.Inputs = append(sec.Inputs, in)
				}
			}
			if len(sec.Inputs) > 0 || !ro {
				v.Sections = append(v.Sections, sec)
			}
		}
	case StepFeatures:
		for _, cat := range reg.FeatureCategories() {
			sec := Section{Title: catalog.Humanize(string(cat))}
			for _, def := range reg.FeatureFlagsOf(cat) {
				on := c.state.IsSelected(string(cat), string(def.Name))
				switch {
				case !ro:
					sec.Inputs = append(sec.Inputs, Input{
						Key:     string(cat) + "." + string(def.Name),
						Label:   def.Label,
						Kind:    InputCheckbox,
						Checked: on,
					})
				case on:
					sec.Inputs = append(sec.Inputs, Input{
						Key:   string(cat) + "." + string(def.Name),
						Label: def.Label,
						Kind:  InputReadOnly,
						Value: def.Label,
					})
				}
			}
			if len(sec.Inputs) > 0 || !ro {
				v.Sections = append(v.Sections, sec)
			}
		}
	}
	return v
}

func (c *Controller) renderBasic(ro bool) Section {
	price := c.priceInput
	if ro {
		price = attributes.FormatNumber(c.base.BasePrice)
	}
	kind := func(k InputKind) InputKind {
		if ro {
			return InputReadOnly
		}
		return k
	}
	return Section{
		Title: StepBasicInfo.Title(),
		Inputs: []Input{
			{Key: payload.FieldModelID, Label: "Model", Kind: kind(InputText), Value: c.base.ModelID},
			{Key: payload.FieldName, Label: "Variant Name", Kind: kind(InputText), Value: c.base.Name},
			{Key: payload.FieldBasePrice, Label: "Base Price", Kind: kind(InputNumber), Value: price},
		},
	}
}

// renderSpec reports false when a read-only field has no value.
func (c *Controller) renderSpec(def catalog.SpecFieldDef, ro bool) (Input, bool) {
	in := Input{Key: string(def.Name), Label: def.Label, Unit: def.Unit}
	sv, set := c.state.Spec(string(def.Name))
	raw := ""
	if set {
		raw = attributes.ToString(sv.Value)
	}

	if ro {
		if !set || raw == "" {
			return Input{}, false
		}
		in.Kind = InputReadOnly
		switch {
		case def.LabelMapped():
			in.Value = def.OptionLabel(raw)
		case def.HasUnit():
			in.Value = raw + " " + def.Unit
		default:
			in.Value = raw
		}
		return in, true
	}

	in.Value = raw
	switch {
	case def.LabelMapped():
		in.Kind = InputSelect
		in.Options = append([]catalog.Option(nil), def.Options...)
	case def.Type == catalog.FieldNumber:
		in.Kind = InputNumber
	default:
		in.Kind = InputText
	}
	return in, true
}

func errorView(err error) *ErrorView {
	if err == nil {
		return nil
	}
	var verr *payload.ValidationError
	if errors.As(err, &verr) {
		return &ErrorView{Message: err.Error(), Fields: verr.Fields}
	}
	return &ErrorView{Message: err.Error()}
}
