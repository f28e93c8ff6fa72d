// Package wizard sequences the three-step variant editor: basic info,
// specifications and features. It owns the attribute state of one editing
// session, gates navigation and submission, and remembers per-step scroll
// offsets.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// Mode selects whether the wizard creates, edits or only displays a variant.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
	ModeView   Mode = "view"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCreate, ModeEdit, ModeView:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown wizard mode %q", s)
	}
}

// RecordSource loads an existing variant.
type RecordSource interface {
	Get(ctx context.Context, id string) (*types.VariantRecord, error)
}

// Submitter persists a validated payload.
type Submitter interface {
	Create(ctx context.Context, p *types.WirePayload) (*types.VariantRecord, error)
	Update(ctx context.Context, id string, p *types.WirePayload) (*types.VariantRecord, error)
}

// Controller is one open wizard. All methods are safe to call from
// different goroutines; the submission round trip runs outside the lock so
// reads stay responsive while it is pending.
type Controller struct {
	builder   *payload.Builder
	submitter Submitter

	mu         sync.Mutex
	mode       Mode
	recordID   string
	step       Step
	scroll     ScrollMemory
	base       types.BaseFields
	priceInput string
	state      *attributes.State
	submitting bool
	closed     bool
	lastErr    error
}

// New opens an empty wizard in create mode.
func New(builder *payload.Builder, submitter Submitter) *Controller {
	return &Controller{
		builder:   builder,
		submitter: submitter,
		mode:      ModeCreate,
		step:      StepBasicInfo,
		scroll:    make(ScrollMemory),
		state:     attributes.NewState(),
	}
}

// Open opens a wizard in the given mode. Edit and view modes load the
// record from src and convert its attributes with the builder's normalizer.
func Open(ctx context.Context, src RecordSource, builder *payload.Builder, submitter Submitter, mode Mode, id string) (*Controller, error) {
	if mode == ModeCreate {
		return New(builder, submitter), nil
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%s mode requires a variant id", mode)
	}
	rec, err := src.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading variant %s: %w", id, err)
	}
	c := New(builder, submitter)
	c.mode = mode
	c.recordID = rec.ID
	c.base = rec.Base()
	c.priceInput = attributes.FormatNumber(rec.BasePrice)
	c.state = builder.Normalizer().Inbound(rec.Specs, rec.Features)
	return c, nil
}

// Mode returns the wizard mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Step returns the current step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// RecordID returns the id of the loaded record, empty in create mode.
func (c *Controller) RecordID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordID
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Closed reports whether the wizard was closed or submitted successfully.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Err returns the error to show inline: the last validation or submission
// failure, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Base returns the current base fields.
func (c *Controller) Base() types.BaseFields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base
}

// State returns a copy of the attribute state.
func (c *Controller) State() *attributes.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Navigate applies a navigation action. offset is the scroll offset of the
// step being left; the returned value is the offset to restore on the step
// entered.
func (c *Controller) Navigate(a Action, offset int) (Step, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := Transition(c.step, a)
	if next == c.step {
		return c.step, offset
	}
	c.scroll.Leave(c.step, offset)
	c.step = next
	return c.step, c.scroll.Enter(next)
}

// GoTo jumps to a step.
func (c *Controller) GoTo(s Step, offset int) (Step, int) { return c.Navigate(JumpTo(s), offset) }

// Next moves forward one step.
func (c *Controller) Next(offset int) (Step, int) { return c.Navigate(Next(), offset) }

// Previous moves back one step.
func (c *Controller) Previous(offset int) (Step, int) { return c.Navigate(Previous(), offset) }

// editable must be called with c.mu held.
func (c *Controller) editable() error {
	if c.closed {
		return ErrClosed
	}
	if c.mode == ModeView {
		return ErrReadOnly
	}
	return nil
}

// SetBasic sets a base field from raw input. basePrice is coerced to a
// number; unparseable input is kept and fails validation on submit.
func (c *Controller) SetBasic(field, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	switch field {
	case payload.FieldModelID:
		c.base.ModelID = raw
	case payload.FieldName:
		c.base.Name = raw
	case payload.FieldBasePrice:
		c.priceInput = raw
		c.base.BasePrice = attributes.ToNumber(raw)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// SetSpec stores a raw value for a declared spec field. An empty value
// removes the entry so the state stays sparse.
func (c *Controller) SetSpec(field string, raw any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	reg := c.builder.Registry()
	if _, ok := reg.SpecField(catalog.SpecField(field)); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if raw == nil || raw == "" {
		c.state.ClearSpec(field)
		return nil
	}
	c.state.SetSpec(reg, field, raw)
	return nil
}

// ClearSpec removes a spec value.
func (c *Controller) ClearSpec(field string) error {
	return c.SetSpec(field, nil)
}

// SetFeature selects or deselects a declared feature flag.
func (c *Controller) SetFeature(category, flag string, selected bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(); err != nil {
		return err
	}
	if !c.builder.Registry().HasFeatureFlag(catalog.FeatureCategory(category), catalog.FeatureFlag(flag)) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, category, flag)
	}
	c.state.SetFeature(category, flag, selected)
	return nil
}

// Submit validates and persists the variant. It is only available from the
// features step. A validation failure makes no network call; a remote
// failure returns a *SubmissionError. Either way the wizard stays open with
// its state intact. On success the wizard closes and discards its state.
//
// If the wizard is closed while the request is pending, the result is
// dropped and ErrClosed is returned.
func (c *Controller) Submit(ctx context.Context) (*types.VariantRecord, error) {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.step != StepFeatures {
		c.mu.Unlock()
		return nil, ErrNotFinalStep
	}
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	p, err := c.builder.Build(c.base, c.state)
	if err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}
	c.lastErr = nil
	c.submitting = true
	mode, id := c.mode, c.recordID
	c.mu.Unlock()

	var rec *types.VariantRecord
	if mode == ModeEdit {
		rec, err = c.submitter.Update(ctx, id, p)
	} else {
		rec, err = c.submitter.Create(ctx, p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if c.closed {
		return nil, ErrClosed
	}
	if err != nil {
		serr := newSubmissionError(err)
		c.lastErr = serr
		return nil, serr
	}
	c.closed = true
	c.state = attributes.NewState()
	return rec, nil
}

// Close discards the wizard. A pending submission is not cancelled; its
// result is ignored when it completes.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.state = attributes.NewState()
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var verr *payload.ValidationError
	return errors.As(err, &verr)
}
