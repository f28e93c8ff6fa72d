// Package service implements the variant backing service: validation,
// key canonicalization, persistence and event emission.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/ent/schema"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/store"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// Audit identifies who is making a change and through which channel.
type Audit struct {
	Actor         string
	Source        string
	CorrelationID string
}

// VariantService stores variants submitted in the outbound wire shape and
// serves them back in the inbound shape.
type VariantService struct {
	store    store.Store
	recorder event.Recorder

	now   func() time.Time
	newID func() string
}

// New creates a VariantService. recorder may be nil.
func New(st store.Store, recorder event.Recorder) *VariantService {
	return &VariantService{
		store:    st,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

func checkAudit(a Audit) error {
	var fields []payload.FieldError
	if a.Actor == "" {
		fields = append(fields, payload.FieldError{Field: "actor", Message: "actor is required"})
	}
	if !slices.Contains(schema.Sources, a.Source) {
		fields = append(fields, payload.FieldError{
			Field:   "source",
			Message: fmt.Sprintf("source must be one of %s", strings.Join(schema.Sources, ", ")),
		})
	}
	if len(fields) > 0 {
		return &payload.ValidationError{Fields: fields}
	}
	return nil
}

// CanonicalSpecs rewrites spec keys to their capitalized canonical form.
// When two keys collapse onto one, the already-capitalized key wins.
func CanonicalSpecs(in types.WireSpecs) types.WireSpecs {
	out := make(types.WireSpecs, len(in))
	for k, v := range in {
		ck := catalog.UpperFirst(k)
		if _, taken := out[ck]; taken && k != ck {
			continue
		}
		out[ck] = v
	}
	return out
}

// CanonicalFeatures lower-cases category keys and drops duplicate flags.
// Selections under keys that collapse onto one category are merged.
func CanonicalFeatures(in types.WireFeatures) types.WireFeatures {
	out := make(types.WireFeatures, len(in))
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		ck := strings.ToLower(k)
		flags := out[ck]
		if flags == nil {
			flags = []string{}
		}
		for _, f := range in[k] {
			if !slices.Contains(flags, f) {
				flags = append(flags, f)
			}
		}
		out[ck] = flags
	}
	return out
}

// Create validates and stores a new variant.
func (s *VariantService) Create(ctx context.Context, audit Audit, p *types.WirePayload) (*types.VariantRecord, error) {
	if err := checkAudit(audit); err != nil {
		return nil, err
	}
	if err := payload.ValidateBase(types.BaseFields{ModelID: p.ModelID, Name: p.Name, BasePrice: p.BasePrice}); err != nil {
		return nil, err
	}
	now := s.now()
	rec := &types.VariantRecord{
		ID:            s.newID(),
		ModelID:       p.ModelID,
		Name:          strings.TrimSpace(p.Name),
		BasePrice:     p.BasePrice,
		Specs:         CanonicalSpecs(p.Specs),
		Features:      CanonicalFeatures(p.Features),
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     audit.Actor,
		UpdatedBy:     audit.Actor,
		Source:        audit.Source,
		CorrelationID: audit.CorrelationID,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating variant: %w", err)
	}
	s.record(ctx, event.NewVariantCreated(rec))
	return rec, nil
}

// Update replaces the attributes of an existing variant.
func (s *VariantService) Update(ctx context.Context, audit Audit, id string, p *types.WirePayload) (*types.VariantRecord, error) {
	if err := checkAudit(audit); err != nil {
		return nil, err
	}
	if err := payload.ValidateBase(types.BaseFields{ModelID: p.ModelID, Name: p.Name, BasePrice: p.BasePrice}); err != nil {
		return nil, err
	}
	prev, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading variant %s: %w", id, err)
	}
	rec := prev.Clone()
	rec.ModelID = p.ModelID
	rec.Name = strings.TrimSpace(p.Name)
	rec.BasePrice = p.BasePrice
	rec.Specs = CanonicalSpecs(p.Specs)
	rec.Features = CanonicalFeatures(p.Features)
	rec.UpdatedAt = s.now()
	rec.UpdatedBy = audit.Actor
	rec.Source = audit.Source
	rec.CorrelationID = audit.CorrelationID
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("updating variant %s: %w", id, err)
	}
	s.record(ctx, event.NewVariantUpdated(prev, rec))
	return rec, nil
}

// Get returns one variant.
func (s *VariantService) Get(ctx context.Context, id string) (*types.VariantRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading variant %s: %w", id, err)
	}
	return rec, nil
}

// List returns one page of variants and the total match count.
func (s *VariantService) List(ctx context.Context, opts store.ListOptions) ([]*types.VariantRecord, int, error) {
	return s.store.List(ctx, opts)
}

// Delete removes a variant.
func (s *VariantService) Delete(ctx context.Context, audit Audit, id string) error {
	if err := checkAudit(audit); err != nil {
		return err
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading variant %s: %w", id, err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting variant %s: %w", id, err)
	}
	s.record(ctx, event.NewVariantDeleted(rec, audit.Actor, audit.Source))
	return nil
}

// record emits an event. Failures are logged and do not fail the write.
func (s *VariantService) record(ctx context.Context, evt event.DomainEvent) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, evt); err != nil {
		log.Warn().Err(err).Str("event_type", evt.EventType).Str("variant_id", evt.VariantID).Msg("event recording failed")
	}
}

// Actor binds the service to one audit identity. It satisfies the wizard's
// RecordSource and Submitter interfaces for in-process wizards.
type Actor struct {
	svc   *VariantService
	audit Audit
}

// As returns an Actor for audit.
func (s *VariantService) As(audit Audit) *Actor {
	return &Actor{svc: s, audit: audit}
}

func (a *Actor) Get(ctx context.Context, id string) (*types.VariantRecord, error) {
	return a.svc.Get(ctx, id)
}

func (a *Actor) Create(ctx context.Context, p *types.WirePayload) (*types.VariantRecord, error) {
	return a.svc.Create(ctx, a.audit, p)
}

func (a *Actor) Update(ctx context.Context, id string, p *types.WirePayload) (*types.VariantRecord, error) {
	return a.svc.Update(ctx, a.audit, id, p)
}
