package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// DriftReport names the undeclared attributes found on one stored variant.
type DriftReport struct {
	EventID   string
	VariantID string
	Drift     catalog.Drift
}

// DriftConsumer checks stored variants against the registry and logs spec
// keys, feature categories and flags it does not declare. Such keys survive
// a round trip untouched but are never rendered.
type DriftConsumer struct {
	registry *catalog.Registry
	logger   zerolog.Logger

	mu      sync.Mutex
	reports []DriftReport
}

func NewDriftConsumer(reg *catalog.Registry, logger zerolog.Logger) *DriftConsumer {
	return &DriftConsumer{registry: reg, logger: logger}
}

func (c *DriftConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	var rec *types.VariantRecord
	switch evt.EventType {
	case event.TypeVariantCreated:
		var p event.VariantCreatedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("decoding %s payload: %w", evt.EventType, err)
		}
		rec = p.Record
	case event.TypeVariantUpdated:
		var p event.VariantUpdatedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("decoding %s payload: %w", evt.EventType, err)
		}
		rec = p.Record
	default:
		return nil
	}
	if rec == nil {
		return nil
	}

	drift := c.registry.Unknown(rec.Specs, rec.Features)
	if drift.Empty() {
		return nil
	}
	c.mu.Lock()
	c.reports = append(c.reports, DriftReport{EventID: evt.ID, VariantID: rec.ID, Drift: drift})
	c.mu.Unlock()

	c.logger.Warn().
		Str("variant_id", rec.ID).
		Strs("spec_keys", drift.SpecKeys).
		Strs("feature_categories", drift.FeatureCategories).
		Strs("feature_flags", drift.FeatureFlags).
		Msg("variant carries attributes outside the registry")
	return nil
}

// Reports returns the drift found so far.
func (c *DriftConsumer) Reports() []DriftReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DriftReport(nil), c.reports...)
}
