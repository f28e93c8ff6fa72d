package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
)

// Indexer consumes domain events, classifies them, and writes history
// entries to the store. It is subscribed to the event bus.
type Indexer struct {
	store Store
	log   zerolog.Logger
}

// NewIndexer creates a new activity indexer.
func NewIndexer(store Store, logger zerolog.Logger) *Indexer {
	return &Indexer{store: store, log: logger}
}

// HandleEvent is the indexing pipeline for a single domain event:
// extract changed fields, classify, summarise, write.
func (idx *Indexer) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	var changed []string
	if evt.EventType == event.TypeVariantUpdated {
		var p event.VariantUpdatedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("decoding %s payload: %w", evt.EventType, err)
		}
		changed = p.Changed
	}

	c, ok := Classify(evt.EventType, changed)
	if !ok {
		idx.log.Debug().Str("event_id", evt.ID).Str("event_type", evt.EventType).Msg("activity: event not classified")
		return nil
	}

	entry := Entry{
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt,
		VariantID:  evt.VariantID,
		Actor:      evt.Actor,
		Source:     evt.Source,
		Summary:    summarize(evt, c),
		Categories: c.Categories,
		Weight:     c.Weight,
		Changed:    changed,
	}
	return idx.store.WriteEntries(ctx, []Entry{entry})
}

// summarize joins the rule descriptions and names the actor.
func summarize(evt event.DomainEvent, c Classification) string {
	s := strings.Join(c.Descriptions, ", ")
	if evt.EventType != event.TypeVariantUpdated {
		s = evt.Summary
	}
	if evt.Actor != "" {
		s += " by " + evt.Actor
	}
	return s
}
