package eventbus

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
)

// LogConsumer logs every domain event.
type LogConsumer struct {
	logger zerolog.Logger
}

func NewLogConsumer(logger zerolog.Logger) *LogConsumer {
	return &LogConsumer{logger: logger}
}

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	c.logger.Info().
		Str("event_id", evt.ID).
		Str("event_type", evt.EventType).
		Str("variant_id", evt.VariantID).
		Str("actor", evt.Actor).
		Str("source", evt.Source).
		Time("occurred_at", evt.OccurredAt).
		Msg(evt.Summary)
	return nil
}
