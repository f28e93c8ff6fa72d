package eventbus

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/event"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func record(specs types.WireSpecs, features types.WireFeatures) *types.VariantRecord {
	now := time.Now().UTC()
	return &types.VariantRecord{
		ID: "v-1", ModelID: "model-1", Name: "Base", BasePrice: 1,
		Specs: specs, Features: features,
		CreatedAt: now, UpdatedAt: now, CreatedBy: "alice", UpdatedBy: "alice", Source: "user",
	}
}

type collector struct {
	mu   sync.Mutex
	seen []string
}

func (c *collector) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, evt.EventType)
	return nil
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.seen...)
}

func TestBus_DispatchesInOrderAndDrainsOnStop(t *testing.T) {
	bus := New(8)
	c := &collector{}
	var failed int
	bus.Subscribe("collector", c)
	bus.Subscribe("failing", HandlerFunc(func(context.Context, event.DomainEvent) error {
		failed++
		return errors.New("boom")
	}))
	bus.Start(context.Background())

	rec := record(nil, nil)
	require.NoError(t, bus.Record(context.Background(), event.NewVariantCreated(rec)))
	bus.Publish(context.Background(), event.NewVariantUpdated(rec, rec))
	require.NoError(t, bus.Record(context.Background(), event.NewVariantDeleted(rec, "alice", "user")))
	bus.Stop()

	assert.Equal(t, []string{event.TypeVariantCreated, event.TypeVariantUpdated, event.TypeVariantDeleted}, c.types())
	assert.Equal(t, 3, failed)

	assert.ErrorIs(t, bus.Record(context.Background(), event.NewVariantCreated(rec)), ErrDropped)
	bus.Stop()
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := New(1)
	rec := record(nil, nil)
	require.NoError(t, bus.Record(context.Background(), event.NewVariantCreated(rec)))
	assert.ErrorIs(t, bus.Record(context.Background(), event.NewVariantCreated(rec)), ErrDropped)

	c := &collector{}
	bus.Subscribe("collector", c)
	bus.Start(context.Background())
	bus.Stop()
	assert.Len(t, c.types(), 1)
}

func TestBus_StopsOnContextCancel(t *testing.T) {
	bus := New(4)
	c := &collector{}
	bus.Subscribe("collector", c)
	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)
	bus.Publish(ctx, event.NewVariantCreated(record(nil, nil)))
	cancel()
	bus.Stop()
	assert.LessOrEqual(t, len(c.types()), 1)
}

func TestLogConsumer(t *testing.T) {
	var buf bytes.Buffer
	lc := NewLogConsumer(zerolog.New(&buf))
	require.NoError(t, lc.HandleEvent(context.Background(), event.NewVariantCreated(record(nil, nil))))
	assert.Contains(t, buf.String(), `"event_type":"variant_created"`)
	assert.Contains(t, buf.String(), `"variant_id":"v-1"`)
}

func TestDriftConsumer(t *testing.T) {
	var buf bytes.Buffer
	dc := NewDriftConsumer(catalog.Default(), zerolog.New(&buf))
	ctx := context.Background()

	clean := record(
		types.WireSpecs{"Horsepower": {Value: 670.0, Unit: "hp"}},
		types.WireFeatures{"safety": {"BackupCamera"}},
	)
	require.NoError(t, dc.HandleEvent(ctx, event.NewVariantCreated(clean)))
	assert.Empty(t, dc.Reports())

	drifted := record(
		types.WireSpecs{"Horsepower": {Value: 670.0}, "horsepower": {Value: 1.0}, "Color": {Value: "red"}},
		types.WireFeatures{"safety": {"Airbags"}, "lighting": {"Ambient"}},
	)
	require.NoError(t, dc.HandleEvent(ctx, event.NewVariantUpdated(clean, drifted)))
	require.NoError(t, dc.HandleEvent(ctx, event.NewVariantDeleted(drifted, "alice", "user")))

	reports := dc.Reports()
	require.Len(t, reports, 1)
	d := reports[0].Drift
	assert.Equal(t, []string{"Color", "horsepower"}, d.SpecKeys)
	assert.Equal(t, []string{"lighting"}, d.FeatureCategories)
	assert.Equal(t, []string{"Safety.Airbags"}, d.FeatureFlags)
	assert.Contains(t, buf.String(), "outside the registry")

	bad := event.DomainEvent{EventType: event.TypeVariantCreated, Payload: []byte("{")}
	assert.Error(t, dc.HandleEvent(ctx, bad))
}
