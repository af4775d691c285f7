package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/channels/gochannel"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate() {
	c.calls.Add(1)
}

func TestCatalogSeeder_Seed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(testLogger()))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(testLogger(), pub, sub)
	defer func() { _ = bus.Close() }()

	cache := &countingInvalidator{}
	require.NoError(t, bus.Handle(events.CatalogSeededEvent, InvalidateOnSeed(testLogger(), cache)))
	require.NoError(t, bus.Subscribe(ctx))

	store := file.NewPersistence(t.TempDir())
	seeder := NewCatalogSeeder(testLogger(), store, bus)

	require.NoError(t, seeder.Seed(ctx, catalog.Builtin()))

	stored, err := store.NodeTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, len(catalog.Builtin()))

	assert.Eventually(t, func() bool { return cache.calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestCatalogSeeder_RejectsInvalidCatalog(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	seeder := NewCatalogSeeder(testLogger(), store, nil)

	err := seeder.Seed(context.Background(), []*models.NodeTypeDefinition{
		{TypeID: models.NodeTypeFunction, DisplayName: "Function", Category: models.CategoryTransform, Version: 1, ReplacedBy: "missing"},
	})
	assert.True(t, IsValidationError(err))

	stored, err := store.NodeTypes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestInvalidateOnSeed_WrongEvent(t *testing.T) {
	handler := InvalidateOnSeed(testLogger(), &countingInvalidator{})

	assert.Error(t, handler(context.Background(), &events.WorkflowSaved{}))
}
