package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/dukex/flowgen/pkg/models"
	"github.com/dukex/flowgen/pkg/persistence"
)

// Invalidator drops a cached catalog snapshot.
type Invalidator interface {
	Invalidate()
}

// CatalogSeeder writes the node catalog to the store and tells every running
// instance to reload it.
type CatalogSeeder struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
}

// NewCatalogSeeder creates a seeder. publisher may be nil.
func NewCatalogSeeder(logger *slog.Logger, persistence persistence.Persistence, publisher eventbus.EventPublisher) *CatalogSeeder {
	return &CatalogSeeder{
		logger:      logger.With("module", "catalog_seeder"),
		persistence: persistence,
		publisher:   publisher,
	}
}

// Seed validates defs and replaces the stored catalog with them.
func (s *CatalogSeeder) Seed(ctx context.Context, defs []*models.NodeTypeDefinition) error {
	err := catalog.Validate(defs)
	if err != nil {
		return NewValidationError("SeedCatalog", "INVALID_CATALOG", err.Error(), ErrInvalidCatalog)
	}

	err = s.persistence.SaveNodeTypes(ctx, defs)
	if err != nil {
		return fmt.Errorf("failed to save node types: %w", err)
	}

	s.logger.InfoContext(ctx, "Node catalog seeded", "node_types", len(defs))

	if s.publisher != nil {
		err = s.publisher.Publish(ctx, "catalog", events.CatalogSeeded{
			BaseEvent: events.NewBaseEvent(events.CatalogSeededEvent, ""),
			NodeTypes: len(defs),
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish catalog seeded event", "error", err)
		}
	}

	return nil
}

// InvalidateOnSeed returns an event handler that drops the cached snapshot of
// cache whenever the catalog is re-seeded.
func InvalidateOnSeed(logger *slog.Logger, cache Invalidator) eventbus.EventHandler {
	return func(ctx context.Context, event any) error {
		seeded, ok := event.(*events.CatalogSeeded)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		logger.InfoContext(ctx, "Catalog re-seeded, invalidating cache", "node_types", seeded.NodeTypes)
		cache.Invalidate()

		return nil
	}
}
