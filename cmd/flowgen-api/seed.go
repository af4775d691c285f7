package main

import (
	"context"
	"fmt"

	"github.com/dukex/flowgen/pkg/catalog"
	"github.com/dukex/flowgen/pkg/persistence"
	"github.com/dukex/flowgen/pkg/services"
)

func seedIfEmpty(ctx context.Context, seeder *services.CatalogSeeder, store persistence.Persistence) error {
	existing, err := store.NodeTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read node catalog: %w", err)
	}

	if len(existing) > 0 {
		return nil
	}

	return seeder.Seed(ctx, catalog.Builtin())
}
