// Package catalog provides the node type registry backing generation and validation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/flowgen/pkg/models"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a loaded catalog snapshot is served before reloading.
const DefaultTTL = 5 * time.Minute

const refreshKey = "catalog"

// ErrEmptyCatalog is returned when a source yields no node types.
var ErrEmptyCatalog = errors.New("catalog source returned no node types")

// Source loads node type definitions from a backing store.
type Source interface {
	ListNodeTypes(ctx context.Context) ([]*models.NodeTypeDefinition, error)
}

// RefreshObserver is notified after every catalog load.
type RefreshObserver interface {
	CatalogRefreshed(size int, degraded bool)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock injects the clock used for expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Catalog) { c.clock = clock }
}

// WithTTL sets the snapshot lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithObserver registers a refresh observer.
func WithObserver(observer RefreshObserver) Option {
	return func(c *Catalog) { c.observer = observer }
}

// Catalog is a read-mostly cache over a Source. Snapshots expire after the TTL
// and are reloaded lazily by the next caller; concurrent reloads collapse into one
// backend call. A failed load serves Fallback() until the next window.
type Catalog struct {
	source   Source
	logger   *slog.Logger
	clock    clockwork.Clock
	ttl      time.Duration
	observer RefreshObserver
	group    singleflight.Group

	mu       sync.RWMutex
	byType   map[string]*models.NodeTypeDefinition
	ordered  []*models.NodeTypeDefinition
	loadedAt time.Time
	degraded bool
}

// New creates a catalog reading from source.
func New(logger *slog.Logger, source Source, opts ...Option) *Catalog {
	c := &Catalog{
		source: source,
		logger: logger,
		clock:  clockwork.NewRealClock(),
		ttl:    DefaultTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup returns the definition of typeID.
func (c *Catalog) Lookup(ctx context.Context, typeID string) (*models.NodeTypeDefinition, bool) {
	c.ensureFresh(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.byType[typeID]

	return def, ok
}

// List returns every definition in source order.
func (c *Catalog) List(ctx context.Context) []*models.NodeTypeDefinition {
	c.ensureFresh(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.NodeTypeDefinition, len(c.ordered))
	copy(out, c.ordered)

	return out
}

// Degraded reports whether the current snapshot is the built-in fallback.
func (c *Catalog) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.degraded
}

// Invalidate drops the current snapshot so the next read reloads it.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadedAt = time.Time{}
}

// Refresh reloads the snapshot now. The returned error is the load failure, in
// which case the fallback set has been installed.
func (c *Catalog) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do(refreshKey, func() (any, error) {
		return nil, c.load(ctx)
	})

	return err
}

func (c *Catalog) ensureFresh(ctx context.Context) {
	c.mu.RLock()
	fresh := !c.loadedAt.IsZero() && c.clock.Since(c.loadedAt) < c.ttl
	c.mu.RUnlock()

	if fresh {
		return
	}

	// Failures already degrade to the fallback set and are logged in load.
	_ = c.Refresh(ctx)
}

func (c *Catalog) load(ctx context.Context) error {
	defs, err := c.source.ListNodeTypes(ctx)
	if err == nil && len(defs) == 0 {
		err = ErrEmptyCatalog
	}

	degraded := false

	if err != nil {
		defs = Fallback()
		degraded = true

		c.logger.WarnContext(ctx, "Failed to load node catalog, using fallback node set",
			"error", err, "fallback_size", len(defs))
	}

	byType := make(map[string]*models.NodeTypeDefinition, len(defs))
	for _, def := range defs {
		byType[def.TypeID] = def
	}

	c.mu.Lock()
	c.byType = byType
	c.ordered = defs
	c.loadedAt = c.clock.Now()
	c.degraded = degraded
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.CatalogRefreshed(len(defs), degraded)
	}

	if err != nil {
		return fmt.Errorf("failed to load node catalog: %w", err)
	}

	c.logger.DebugContext(ctx, "Node catalog loaded", "size", len(defs))

	return nil
}

// StaticSource serves a fixed list of definitions.
type StaticSource []*models.NodeTypeDefinition

// ListNodeTypes implements Source.
func (s StaticSource) ListNodeTypes(_ context.Context) ([]*models.NodeTypeDefinition, error) {
	return s, nil
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]*models.NodeTypeDefinition, error)

// ListNodeTypes implements Source.
func (f SourceFunc) ListNodeTypes(ctx context.Context) ([]*models.NodeTypeDefinition, error) {
	return f(ctx)
}
