package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec reloads the catalog on the same cadence as the default TTL.
const DefaultRefreshSpec = "@every 5m"

const refreshTimeout = 30 * time.Second

// Refresher reloads a catalog on a cron schedule so request paths rarely pay
// for a reload.
type Refresher struct {
	catalog *Catalog
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewRefresher schedules c.Refresh with spec (standard cron or @every descriptors).
func NewRefresher(logger *slog.Logger, c *Catalog, spec string) (*Refresher, error) {
	r := &Refresher{
		catalog: c,
		logger:  logger,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
	}

	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid catalog refresh schedule %q: %w", spec, err)
	}

	return r, nil
}

// Start runs the schedule in the background.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := r.catalog.Refresh(ctx); err != nil {
		r.logger.WarnContext(ctx, "Scheduled catalog refresh failed", "error", err)

		return
	}

	r.logger.DebugContext(ctx, "Catalog refreshed", "node_types", len(r.catalog.List(ctx)))
}
