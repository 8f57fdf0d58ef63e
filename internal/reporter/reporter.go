// Package reporter logs periodic aggregate statistics on a cron
// schedule so operators can watch growth without scraping metrics.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/clonehost/clonehost/internal/store"
)

// Counts is the slice of the store the reporter reads.
type Counts interface {
	CountTenants(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
}

// Reporter runs the stats job on a standard 5-field cron schedule.
type Reporter struct {
	schedule string
	counts   Counts
	logger   *slog.Logger
	cron     *cron.Cron
}

// New creates a Reporter. An empty schedule disables it; Start and Stop
// are then no-ops.
func New(schedule string, counts Counts, logger *slog.Logger) *Reporter {
	return &Reporter{schedule: schedule, counts: counts, logger: logger}
}

// Start validates the schedule and begins ticking.
func (r *Reporter) Start() error {
	if r.schedule == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	r.cron = cron.New(cron.WithParser(parser))

	if _, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.runOnce(context.Background()); err != nil {
			r.logger.Error("stats report failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("reporter: invalid schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	r.logger.Info("reporter started", "schedule", r.schedule)
	return nil
}

// Stop waits for an in-flight report to finish.
func (r *Reporter) Stop(context.Context) error {
	if r.cron == nil {
		return nil
	}
	<-r.cron.Stop().Done()
	return nil
}

// runOnce reads the aggregates and logs them on one line.
func (r *Reporter) runOnce(ctx context.Context) error {
	tenants, err1 := r.counts.CountTenants(ctx)
	users, err2 := r.counts.CountUsers(ctx)
	files, err3 := r.counts.CountFiles(ctx)
	if err := errors.Join(err1, err2, err3); err != nil {
		return fmt.Errorf("reporter: read counts: %w", err)
	}

	r.logger.Info("stats report",
		"tenants", tenants,
		"users", users,
		"files", files,
	)
	return nil
}

var _ Counts = (store.Store)(nil)
