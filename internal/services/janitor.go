// Package services – retention sweep
//
// Background janitor that periodically purges aged usage records and,
// when a selection retention horizon is configured, aged selections. It
// runs off the request path and takes no locks that block it.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/dizzymate/aura-bot/internal/repo"
)

// Janitor deletes expired rows on a fixed interval.
type Janitor struct {
	DB       *gorm.DB
	Interval time.Duration
	// UsageRetention is the horizon for usage records.
	UsageRetention time.Duration
	// SelectionRetention is the horizon for daily selections; zero keeps
	// them forever.
	SelectionRetention time.Duration
	Log                zerolog.Logger
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	j.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep performs one retention pass. Failures are logged and do not stop
// future passes.
func (j *Janitor) Sweep(ctx context.Context) {
	now := time.Now().UTC()

	n, err := repo.PurgeUsageBefore(ctx, j.DB, now.Add(-j.UsageRetention))
	if err != nil {
		j.Log.Error().Err(err).Msg("usage sweep failed")
	} else if n > 0 {
		sweepDeletedTotal.WithLabelValues("command_usage").Add(float64(n))
		j.Log.Info().Int64("rows", n).Msg("purged expired usage records")
	}

	if j.SelectionRetention <= 0 {
		return
	}
	n, err = repo.PurgeSelectionsBefore(ctx, j.DB, now.Add(-j.SelectionRetention))
	if err != nil {
		j.Log.Error().Err(err).Msg("selection sweep failed")
	} else if n > 0 {
		sweepDeletedTotal.WithLabelValues("daily_selections").Add(float64(n))
		j.Log.Info().Int64("rows", n).Msg("purged expired selections")
	}
}
