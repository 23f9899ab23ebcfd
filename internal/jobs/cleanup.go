// Package jobs runs background maintenance on the lookup audit log.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultSchedule = "@daily"

// Cleaner deletes audit rows older than a cutoff.
type Cleaner interface {
	CleanupOldLookupRuns(cutoff time.Time) (int64, error)
}

// Retention prunes the audit log on a cron schedule.
type Retention struct {
	cleaner   Cleaner
	retention time.Duration
	schedule  string
	now       func() time.Time
}

func NewRetention(cleaner Cleaner, retentionDays int, schedule string) *Retention {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Retention{
		cleaner:   cleaner,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		schedule:  schedule,
		now:       time.Now,
	}
}

// RunOnce deletes everything older than the retention window.
func (r *Retention) RunOnce() (int64, error) {
	cutoff := r.now().UTC().Add(-r.retention)
	n, err := r.cleaner.CleanupOldLookupRuns(cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup lookup runs: %w", err)
	}
	return n, nil
}

// Run schedules cleanup until ctx is cancelled.
func (r *Retention) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() {
		n, err := r.RunOnce()
		if err != nil {
			log.Printf("retention: %v", err)
			return
		}
		log.Printf("retention: deleted %d lookup runs", n)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", r.schedule, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
