// Package retention schedules periodic cleanup of aged conversations.
package retention

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger deletes conversations older than the given age and reports how
// many were removed.
type Purger interface {
	PurgeOlderThan(ctx context.Context, days int) (int, error)
}

// Janitor runs the retention purge on a daily schedule.
type Janitor struct {
	cron   *cron.Cron
	purger Purger
	days   int
}

// New creates a Janitor purging conversations older than days.
func New(purger Purger, days int) *Janitor {
	return &Janitor{
		cron:   cron.New(),
		purger: purger,
		days:   days,
	}
}

// Start registers the daily job and begins the schedule. An immediate
// purge runs first so a long-stopped server catches up on start.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc("@daily", j.run); err != nil {
		return err
	}
	go j.run()
	j.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running purge to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := j.purger.PurgeOlderThan(ctx, j.days)
	if err != nil {
		log.Printf("retention: purging conversations: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("retention: purged %d conversations older than %d days", removed, j.days)
	}
}
