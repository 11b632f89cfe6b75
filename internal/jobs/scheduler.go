// Package jobs runs the periodic background work of the server.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kushklicker/internal/logger"

	"github.com/robfig/cron/v3"
)

// Reindexer rebuilds the leaderboard index from the store.
type Reindexer interface {
	RebuildIndex(ctx context.Context) (int, error)
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron      *cron.Cron
	reindexer Reindexer
	resync    string
	log       *slog.Logger
}

// NewScheduler builds a UTC scheduler. resync is a cron schedule such as
// "@every 5m"; empty disables the leaderboard job.
func NewScheduler(reindexer Reindexer, resync string) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	return &Scheduler{
		cron:      c,
		reindexer: reindexer,
		resync:    resync,
		log:       logger.With("component", "scheduler"),
	}
}

// Start registers the jobs and starts the runner. Jobs stop seeing ctx
// values once ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.reindexer != nil && s.resync != "" {
		if _, err := s.cron.AddFunc(s.resync, func() { s.resyncLeaderboard(ctx) }); err != nil {
			return fmt.Errorf("schedule leaderboard resync: %w", err)
		}
	}

	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()), "leaderboard_resync", s.resync)
	return nil
}

func (s *Scheduler) resyncLeaderboard(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	n, err := s.reindexer.RebuildIndex(ctx)
	if err != nil {
		s.log.Error("leaderboard resync failed", "error", err)
		return
	}
	s.log.Debug("leaderboard resynced", "players", n, "took", time.Since(start))
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}
