package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReindexer struct {
	calls atomic.Int32
	err   error
}

func (r *countingReindexer) RebuildIndex(ctx context.Context) (int, error) {
	r.calls.Add(1)
	return 3, r.err
}

func TestSchedulerRunsResync(t *testing.T) {
	r := &countingReindexer{}
	s := NewScheduler(r, "@every 1s")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 1)
	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerDisabledResync(t *testing.T) {
	r := &countingReindexer{}
	s := NewScheduler(r, "")
	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	assert.Empty(t, s.cron.Entries())
	assert.Zero(t, r.calls.Load())
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingReindexer{}, "every now and then")
	assert.Error(t, s.Start(context.Background()))
}

func TestResyncSkipsCancelledContext(t *testing.T) {
	r := &countingReindexer{}
	s := NewScheduler(r, "@every 1m")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.resyncLeaderboard(ctx)
	assert.Zero(t, r.calls.Load())
}

func TestResyncErrorIsSwallowed(t *testing.T) {
	r := &countingReindexer{err: errors.New("redis down")}
	s := NewScheduler(r, "@every 1m")

	assert.NotPanics(t, func() { s.resyncLeaderboard(context.Background()) })
	assert.Equal(t, int32(1), r.calls.Load())
}
