package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/internal/clock"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubRegistrationSvc counts sweep invocations; the other lifecycle
// operations are never reached from the scheduler.
type stubRegistrationSvc struct {
	regdomain.Service

	sweeps  int
	expired int
	err     error
}

func (s *stubRegistrationSvc) ExpireReservations(ctx context.Context) (int, error) {
	s.sweeps++
	return s.expired, s.err
}

func newScheduler(t *testing.T, svc regdomain.Service, cfg Config) *Scheduler {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	sched, err := New(Params{
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		RegistrationSvc: svc,
		Config:          cfg,
	})
	require.NoError(t, err)
	return sched
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceSweeps(t *testing.T) {
	svc := &stubRegistrationSvc{expired: 3}
	sched := newScheduler(t, svc, Config{})

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, svc.sweeps)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 2, svc.sweeps)
}

func TestRunOnceReportsJobFailure(t *testing.T) {
	svc := &stubRegistrationSvc{err: errors.New("db unavailable")}
	sched := newScheduler(t, svc, Config{})

	err := sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), jobReservationSweep)
}

func TestRunOnceHonorsEnabledJobs(t *testing.T) {
	svc := &stubRegistrationSvc{}
	sched := newScheduler(t, svc, Config{EnabledJobs: []string{"some_other_job"}})

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 0, svc.sweeps)

	sched = newScheduler(t, svc, Config{EnabledJobs: []string{"Reservation_Sweep"}})
	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, svc.sweeps)
}

func TestSweepWithoutLocker(t *testing.T) {
	// no redis configured: the nil locker always grants the lock
	svc := &stubRegistrationSvc{expired: 1}
	sched := newScheduler(t, svc, Config{})
	require.Nil(t, sched.locker)

	require.NoError(t, sched.ReservationSweepJob(context.Background()))
	assert.Equal(t, 1, svc.sweeps)
}
