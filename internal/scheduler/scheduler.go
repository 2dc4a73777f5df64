package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rosterly/internal/clock"
	obsmetrics "github.com/smallbiznis/rosterly/internal/observability/metrics"
	regdomain "github.com/smallbiznis/rosterly/internal/registration/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const jobReservationSweep = "reservation_sweep"

const lockKeyReservationSweep = "rosterly:scheduler:reservation_sweep"

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	RegistrationSvc regdomain.Service
	Locker          *Locker `optional:"true"`
	Config          Config  `optional:"true"`
}

// Scheduler drives the periodic reservation sweep. The sweep itself is
// idempotent and also runs inline ahead of capacity-sensitive
// operations; the scheduler only guarantees it keeps happening when the
// API is quiet.
type Scheduler struct {
	log             *zap.Logger
	cfg             Config
	genID           *snowflake.Node
	clock           clock.Clock
	registrationSvc regdomain.Service
	locker          *Locker
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.RegistrationSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:             p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:             p.Config.withDefaults(),
		genID:           p.GenID,
		clock:           p.Clock,
		registrationSvc: p.RegistrationSvc,
		locker:          p.Locker,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	runID := s.genID.Generate().String()
	log := s.log.With(
		zap.String("job", name),
		zap.String("run_id", runID),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		schedMetrics.IncJobTimeout(name)
		log.Warn("job timed out",
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	schedMetrics.IncJobError(name, err)
	log.Warn("job failed", zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	if s.isJobEnabled(jobReservationSweep) {
		err = errors.Join(err, s.runJob(parent, jobReservationSweep, s.ReservationSweepJob))
	}

	return err
}

// ReservationSweepJob cancels stale unpaid holds. When a distributed
// lock is configured, losing the race just skips this tick; the winner
// sweeps for everyone.
func (s *Scheduler) ReservationSweepJob(ctx context.Context) error {
	token, acquired, err := s.locker.TryLock(ctx, lockKeyReservationSweep, s.cfg.LockTTL)
	if err != nil {
		return err
	}
	if !acquired {
		s.log.Debug("sweep lock held elsewhere, skipping")
		return nil
	}
	defer func() {
		if releaseErr := s.locker.Release(context.WithoutCancel(ctx), lockKeyReservationSweep, token); releaseErr != nil {
			s.log.Warn("sweep lock release failed", zap.Error(releaseErr))
		}
	}()

	expired, err := s.registrationSvc.ExpireReservations(ctx)
	if err != nil {
		return err
	}
	obsmetrics.Scheduler().AddBatchProcessed(jobReservationSweep, obsmetrics.LockResourceReservationsForSweep, expired)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		if runLag := time.Since(nextRun); runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// empty means all jobs run
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
