package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	activitydomain "github.com/loopwire/partnerly/internal/activity/domain"
	"github.com/loopwire/partnerly/internal/clock"
	obsmetrics "github.com/loopwire/partnerly/internal/observability/metrics"
	performancedomain "github.com/loopwire/partnerly/internal/performance/domain"
	similaritydomain "github.com/loopwire/partnerly/internal/similarity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log            *zap.Logger
	ActivitySvc    activitydomain.Service
	SimilaritySvc  similaritydomain.Service
	PerformanceSvc performancedomain.Service
	Clock          clock.Clock
	Config         Config `optional:"true"`
}

// Scheduler drives the derived-data pipeline: every tick it drains the
// activity stream into enrollment stats, and once per RecomputeInterval
// it rebuilds the similarity and performance tables from scratch.
type Scheduler struct {
	log            *zap.Logger
	cfg            Config
	clock          clock.Clock
	activitySvc    activitydomain.Service
	similaritySvc  similaritydomain.Service
	performanceSvc performancedomain.Service

	lastRecompute time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.ActivitySvc == nil || p.SimilaritySvc == nil || p.PerformanceSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            p.Config.withDefaults(),
		clock:          p.Clock,
		activitySvc:    p.ActivitySvc,
		similaritySvc:  p.SimilaritySvc,
		performanceSvc: p.PerformanceSvc,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	// treat deadline as soft-timeout: the next tick picks up where
	// this one left off
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) AggregateActivityJob(ctx context.Context) error {
	res, err := s.activitySvc.ProcessBatch(ctx, s.cfg.AggregateBatchSize, true)
	if err != nil {
		return err
	}
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.AddBatchProcessed("aggregate_activity", res.Processed)
	schedMetrics.AddRowErrors("aggregate_activity", res.ErrorCount)
	return nil
}

func (s *Scheduler) RecomputeSimilarityJob(ctx context.Context) error {
	return s.similaritySvc.CalculateProgramSimilarities(ctx)
}

func (s *Scheduler) RecomputePerformanceJob(ctx context.Context) error {
	return s.performanceSvc.CalculatePartnerProgramPerformances(ctx)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	err := s.runJob(parent, "aggregate_activity", s.cfg.AggregateTimeout, s.AggregateActivityJob)

	if s.recomputeDue() {
		err = errors.Join(err, s.runJob(parent, "recompute_similarity", s.cfg.RecomputeTimeout, s.RecomputeSimilarityJob))
		err = errors.Join(err, s.runJob(parent, "recompute_performance", s.cfg.RecomputeTimeout, s.RecomputePerformanceJob))
		s.lastRecompute = s.clock.Now()
	}

	return err
}

func (s *Scheduler) recomputeDue() bool {
	if s.lastRecompute.IsZero() {
		return true
	}
	return s.clock.Now().Sub(s.lastRecompute) >= s.cfg.RecomputeInterval
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
