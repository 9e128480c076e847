// Package scheduler drives periodic tick catch-up for every known user.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/vitality/internal/logging"
	"github.com/abhisek/vitality/internal/metrics"
	"github.com/abhisek/vitality/internal/progression"
)

// Ticker is the part of the engine the scheduler drives.
type Ticker interface {
	Users(ctx context.Context) ([]string, error)
	CatchUp(ctx context.Context, userID string, now time.Time) ([]*progression.TickResult, error)
}

// Summary reports one scheduler run.
type Summary struct {
	Users   int
	Applied int
	Failed  int
}

// Scheduler runs CatchUp for all users on a cron schedule. Ticks are
// idempotent, so overlapping or repeated runs are harmless; runs are
// still serialized to keep the log readable.
type Scheduler struct {
	ticker Ticker
	log    logrus.FieldLogger
	now    func() time.Time

	cron *cron.Cron
	run  sync.Mutex
}

// New creates a scheduler firing on spec, a standard cron expression
// with an optional leading seconds field, evaluated in loc.
func New(ticker Ticker, spec string, loc *time.Location, log logrus.FieldLogger) (*Scheduler, error) {
	if log == nil {
		log = logging.Discard()
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		ticker: ticker,
		log:    log.WithField("component", "scheduler"),
		now:    time.Now,
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s.cron = cron.New(cron.WithLocation(loc), cron.WithParser(parser), cron.WithChain(cron.Recover(cronLogger{s.log})))
	if _, err := s.cron.AddFunc(spec, func() {
		s.RunOnce(context.Background(), s.now())
	}); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops firing and waits for a running pass to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}

// RunOnce applies due ticks for every user as of now. A failure for one
// user is logged and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context, now time.Time) Summary {
	s.run.Lock()
	defer s.run.Unlock()

	start := time.Now()
	defer func() { metrics.SchedulerRunDuration.Observe(time.Since(start).Seconds()) }()

	var sum Summary
	users, err := s.ticker.Users(ctx)
	if err != nil {
		s.log.WithError(err).Error("list users failed")
		return sum
	}
	sum.Users = len(users)

	for _, id := range users {
		if ctx.Err() != nil {
			break
		}
		results, err := s.ticker.CatchUp(ctx, id, now)
		if err != nil {
			sum.Failed++
			s.log.WithField("user_id", id).WithError(err).Warn("catch-up failed")
			continue
		}
		sum.Applied += len(results)
	}

	s.log.WithFields(logrus.Fields{
		"users":   sum.Users,
		"applied": sum.Applied,
		"failed":  sum.Failed,
	}).Info("scheduled pass complete")
	return sum
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
