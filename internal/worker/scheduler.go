package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyJob runs once a day at a fixed local wall-clock time.
type DailyJob struct {
	Name   string
	Hour   int
	Minute int
	Run    func(ctx context.Context, now time.Time) error
}

// Scheduler fires daily jobs at their configured local time. It replaces an
// external cron trigger: each job sleeps until its next occurrence in the
// configured timezone, runs, and re-arms for the following day.
type Scheduler struct {
	loc    *time.Location
	jobs   []DailyJob
	logger *zap.Logger

	wg sync.WaitGroup
}

// NewScheduler constructs a scheduler for the given timezone.
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{loc: loc, logger: logger}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job DailyJob) {
	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per job. Jobs stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go func(job DailyJob) {
			defer s.wg.Done()
			s.runLoop(ctx, job)
		}(job)
	}
}

// Wait blocks until every job loop has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, job DailyJob) {
	s.logger.Info("scheduler job armed",
		zap.String("job", job.Name), zap.Int("hour", job.Hour), zap.Int("minute", job.Minute),
		zap.String("timezone", s.loc.String()))

	for {
		now := time.Now().In(s.loc)
		next := NextRun(now, job.Hour, job.Minute)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler job stopped", zap.String("job", job.Name))
			return
		case fired := <-timer.C:
			if err := job.Run(ctx, fired.In(s.loc)); err != nil {
				s.logger.Error("scheduled job failed",
					zap.String("job", job.Name), zap.Error(err))
			}
		}
	}
}

// NextRun is the first instant at hour:minute in now's location strictly
// after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
