// Package scheduler runs a pass repeatedly on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulbousquet/fomcscrape/internal/logger"
	"github.com/robfig/cron/v3"
)

// Job is one scheduled pass.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a cron schedule. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	spec       string
	schedule   cron.Schedule
	job        Job
	log        logger.Logger
	runOnStart bool

	mu     sync.Mutex
	status Status
}

// Status describes the most recent pass.
type Status struct {
	Running      bool      `json:"running"`
	Runs         int       `json:"runs"`
	LastStarted  time.Time `json:"last_started,omitzero"`
	LastFinished time.Time `json:"last_finished,omitzero"`
	LastError    string    `json:"last_error,omitempty"`
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRunOnStart runs the job once as soon as Run is called.
func WithRunOnStart() Option {
	return func(s *Scheduler) {
		s.runOnStart = true
	}
}

// New parses a standard five-field cron expression (descriptors such as
// "@daily" and "@every 1h" are accepted too).
func New(spec string, job Job, log logger.Logger, opts ...Option) (*Scheduler, error) {
	// Use standard 5-field cron parser (minute hour day month weekday)
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", spec, err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &Scheduler{spec: spec, schedule: schedule, job: job, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Status returns a snapshot of the most recent pass.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Run blocks until ctx is cancelled, then waits for a running job to return.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{log: s.log}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	entry := c.Schedule(s.schedule, cron.FuncJob(func() { s.runJob(ctx) }))
	c.Start()

	s.log.Info("Scheduler started",
		logger.String("cron", s.spec),
		logger.Any("next_run", s.Next(time.Now())),
	)

	var wg sync.WaitGroup
	if s.runOnStart {
		// The wrapped job shares the skip-if-running guard with the ticks.
		wrapped := c.Entry(entry).WrappedJob
		wg.Add(1)
		go func() {
			defer wg.Done()
			wrapped.Run()
		}()
	}

	<-ctx.Done()
	s.log.Info("Stopping scheduler")

	<-c.Stop().Done()
	wg.Wait()
	s.log.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.log.Info("Scheduled run started")
	s.mu.Lock()
	s.status.Running = true
	s.status.LastStarted = start
	s.mu.Unlock()

	err := s.job(ctx)

	s.mu.Lock()
	s.status.Running = false
	s.status.Runs++
	s.status.LastFinished = time.Now()
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("Scheduled run failed",
			logger.Error(err),
			logger.Duration("duration", time.Since(start)),
		)
		return
	}

	s.log.Info("Scheduled run finished", logger.Duration("duration", time.Since(start)))
}

// cronLogger adapts Logger to cron.Logger. Cron's chatty info messages are
// logged at debug level.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(keysAndValues []any) []logger.Field {
	out := make([]logger.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return out
}
