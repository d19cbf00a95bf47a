package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService schedules the overdue sweep
type CronService struct {
	cron    *cron.Cron
	job     cron.Job
	overdue OverdueSweeper
	spec    string
	timeout time.Duration
}

// NewCronService creates a cron scheduler running the sweep on spec (standard 5-field cron, UTC).
// A run still in progress when the next one is due makes the scheduler skip that tick.
func NewCronService(overdue OverdueSweeper, spec string) *CronService {
	logger := cronLogger{}
	s := &CronService{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithLogger(logger)),
		overdue: overdue,
		spec:    spec,
		timeout: 10 * time.Minute,
	}
	s.job = cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(s.runSweep))
	return s
}

// Start registers the sweep job and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddJob(s.spec, s.job); err != nil {
		return fmt.Errorf("invalid overdue sweep schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	slog.Info("🚀 CronService started", "overdue_sweep", s.spec)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("🛑 CronService stopped")
}

func (s *CronService) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.overdue.Run(ctx); err != nil {
		slog.Error("❌ Scheduled overdue sweep failed", "error", err)
	}
}

// cronLogger routes robfig/cron's logging into slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("❌ cron: "+msg, append(keysAndValues, "error", err)...)
}
