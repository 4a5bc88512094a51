// Package scheduler runs interaction ledger retention on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cleaner prunes expired week buckets and reports how many were removed
type Cleaner interface {
	CleanupOldInteractions(ctx context.Context) int
}

// CleanupScheduler triggers ledger cleanup on a cron schedule
type CleanupScheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	spec    string
	cleaner Cleaner
	logger  *zap.Logger
}

// New creates a scheduler for spec, evaluated in loc. Standard five-field
// specs and descriptors such as "@daily" or "@every 1h" are accepted.
func New(spec string, loc *time.Location, cleaner Cleaner, logger *zap.Logger) (*CleanupScheduler, error) {
	if cleaner == nil {
		return nil, fmt.Errorf("cleaner must not be nil")
	}
	if loc == nil {
		loc = time.Local
	}

	s := &CleanupScheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		cleaner: cleaner,
		logger:  logger,
	}
	if err := s.schedule(spec); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins cron execution
func (s *CleanupScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Ledger cleanup scheduled", zap.String("schedule", s.Spec()))
}

// Stop stops the scheduler and waits for a running cleanup to finish
func (s *CleanupScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Reschedule replaces the cleanup schedule
func (s *CleanupScheduler) Reschedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spec == s.spec {
		return nil
	}

	previous := s.entryID
	if err := s.scheduleLocked(spec); err != nil {
		return err
	}
	s.cron.Remove(previous)
	s.logger.Info("Ledger cleanup rescheduled", zap.String("schedule", spec))
	return nil
}

// Spec returns the active schedule
func (s *CleanupScheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Next returns the next scheduled run, zero before Start
func (s *CleanupScheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entry(s.entryID).Next
}

// RunNow runs cleanup immediately and returns the number of pruned buckets
func (s *CleanupScheduler) RunNow(ctx context.Context) int {
	return RunOnce(ctx, s.cleaner, s.logger, "schedule")
}

// RunOnce runs cleanup outside any schedule, such as on a Lambda cold start
// or a scheduled event, and returns the number of pruned buckets
func RunOnce(ctx context.Context, cleaner Cleaner, logger *zap.Logger, trigger string) int {
	start := time.Now()
	pruned := cleaner.CleanupOldInteractions(ctx)
	logger.Info("Ledger cleanup finished",
		zap.String("trigger", trigger),
		zap.Int("pruned", pruned),
		zap.Duration("duration", time.Since(start)),
	)
	return pruned
}

func (s *CleanupScheduler) schedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleLocked(spec)
}

func (s *CleanupScheduler) scheduleLocked(spec string) error {
	id, err := s.cron.AddFunc(spec, func() {
		s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	s.entryID = id
	s.spec = spec
	return nil
}
