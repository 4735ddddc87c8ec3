package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"lendinghub/internal/config"

	"github.com/robfig/cron/v3"
)

// ============================================================
// Periodic sweeps: reservation expiry + due reminders
// ============================================================

// Sweeper is the part of the lending core the scheduler drives
type Sweeper interface {
	RunExpirySweep(ctx context.Context) (*ExpirySweepResult, error)
	RunDueReminderSweep(ctx context.Context, thresholdDays int) (*DueReminderSweepResult, error)
}

const sweepTimeout = 5 * time.Minute

// SweepScheduler runs the sweeps on cron schedules. A run still in progress
// when its next tick fires is skipped.
type SweepScheduler struct {
	sweeper Sweeper
	cfg     config.SweepConfig
	cron    *cron.Cron
}

// NewSweepScheduler creates a new sweep scheduler
func NewSweepScheduler(sweeper Sweeper, cfg config.SweepConfig) *SweepScheduler {
	return &SweepScheduler{
		sweeper: sweeper,
		cfg:     cfg,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// Start registers both sweeps and starts the cron loop
func (s *SweepScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.ExpiryCron, func() { s.RunExpiry() }); err != nil {
		return fmt.Errorf("invalid EXPIRY_SWEEP_CRON %q: %w", s.cfg.ExpiryCron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.DueReminderCron, func() { s.RunDueReminders() }); err != nil {
		return fmt.Errorf("invalid DUE_REMINDER_CRON %q: %w", s.cfg.DueReminderCron, err)
	}

	s.cron.Start()
	log.Printf("🚀 SweepScheduler started (expiry: %s, reminders: %s, %d days ahead)",
		s.cfg.ExpiryCron, s.cfg.DueReminderCron, s.cfg.DueReminderDays)
	return nil
}

// Stop waits for running sweeps to finish
func (s *SweepScheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 SweepScheduler stopped")
}

// RunExpiry runs one expiry sweep
func (s *SweepScheduler) RunExpiry() *ExpirySweepResult {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	result, err := s.sweeper.RunExpirySweep(ctx)
	if err != nil {
		log.Printf("❌ Expiry sweep error: %v", err)
	}
	return result
}

// RunDueReminders runs one due-reminder sweep
func (s *SweepScheduler) RunDueReminders() *DueReminderSweepResult {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	result, err := s.sweeper.RunDueReminderSweep(ctx, s.cfg.DueReminderDays)
	if err != nil {
		log.Printf("❌ Due reminder sweep error: %v", err)
	}
	return result
}
