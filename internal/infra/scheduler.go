package infra

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"tradewire/internal/service"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron            *cron.Cron
	summaryService  *service.SummaryService
	intervalMinutes int
}

// NewScheduler creates a new scheduler for the periodic book summary
func NewScheduler(summaryService *service.SummaryService, intervalMinutes int) *Scheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 15
	}
	return &Scheduler{
		cron:            cron.New(),
		summaryService:  summaryService,
		intervalMinutes: intervalMinutes,
	}
}

// Start registers the summary job and starts the cron loop
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("*/%d * * * *", s.intervalMinutes)

	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := s.summaryService.LogSummary(ctx); err != nil {
			log.Printf("[ERROR] Book summary failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule summary job: %w", err)
	}

	s.cron.Start()
	log.Printf("[INFO] Summary scheduler started (every %d minutes)", s.intervalMinutes)
	return nil
}

// Stop stops the cron loop
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
