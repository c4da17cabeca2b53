package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/speakwise/speech-api/internal/services/jobs"
)

// Service periodically prunes finished jobs past the retention window
type Service struct {
	jobService    jobs.Service
	retentionDays int
	interval      time.Duration
	cancel        context.CancelFunc
}

// NewService creates a new retention service
func NewService(jobService jobs.Service, retentionDays int, interval time.Duration) *Service {
	return &Service{
		jobService:    jobService,
		retentionDays: retentionDays,
		interval:      interval,
	}
}

// Start begins the retention sweeps
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Run initial sweep
	s.sweep(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				log.Println("[INFO] Job retention service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Job retention service started (interval: %v, retention: %d days)", s.interval, s.retentionDays)
}

// Stop stops the retention sweeps
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// sweep deletes terminal jobs older than the retention window
func (s *Service) sweep(ctx context.Context) {
	deleted, err := s.jobService.CleanupOldJobs(ctx, s.retentionDays)
	if err != nil {
		log.Printf("[ERROR] Job retention sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[DEBUG] Job retention sweep removed %d old jobs", deleted)
	}
}
