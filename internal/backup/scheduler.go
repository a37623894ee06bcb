package backup

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the backup once per day at a configured time.
type Scheduler struct {
	service *Service
	dailyAt string
	logger  *log.Logger
}

// NewScheduler constructs a Scheduler. dailyAt is "HH:MM" in UTC.
func NewScheduler(service *Service, dailyAt string, logger *log.Logger) *Scheduler {
	return &Scheduler{service: service, dailyAt: dailyAt, logger: logger}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.service == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.UTC()) {
				continue
			}
			if _, err := s.service.Run(ctx); err != nil && s.logger != nil {
				s.logger.Printf("scheduled backup failed: %v", err)
			}
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	hour, minute, err := parseDailyAt(s.dailyAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

func parseDailyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
