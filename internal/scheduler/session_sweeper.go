package scheduler

import (
	"time"

	"github.com/docecupcake/cupcake-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Sweeper evicts idle sessions as of now and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SessionSweeper ends idle browsing sessions on a cron schedule.
type SessionSweeper struct {
	cron     *cron.Cron
	sessions Sweeper
	schedule string
	now      func() time.Time
}

func NewSessionSweeper(sessions Sweeper, schedule string) *SessionSweeper {
	return &SessionSweeper{
		cron:     cron.New(),
		sessions: sessions,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start registers the sweep job and starts the cron runner.
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for session sweep", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Session sweeper started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce performs a single sweep.
func (s *SessionSweeper) RunOnce() {
	removed := s.sessions.Sweep(s.now())
	if removed > 0 {
		logger.Info("Idle sessions swept", map[string]interface{}{
			"removed": removed,
		})
		return
	}
	logger.Debug("Session sweep found nothing to remove")
}

// Stop waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	logger.Info("Stopping session sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Session sweeper stopped")
}
