package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionCleaner deletes conversation sessions whose TTL has passed
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// SessionCleanupJob purges expired conversation sessions on a cron schedule
type SessionCleanupJob struct {
	cleaner  SessionCleaner
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// NewSessionCleanupJob creates the job. schedule is a six-field cron
// expression (seconds first).
func NewSessionCleanupJob(cleaner SessionCleaner, schedule string) *SessionCleanupJob {
	return &SessionCleanupJob{
		cleaner:  cleaner,
		schedule: schedule,
		timeout:  30 * time.Second,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start registers the cleanup and begins the scheduler
func (j *SessionCleanupJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return fmt.Errorf("invalid session cleanup schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	logrus.Infof("🧹 Session cleanup scheduled (%s)", j.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running cleanup to finish
func (j *SessionCleanupJob) Stop() {
	<-j.cron.Stop().Done()
	logrus.Info("Session cleanup stopped")
}

// Run performs one cleanup pass
func (j *SessionCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	deleted, err := j.cleaner.CleanupExpired(ctx)
	if err != nil {
		logrus.WithError(err).Error("❌ Session cleanup failed")
		return
	}
	if deleted > 0 {
		logrus.Infof("Removed %d expired sessions", deleted)
	}
}
