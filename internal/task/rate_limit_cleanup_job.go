package task

import (
	"time"

	"github.com/blues/takeover/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// Cleaner 可定期清理的组件，如限流器
type Cleaner interface {
	Cleanup(now time.Time) int
}

// RateLimitCleanupJob 清理空闲的限流客户端
type RateLimitCleanupJob struct {
	cleaner  Cleaner
	interval time.Duration
}

func NewRateLimitCleanupJob(cleaner Cleaner, interval time.Duration) *RateLimitCleanupJob {
	return &RateLimitCleanupJob{cleaner: cleaner, interval: interval}
}

func (j *RateLimitCleanupJob) GetName() string {
	return "rate_limit_cleanup"
}

func (j *RateLimitCleanupJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *RateLimitCleanupJob) Execute() {
	if n := j.cleaner.Cleanup(time.Now()); n > 0 {
		logger.Debug("Removed %d idle rate limit entries", n)
	}
}
