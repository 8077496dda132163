package task

import (
	"context"
	"time"

	"github.com/blues/takeover/internal/logger"
	"github.com/blues/takeover/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// TakeoverFinalizeJob 结算已过截止时间的众筹
type TakeoverFinalizeJob struct {
	takeovers *logic.TakeoverLogic
	interval  time.Duration
}

// NewTakeoverFinalizeJob 创建结算任务
func NewTakeoverFinalizeJob(takeovers *logic.TakeoverLogic, interval time.Duration) *TakeoverFinalizeJob {
	return &TakeoverFinalizeJob{takeovers: takeovers, interval: interval}
}

// GetName 获取任务名称
func (j *TakeoverFinalizeJob) GetName() string {
	return "takeover_finalize"
}

// GetSchedule 获取调度配置
func (j *TakeoverFinalizeJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *TakeoverFinalizeJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	n, err := j.takeovers.FinalizeDue(ctx)
	if err != nil {
		logger.Error("Takeover finalize task failed: %v", err)
		return
	}
	if n > 0 {
		logger.Info("Takeover finalize task completed: %d takeovers finalized", n)
	}
}
