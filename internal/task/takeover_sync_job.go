package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blues/takeover/internal/chain"
	"github.com/blues/takeover/internal/logger"
	"github.com/blues/takeover/internal/logic"
	"github.com/blues/takeover/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
)

// ChainReader 同步任务依赖的链上查询
type ChainReader interface {
	GetTakeoverAccount(ctx context.Context, address string) (*chain.TakeoverAccount, error)
	GetTokenSupply(ctx context.Context, mint string) (*chain.TokenSupply, error)
}

// TakeoverSyncJob 用链上账户状态校准本地记录
type TakeoverSyncJob struct {
	takeovers *logic.TakeoverLogic
	chain     ChainReader
	workers   int
	interval  time.Duration
}

// NewTakeoverSyncJob 创建同步任务
func NewTakeoverSyncJob(takeovers *logic.TakeoverLogic, reader ChainReader, workers int, interval time.Duration) *TakeoverSyncJob {
	if workers <= 0 {
		workers = 1
	}
	return &TakeoverSyncJob{takeovers: takeovers, chain: reader, workers: workers, interval: interval}
}

// GetName 获取任务名称
func (j *TakeoverSyncJob) GetName() string {
	return "takeover_sync"
}

// GetSchedule 获取调度配置
func (j *TakeoverSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *TakeoverSyncJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	synced, err := j.Sync(ctx)
	if err != nil {
		logger.Error("Takeover sync task failed: %v", err)
		return
	}
	logger.Debug("Takeover sync task completed: %d takeovers synced", synced)
}

// Sync 并发同步所有未结算的众筹，返回成功数量
func (j *TakeoverSyncJob) Sync(ctx context.Context) (int, error) {
	takeovers, err := j.takeovers.ListUnfinalized(ctx)
	if err != nil {
		return 0, err
	}
	if len(takeovers) == 0 {
		return 0, nil
	}

	size := j.workers
	if len(takeovers) < size {
		size = len(takeovers)
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return 0, fmt.Errorf("failed to create sync pool of %d workers: %w", size, err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		synced atomic.Int64
	)
	for i := range takeovers {
		t := takeovers[i]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := j.syncOne(ctx, &t); err != nil {
				logger.Warn("Failed to sync takeover %s: %v", t.Address, err)
				return
			}
			synced.Add(1)
		}); err != nil {
			wg.Done()
			logger.Error("Failed to submit sync task for takeover %s: %v", t.Address, err)
		}
	}
	wg.Wait()

	return int(synced.Load()), nil
}

func (j *TakeoverSyncJob) syncOne(ctx context.Context, t *model.TakeoverModel) error {
	account, err := j.chain.GetTakeoverAccount(ctx, t.Address)
	if err != nil {
		if errors.Is(err, chain.ErrAccountNotFound) {
			logger.Debug("Takeover %s has no on-chain account yet", t.Address)
			return nil
		}
		return err
	}

	state := logic.OnChainState{
		Address:          t.Address,
		TotalSupply:      account.TotalSupply,
		TotalContributed: account.TotalContributed,
		ContributorCount: int64(account.ContributorCount),
		IsFinalized:      account.IsFinalized,
		IsSuccessful:     account.IsSuccessful,
	}

	// mint 的实时供应量优先于账户中记录的供应量
	if supply, err := j.chain.GetTokenSupply(ctx, t.V1TokenMint); err != nil {
		logger.Warn("Failed to fetch supply of mint %s: %v", t.V1TokenMint, err)
	} else {
		state.TotalSupply = supply.Amount
	}

	_, err = j.takeovers.ReconcileTakeover(ctx, state)
	return err
}
