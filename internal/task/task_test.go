package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/blues/takeover/internal/chain"
	"github.com/blues/takeover/internal/config"
	"github.com/blues/takeover/internal/logic"
	"github.com/blues/takeover/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nowUnix = int64(1_700_000_000)

func address(seed byte) string {
	return base58.Encode(bytes.Repeat([]byte{seed}, 32))
}

func newTakeoverLogic(t *testing.T, now *time.Time) (*logic.TakeoverLogic, *logic.ContributionLogic) {
	t.Helper()
	db, err := repository.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	clock := func() time.Time { return *now }
	takeovers := logic.NewTakeoverLogic(db, config.TakeoverConfig{DefaultRewardRateBp: 150, DefaultParticipationBp: 1000})
	takeovers.SetClock(clock)
	contributions := logic.NewContributionLogic(db)
	contributions.SetClock(clock)
	return takeovers, contributions
}

func createTakeover(t *testing.T, takeovers *logic.TakeoverLogic, seed byte) string {
	t.Helper()
	supply, _ := new(big.Int).SetString("1000000000000000", 10)
	created, err := takeovers.CreateTakeover(context.Background(), logic.CreateTakeoverInput{
		Address:       address(seed),
		Authority:     address(seed + 1),
		V1TokenMint:   address(seed + 2),
		TotalSupply:   supply,
		TokenDecimals: 6,
		StartTime:     nowUnix - 10,
		EndTime:       nowUnix + 100,
	})
	require.NoError(t, err)
	return created.Address
}

type fakeChain struct {
	mu        sync.Mutex
	accounts  map[string]*chain.TakeoverAccount
	supplies  map[string]*big.Int
	supplyErr error
	calls     int
}

func (f *fakeChain) GetTakeoverAccount(_ context.Context, addr string) (*chain.TakeoverAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	acc, ok := f.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", chain.ErrAccountNotFound, addr)
	}
	return acc, nil
}

func (f *fakeChain) GetTokenSupply(_ context.Context, mint string) (*chain.TokenSupply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.supplyErr != nil {
		return nil, f.supplyErr
	}
	amount, ok := f.supplies[mint]
	if !ok {
		return nil, errors.New("unknown mint")
	}
	return &chain.TokenSupply{Amount: amount, Decimals: 6}, nil
}

func TestTakeoverSyncJob(t *testing.T) {
	now := time.Unix(nowUnix, 0)
	takeovers, _ := newTakeoverLogic(t, &now)
	ctx := context.Background()

	synced := createTakeover(t, takeovers, 1)
	finalized := createTakeover(t, takeovers, 10)
	missing := createTakeover(t, takeovers, 20)

	burned, _ := new(big.Int).SetString("500000000000000", 10)
	fc := &fakeChain{
		accounts: map[string]*chain.TakeoverAccount{
			synced:    {TotalSupply: big.NewInt(1), TotalContributed: big.NewInt(4_000), ContributorCount: 2},
			finalized: {TotalContributed: big.NewInt(9), ContributorCount: 1, IsFinalized: true},
		},
		supplies: map[string]*big.Int{address(3): burned},
	}

	job := NewTakeoverSyncJob(takeovers, fc, 4, time.Minute)
	assert.Equal(t, "takeover_sync", job.GetName())

	n, err := job.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, fc.calls)

	got, err := takeovers.GetTakeover(ctx, synced)
	require.NoError(t, err)
	assert.Equal(t, "4000", got.TotalContributed.String())
	assert.Equal(t, int64(2), got.ContributorCount)
	// mint 实时供应量覆盖账户里的供应量
	assert.Equal(t, "500000000000000", got.TotalSupply.String())
	assert.Equal(t, "50000000000000", got.GoalAmount.String())

	got, err = takeovers.GetTakeover(ctx, finalized)
	require.NoError(t, err)
	assert.True(t, got.IsFinalized)
	assert.False(t, got.IsSuccessful)

	got, err = takeovers.GetTakeover(ctx, missing)
	require.NoError(t, err)
	assert.Nil(t, got.LastSyncedAt)

	// 已结算的不再同步
	fc.calls = 0
	n, err = job.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, fc.calls)
}

func TestTakeoverSyncJobFallsBackToAccountSupply(t *testing.T) {
	now := time.Unix(nowUnix, 0)
	takeovers, _ := newTakeoverLogic(t, &now)
	ctx := context.Background()
	addr := createTakeover(t, takeovers, 1)

	accountSupply, _ := new(big.Int).SetString("2000000000000000", 10)
	fc := &fakeChain{
		accounts:  map[string]*chain.TakeoverAccount{addr: {TotalSupply: accountSupply}},
		supplyErr: errors.New("rpc unavailable"),
	}

	n, err := NewTakeoverSyncJob(takeovers, fc, 1, time.Minute).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := takeovers.GetTakeover(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000", got.TotalSupply.String())
}

func TestTakeoverFinalizeJob(t *testing.T) {
	now := time.Unix(nowUnix, 0)
	takeovers, contributions := newTakeoverLogic(t, &now)
	ctx := context.Background()
	addr := createTakeover(t, takeovers, 1)

	_, err := contributions.Contribute(ctx, logic.ContributeInput{
		TakeoverAddress: addr,
		Contributor:     address(40),
		Amount:          big.NewInt(100_000_000_000_000),
	})
	require.NoError(t, err)

	job := NewTakeoverFinalizeJob(takeovers, time.Minute)
	assert.Equal(t, "takeover_finalize", job.GetName())

	job.Execute()
	got, err := takeovers.GetTakeover(ctx, addr)
	require.NoError(t, err)
	assert.False(t, got.IsFinalized)

	now = now.Add(200 * time.Second)
	job.Execute()
	got, err = takeovers.GetTakeover(ctx, addr)
	require.NoError(t, err)
	assert.True(t, got.IsFinalized)
	assert.True(t, got.IsSuccessful)
}

type countingCleaner struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCleaner) Cleanup(time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1
}

func (c *countingCleaner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestManagerRunsJobs(t *testing.T) {
	cleaner := &countingCleaner{}
	job := NewRateLimitCleanupJob(cleaner, 20*time.Millisecond)
	assert.Equal(t, "rate_limit_cleanup", job.GetName())

	m, err := NewManager(job)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()

	assert.Eventually(t, func() bool { return cleaner.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
}
