package logic

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/blues/takeover/internal/config"
	"github.com/blues/takeover/internal/model"
	"github.com/blues/takeover/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const baseUnix = int64(1_700_000_000)

var testDefaults = config.TakeoverConfig{DefaultRewardRateBp: 150, DefaultParticipationBp: 1000}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repository.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func testAddress(seed byte) string {
	return base58.Encode(bytes.Repeat([]byte{seed}, 32))
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) set(unix int64) { c.now = time.Unix(unix, 0) }

type fixture struct {
	db            *gorm.DB
	clock         *clock
	takeovers     *TakeoverLogic
	contributions *ContributionLogic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	c := &clock{now: time.Unix(baseUnix, 0)}

	f := &fixture{
		db:            db,
		clock:         c,
		takeovers:     NewTakeoverLogic(db, testDefaults),
		contributions: NewContributionLogic(db),
	}
	f.takeovers.SetClock(c.Now)
	f.contributions.SetClock(c.Now)
	return f
}

// billionSupplyInput 10 亿枚、6 位精度，默认费率下目标 1 亿枚
func billionSupplyInput(seed byte) CreateTakeoverInput {
	supply, _ := new(big.Int).SetString("1000000000000000", 10)
	return CreateTakeoverInput{
		Address:     testAddress(seed),
		Authority:   testAddress(seed + 1),
		V1TokenMint: testAddress(seed + 2),
		TokenName:   "Old Token",
		TokenSymbol: "OLD",
		TotalSupply: supply,

		TokenDecimals: 6,
		StartTime:     baseUnix - 100,
		EndTime:       baseUnix + 1000,
	}
}

func (f *fixture) createTakeover(t *testing.T, in CreateTakeoverInput) *model.TakeoverModel {
	t.Helper()
	takeover, err := f.takeovers.CreateTakeover(context.Background(), in)
	require.NoError(t, err)
	return takeover
}

func (f *fixture) contribute(t *testing.T, address, contributor string, amount int64) *model.ContributionModel {
	t.Helper()
	c, err := f.contributions.Contribute(context.Background(), ContributeInput{
		TakeoverAddress: address,
		Contributor:     contributor,
		Amount:          big.NewInt(amount),
	})
	require.NoError(t, err)
	return c
}

func intPtr(v int) *int { return &v }
