package calc

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateRewardRate(t *testing.T) {
	assert.EqualError(t, ValidateRewardRate(99), MsgRewardRateRange)
	assert.NoError(t, ValidateRewardRate(100))
	assert.NoError(t, ValidateRewardRate(150))
	assert.NoError(t, ValidateRewardRate(200))
	assert.EqualError(t, ValidateRewardRate(201), MsgRewardRateRange)
}

func TestValidateParticipationRate(t *testing.T) {
	assert.EqualError(t, ValidateParticipationRate(0), MsgParticipationRange)
	assert.NoError(t, ValidateParticipationRate(1))
	assert.NoError(t, ValidateParticipationRate(10000))
	assert.EqualError(t, ValidateParticipationRate(10001), MsgParticipationRange)
}

func TestValidateSupply(t *testing.T) {
	oneMillionTokens := mustBig(t, "1000000000000")     // 6 decimals
	oneTrillionTokens := mustBig(t, "1000000000000000000") // 6 decimals

	assert.NoError(t, ValidateSupply(oneMillionTokens, 6))
	assert.NoError(t, ValidateSupply(oneTrillionTokens, 6))
	assert.EqualError(t, ValidateSupply(new(big.Int).Sub(oneMillionTokens, big.NewInt(1)), 6), MsgSupplyRange)
	assert.EqualError(t, ValidateSupply(new(big.Int).Add(oneTrillionTokens, big.NewInt(1)), 6), MsgSupplyRange)
	assert.EqualError(t, ValidateSupply(nil, 6), MsgSupplyRange)
	assert.EqualError(t, ValidateSupply(oneMillionTokens, -1), MsgDecimalsRange)
}

func TestValidateGoalReachable(t *testing.T) {
	supply, _ := new(big.Int).SetString("1000000000000000", 10)

	m, err := ComputeGoal(GoalInput{TotalSupply: supply, Decimals: 6, TargetParticipationBp: 1000, RewardRateBp: 150})
	assert.NoError(t, err)
	assert.NoError(t, ValidateGoalReachable(m))

	m, err = ComputeGoal(GoalInput{TotalSupply: supply, Decimals: 6, TargetParticipationBp: 10000, RewardRateBp: 150})
	assert.NoError(t, err)
	err = ValidateGoalReachable(m)
	assert.ErrorIs(t, err, ErrInputRange)
	assert.Contains(t, err.Error(), "1000000000000000")
	assert.Contains(t, err.Error(), "522666666666666")

	// 100 万枚供应量时目标被下限抬到全部供应量
	small := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1_000_000))
	m, err = ComputeGoal(GoalInput{TotalSupply: small, Decimals: 6, TargetParticipationBp: 1000, RewardRateBp: 100})
	assert.NoError(t, err)
	assert.Error(t, ValidateGoalReachable(m))
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice("v1_market_price_sol", decimal.RequireFromString("0.000000001")))
	assert.NoError(t, ValidatePrice("v1_market_price_sol", decimal.NewFromInt(1000)))
	assert.EqualError(t, ValidatePrice("v1_market_price_sol", decimal.Zero), MsgPriceRange)
	assert.EqualError(t, ValidatePrice("v1_market_price_sol", decimal.RequireFromString("-0.5")), MsgPriceRange)
	assert.EqualError(t, ValidatePrice("v1_market_price_sol", decimal.RequireFromString("1000.000000001")), MsgPriceRange)
	assert.EqualError(t, ValidatePrice("v1_market_price_sol", decimal.RequireFromString("0.0000000001")), MsgPricePrecision)
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "1.5K", FormatCompact(big.NewInt(1_500_000_000), 6))
	assert.Equal(t, "1B", FormatCompact(mustBig(t, "1000000000000000"), 6))
	assert.Equal(t, "2T", FormatCompact(mustBig(t, "2000000000000"), 0))
	assert.Equal(t, "999", FormatCompact(big.NewInt(999), 0))
	assert.Equal(t, "0", FormatCompact(nil, 6))
}
