package calc

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	MinRewardRateBp = 100
	MaxRewardRateBp = 200

	MinParticipationBp = 1
	MaxParticipationBp = 10000

	MaxTokenDecimals = 18

	// 供应量范围（整币单位）
	MinSupplyTokens = 1_000_000
	MaxSupplyTokens = 1_000_000_000_000

	// 价格精度：1 lamport = 1e-9 SOL
	PricePrecision = 9
)

var maxPriceSol = decimal.NewFromInt(1000)

const (
	MsgRewardRateRange    = "Reward rate must be between 1.0x and 2.0x (100-200 basis points)"
	MsgParticipationRange = "Participation rate must be between 0.01% and 100%"
	MsgSupplyRange        = "Token supply must be between 1M and 1T tokens"
	MsgPriceRange         = "Price must be greater than 0 and at most 1000 SOL"
	MsgPricePrecision     = "Price cannot be more precise than 1 lamport (9 decimal places)"
	MsgDecimalsRange      = "Token decimals must be between 0 and 18"
	MsgSupplyPositive     = "Token supply must be greater than 0"
)

// ValidateRewardRate 奖励倍率 [100, 200]
func ValidateRewardRate(bp int) error {
	if bp < MinRewardRateBp || bp > MaxRewardRateBp {
		return rangeError("reward_rate_bp", MsgRewardRateRange)
	}
	return nil
}

// ValidateParticipationRate 目标参与率 (0, 10000]
func ValidateParticipationRate(bp int) error {
	if bp < MinParticipationBp || bp > MaxParticipationBp {
		return rangeError("target_participation_bp", MsgParticipationRange)
	}
	return nil
}

// ValidateDecimals 代币精度 [0, 18]
func ValidateDecimals(decimals int) error {
	if decimals < 0 || decimals > MaxTokenDecimals {
		return rangeError("token_decimals", MsgDecimalsRange)
	}
	return nil
}

// ValidateSupply 校验原始供应量，按精度换算后需在 [1M, 1T] 之间
func ValidateSupply(raw *big.Int, decimals int) error {
	if err := ValidateDecimals(decimals); err != nil {
		return err
	}
	if raw == nil || raw.Sign() <= 0 {
		return rangeError("total_supply", MsgSupplyRange)
	}
	scale := pow10(decimals)
	min := new(big.Int).Mul(big.NewInt(MinSupplyTokens), scale)
	max := new(big.Int).Mul(big.NewInt(MaxSupplyTokens), scale)
	if raw.Cmp(min) < 0 || raw.Cmp(max) > 0 {
		return rangeError("total_supply", MsgSupplyRange)
	}
	return nil
}

// ValidatePrice 价格 (0, 1000] SOL，且不低于 lamport 精度
func ValidatePrice(field string, price decimal.Decimal) error {
	if !price.IsPositive() || price.GreaterThan(maxPriceSol) {
		return rangeError(field, MsgPriceRange)
	}
	if !price.Truncate(PricePrecision).Equal(price) {
		return rangeError(field, MsgPricePrecision)
	}
	return nil
}

// ValidateGoalReachable 目标金额不能超过安全上限，否则募资永远无法达标
func ValidateGoalReachable(m *GoalMetrics) error {
	if m.GoalAmount.Cmp(m.MaxSafeTotalContribution) > 0 {
		return rangeError("target_participation_bp", fmt.Sprintf(
			"Goal amount %s exceeds max safe total contribution %s, lower the participation rate or reward rate",
			m.GoalAmount, m.MaxSafeTotalContribution))
	}
	return nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
