// Package calc 实现迁移众筹（takeover）的金额核算：目标金额、奖励池、
// 安全上限、进度状态以及领取时的奖励/退款计算。
//
// 所有链上数量都以最小单位的 *big.Int 表示，计算过程不经过浮点数。
// 浮点数只出现在展示用的百分比里。
package calc

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// BasisPointDenominator 参与率的基点分母，10000bp = 100%
	BasisPointDenominator = 10000
	// RewardRateDenominator 奖励倍率以倍数的百分之一表示，150 = 1.5x
	RewardRateDenominator = 100

	RewardPoolPercent   = 80
	SafetyCushionFactor = 98 // 奖励池中可分配的百分比，保留 2%

	// MinGoalTokens 目标金额下限（整币单位）
	MinGoalTokens = 1_000_000
)

var (
	bigBasisPoints   = big.NewInt(BasisPointDenominator)
	bigHundred       = big.NewInt(100)
	bigRewardPoolPct = big.NewInt(RewardPoolPercent)
	bigCushion       = big.NewInt(SafetyCushionFactor)
)

// GoalInput 目标金额计算输入
type GoalInput struct {
	TotalSupply           *big.Int // 原始总供应量（最小单位）
	Decimals              int
	TargetParticipationBp int
	RewardRateBp          int
}

// GoalMetrics 创建时派生的核算结果
type GoalMetrics struct {
	ActualSupply             decimal.Decimal // 仅用于展示
	GoalAmount               *big.Int
	RewardPoolTokens         *big.Int
	LiquidityPoolTokens      *big.Int
	MaxSafeTotalContribution *big.Int
}

// ComputeGoal 根据供应量、参与率和奖励倍率计算目标金额与各资金池
func ComputeGoal(in GoalInput) (*GoalMetrics, error) {
	if in.TotalSupply == nil || in.TotalSupply.Sign() <= 0 {
		return nil, rangeError("total_supply", MsgSupplyPositive)
	}
	if _, err := checkU64("total_supply", in.TotalSupply); err != nil {
		return nil, err
	}
	if err := ValidateDecimals(in.Decimals); err != nil {
		return nil, err
	}
	if err := ValidateParticipationRate(in.TargetParticipationBp); err != nil {
		return nil, err
	}
	if err := ValidateRewardRate(in.RewardRateBp); err != nil {
		return nil, err
	}

	supply := in.TotalSupply

	goal := mulDiv(supply, big.NewInt(int64(in.TargetParticipationBp)), bigBasisPoints)
	minGoal := new(big.Int).Mul(big.NewInt(MinGoalTokens), pow10(in.Decimals))
	if goal.Cmp(minGoal) < 0 {
		goal = minGoal
	}

	rewardPool := mulDiv(supply, bigRewardPoolPct, bigHundred)
	liquidityPool := new(big.Int).Sub(supply, rewardPool)

	return &GoalMetrics{
		ActualSupply:             ToTokens(supply, in.Decimals),
		GoalAmount:               goal,
		RewardPoolTokens:         rewardPool,
		LiquidityPoolTokens:      liquidityPool,
		MaxSafeTotalContribution: MaxSafeTotalContribution(rewardPool, in.RewardRateBp),
	}, nil
}

// MaxSafeTotalContribution floor(rewardPool * 0.98 / (rewardRateBp / 100))
func MaxSafeTotalContribution(rewardPool *big.Int, rewardRateBp int) *big.Int {
	if rewardPool == nil || rewardRateBp <= 0 {
		return new(big.Int)
	}
	// rewardPool * 98/100 * 100/bp 约分为 rewardPool * 98 / bp
	return mulDiv(rewardPool, bigCushion, big.NewInt(int64(rewardRateBp)))
}

// SafeRewardPool floor(rewardPool * 98 / 100)
func SafeRewardPool(rewardPool *big.Int) *big.Int {
	if rewardPool == nil {
		return new(big.Int)
	}
	return mulDiv(rewardPool, bigCushion, bigHundred)
}

// mulDiv floor(a * b / c)
func mulDiv(a, b, c *big.Int) *big.Int {
	n := new(big.Int).Mul(a, b)
	return n.Quo(n, c)
}
