package calc

import "math/big"

// ClaimType 领取类型
type ClaimType string

const (
	ClaimTypeReward ClaimType = "reward"
	ClaimTypeRefund ClaimType = "refund"
)

// ClaimSnapshot 领取时的众筹快照
type ClaimSnapshot struct {
	IsFinalized      bool
	IsSuccessful     bool
	RewardRateBp     int
	RewardPoolTokens *big.Int
	TotalContributed *big.Int
	AlreadyClaimed   bool
}

// Claim 领取结果
type Claim struct {
	Amount *big.Int
	Type   ClaimType
}

// ComputeClaim 计算单笔贡献可领取的奖励或退款
//
// 失败的众筹全额退还本金。成功的众筹按倍率计算奖励；当所有贡献者的预期奖励
// 之和超过安全奖励池时，按贡献占比从安全奖励池中分配。
func ComputeClaim(amount *big.Int, snap ClaimSnapshot) (*Claim, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, rangeError("amount", "Contribution amount must be greater than 0")
	}
	if !snap.IsFinalized {
		return nil, ErrNotFinalized
	}
	if snap.AlreadyClaimed {
		return nil, ErrAlreadyClaimed
	}

	if !snap.IsSuccessful {
		return &Claim{Amount: new(big.Int).Set(amount), Type: ClaimTypeRefund}, nil
	}

	if err := ValidateRewardRate(snap.RewardRateBp); err != nil {
		return nil, err
	}

	rate := big.NewInt(int64(snap.RewardRateBp))
	safePool := SafeRewardPool(snap.RewardPoolTokens)
	expected := ExpectedReward(amount, snap.RewardRateBp)

	total := snap.TotalContributed
	if total == nil || total.Cmp(amount) < 0 {
		total = amount
	}
	aggregate := mulDiv(total, rate, bigHundred)

	if aggregate.Cmp(safePool) <= 0 && expected.Cmp(safePool) <= 0 {
		return &Claim{Amount: expected, Type: ClaimTypeReward}, nil
	}

	// 奖励池不足：按贡献占比分配安全奖励池
	return &Claim{Amount: mulDiv(safePool, amount, total), Type: ClaimTypeReward}, nil
}

// ExpectedReward floor(amount * rewardRateBp / 100)
func ExpectedReward(amount *big.Int, rewardRateBp int) *big.Int {
	return mulDiv(amount, big.NewInt(int64(rewardRateBp)), bigHundred)
}

// LegacyScaledReward 旧版回退公式 floor(safePool * amount / (amount + 1))。
// 多人分配时会趋近整个安全奖励池，不再用于实际发放。
func LegacyScaledReward(amount, rewardPool *big.Int) *big.Int {
	denominator := new(big.Int).Add(amount, big.NewInt(1))
	return mulDiv(SafeRewardPool(rewardPool), amount, denominator)
}
