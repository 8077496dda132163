package calc

import "math/big"

// Status 众筹状态
type Status string

const (
	StatusActive      Status = "active"       // 进行中
	StatusGoalReached Status = "goal_reached" // 已达标，可提前结算
	StatusExpired     Status = "expired"      // 已到期，待结算
	StatusSuccessful  Status = "successful"   // 已结算，成功
	StatusFailed      Status = "failed"       // 已结算，失败
)

// IsTerminal 是否为终态
func (s Status) IsTerminal() bool {
	return s == StatusSuccessful || s == StatusFailed
}

// GoalSources 目标金额候选，按字段顺序优先
type GoalSources struct {
	CalculatedMin *big.Int // 十亿级供应量计算出的最小目标
	LegacyMin     *big.Int // 旧版 min_amount 字段
	Derived       *big.Int // 由供应量与参与率派生
}

// EffectiveGoal 返回第一个有效（非空且为正）的目标金额
func EffectiveGoal(src GoalSources) *big.Int {
	for _, candidate := range []*big.Int{src.CalculatedMin, src.LegacyMin, src.Derived} {
		if candidate != nil && candidate.Sign() > 0 {
			return new(big.Int).Set(candidate)
		}
	}
	return new(big.Int)
}

// State 读取时的众筹状态快照
type State struct {
	TotalContributed *big.Int
	Goal             *big.Int
	EndTime          int64
	Now              int64
	IsFinalized      bool
	IsSuccessful     bool
}

// Progress 状态评估结果
type Progress struct {
	Status          Status  `json:"status"`
	ProgressPercent float64 `json:"progress_percent"` // 仅用于展示
	ProgressBp      int64   `json:"progress_bp"`
	IsGoalMet       bool    `json:"is_goal_met"`
	IsExpired       bool    `json:"is_expired"`
	CanFinalize     bool    `json:"can_finalize"`
}

// Evaluate 根据当前快照计算状态和进度，无副作用
func Evaluate(s State) Progress {
	contributed := s.TotalContributed
	if contributed == nil {
		contributed = new(big.Int)
	}

	p := Progress{
		IsExpired: s.Now >= s.EndTime,
	}

	if s.Goal != nil && s.Goal.Sign() > 0 {
		p.IsGoalMet = contributed.Cmp(s.Goal) >= 0
		p.ProgressBp = progressBp(contributed, s.Goal)
	}
	p.ProgressPercent = float64(p.ProgressBp) / 100

	switch {
	case s.IsFinalized && s.IsSuccessful:
		p.Status = StatusSuccessful
	case s.IsFinalized:
		p.Status = StatusFailed
	case p.IsGoalMet:
		p.Status = StatusGoalReached
	case p.IsExpired:
		p.Status = StatusExpired
	default:
		p.Status = StatusActive
	}

	p.CanFinalize = !s.IsFinalized && (p.IsGoalMet || p.IsExpired)
	return p
}

// progressBp min(10000, contributed * 10000 / goal)
func progressBp(contributed, goal *big.Int) int64 {
	if contributed.Sign() <= 0 {
		return 0
	}
	bp := mulDiv(contributed, bigBasisPoints, goal)
	if bp.Cmp(bigBasisPoints) >= 0 {
		return BasisPointDenominator
	}
	return bp.Int64()
}
