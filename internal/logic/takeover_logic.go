package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/config"
	"github.com/blues/takeover/internal/logger"
	"github.com/blues/takeover/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TakeoverLogic 众筹业务逻辑
type TakeoverLogic struct {
	db       *gorm.DB
	defaults config.TakeoverConfig
	now      func() time.Time
}

// NewTakeoverLogic 创建众筹业务逻辑
func NewTakeoverLogic(db *gorm.DB, defaults config.TakeoverConfig) *TakeoverLogic {
	return &TakeoverLogic{db: db, defaults: defaults, now: time.Now}
}

// SetClock 替换时间源
func (l *TakeoverLogic) SetClock(now func() time.Time) {
	l.now = now
}

// CreateTakeoverInput 创建众筹参数，费率为 nil 时使用配置中的默认值
type CreateTakeoverInput struct {
	Address     string
	Authority   string
	V1TokenMint string
	V2TokenMint string
	RewardVault string

	TokenName   string
	TokenSymbol string
	Description string
	ImageURL    string

	TotalSupply           *big.Int
	TokenDecimals         int
	TargetParticipationBp *int
	RewardRateBp          *int

	V1MarketPriceSol *decimal.Decimal
	V2PriceSol       *decimal.Decimal

	StartTime int64
	EndTime   int64
}

// TakeoverFilter 列表查询条件
type TakeoverFilter struct {
	Authority string
	Finalized *bool
	Page      int
	PageSize  int
}

// TakeoverStats 全局统计
type TakeoverStats struct {
	TotalTakeovers      int64        `json:"total_takeovers"`
	ActiveTakeovers     int64        `json:"active_takeovers"`
	FinalizedTakeovers  int64        `json:"finalized_takeovers"`
	SuccessfulTakeovers int64        `json:"successful_takeovers"`
	TotalContributions  int64        `json:"total_contributions"`
	UniqueContributors  int64        `json:"unique_contributors"`
	TotalContributed    model.Amount `json:"total_contributed"`
}

// OnChainState 链上账户的最新快照
type OnChainState struct {
	Address          string
	TotalSupply      *big.Int // nil 表示未获取
	TotalContributed *big.Int
	ContributorCount int64
	IsFinalized      bool
	IsSuccessful     bool
}

// CreateTakeover 校验参数、计算目标并落库
func (l *TakeoverLogic) CreateTakeover(ctx context.Context, in CreateTakeoverInput) (*model.TakeoverModel, error) {
	participation := l.defaults.DefaultParticipationBp
	if in.TargetParticipationBp != nil {
		participation = *in.TargetParticipationBp
	}
	rewardRate := l.defaults.DefaultRewardRateBp
	if in.RewardRateBp != nil {
		rewardRate = *in.RewardRateBp
	}

	if err := validateAddresses(in); err != nil {
		return nil, err
	}
	if in.EndTime <= in.StartTime {
		return nil, calc.NewRangeError("end_time", "End time must be after start time")
	}

	metrics, err := calc.ComputeGoal(calc.GoalInput{
		TotalSupply:           in.TotalSupply,
		Decimals:              in.TokenDecimals,
		TargetParticipationBp: participation,
		RewardRateBp:          rewardRate,
	})
	if err != nil {
		return nil, err
	}
	if err := calc.ValidateSupply(in.TotalSupply, in.TokenDecimals); err != nil {
		return nil, err
	}
	if err := calc.ValidateGoalReachable(metrics); err != nil {
		return nil, err
	}

	takeover := &model.TakeoverModel{
		Address:                  in.Address,
		Authority:                in.Authority,
		V1TokenMint:              in.V1TokenMint,
		V2TokenMint:              in.V2TokenMint,
		RewardVault:              in.RewardVault,
		TokenName:                in.TokenName,
		TokenSymbol:              in.TokenSymbol,
		Description:              in.Description,
		ImageURL:                 in.ImageURL,
		TokenDecimals:            in.TokenDecimals,
		TotalSupply:              model.NewAmount(in.TotalSupply),
		TargetParticipationBp:    participation,
		RewardRateBp:             rewardRate,
		GoalAmount:               model.NewAmount(metrics.GoalAmount),
		CalculatedMinAmount:      model.AmountPtr(metrics.GoalAmount),
		RewardPoolTokens:         model.NewAmount(metrics.RewardPoolTokens),
		LiquidityPoolTokens:      model.NewAmount(metrics.LiquidityPoolTokens),
		MaxSafeTotalContribution: model.NewAmount(metrics.MaxSafeTotalContribution),
		TotalContributed:         model.AmountFromInt64(0),
		StartTime:                in.StartTime,
		EndTime:                  in.EndTime,
	}

	for _, p := range []struct {
		field string
		price *decimal.Decimal
		dst   *decimal.NullDecimal
	}{
		{"v1_market_price_sol", in.V1MarketPriceSol, &takeover.V1MarketPriceSol},
		{"v2_price_sol", in.V2PriceSol, &takeover.V2PriceSol},
	} {
		if p.price == nil {
			continue
		}
		if err := calc.ValidatePrice(p.field, *p.price); err != nil {
			return nil, err
		}
		*p.dst = decimal.NewNullDecimal(*p.price)
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.TakeoverModel{}).Where("address = ?", in.Address).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrTakeoverExists
		}
		return tx.Create(takeover).Error
	})
	if err != nil {
		if errors.Is(err, ErrTakeoverExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create takeover: %w", err)
	}

	logger.Info("Takeover %s created: goal=%s reward_pool=%s max_safe=%s",
		takeover.Address, takeover.GoalAmount, takeover.RewardPoolTokens, takeover.MaxSafeTotalContribution)
	return takeover, nil
}

func validateAddresses(in CreateTakeoverInput) error {
	required := []struct{ field, value string }{
		{"address", in.Address},
		{"authority", in.Authority},
		{"v1_token_mint", in.V1TokenMint},
	}
	for _, a := range required {
		if _, err := calc.ParseAddress(a.field, a.value); err != nil {
			return err
		}
	}
	optional := []struct{ field, value string }{
		{"v2_token_mint", in.V2TokenMint},
		{"reward_vault", in.RewardVault},
	}
	for _, a := range optional {
		if a.value == "" {
			continue
		}
		if _, err := calc.ParseAddress(a.field, a.value); err != nil {
			return err
		}
	}
	return nil
}

// GetTakeover 按地址查询
func (l *TakeoverLogic) GetTakeover(ctx context.Context, address string) (*model.TakeoverModel, error) {
	return findTakeover(l.db.WithContext(ctx), "address = ?", address)
}

func findTakeover(db *gorm.DB, query string, args ...interface{}) (*model.TakeoverModel, error) {
	var takeover model.TakeoverModel
	if err := db.Where(query, args...).First(&takeover).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTakeoverNotFound
		}
		return nil, fmt.Errorf("get takeover: %w", err)
	}
	return &takeover, nil
}

// ListTakeovers 分页查询，按创建时间倒序
func (l *TakeoverLogic) ListTakeovers(ctx context.Context, filter TakeoverFilter) ([]model.TakeoverModel, int64, error) {
	query := l.db.WithContext(ctx).Model(&model.TakeoverModel{})
	if filter.Authority != "" {
		query = query.Where("authority = ?", filter.Authority)
	}
	if filter.Finalized != nil {
		query = query.Where("is_finalized = ?", *filter.Finalized)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count takeovers: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var takeovers []model.TakeoverModel
	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&takeovers).Error; err != nil {
		return nil, 0, fmt.Errorf("list takeovers: %w", err)
	}
	return takeovers, total, nil
}

// Progress 计算读取时的状态，不落库
func (l *TakeoverLogic) Progress(t *model.TakeoverModel, now time.Time) calc.Progress {
	return calc.Evaluate(calc.State{
		TotalContributed: t.TotalContributed.Big(),
		Goal:             EffectiveGoal(t),
		EndTime:          t.EndTime,
		Now:              now.Unix(),
		IsFinalized:      t.IsFinalized,
		IsSuccessful:     t.IsSuccessful,
	})
}

// Now 当前时间
func (l *TakeoverLogic) Now() time.Time {
	return l.now()
}

// EffectiveGoal 计算得到的最小目标优先，其次是旧版字段，最后是派生目标
func EffectiveGoal(t *model.TakeoverModel) *big.Int {
	return calc.EffectiveGoal(calc.GoalSources{
		CalculatedMin: t.CalculatedMinAmount.BigOrNil(),
		LegacyMin:     t.MinAmount.BigOrNil(),
		Derived:       t.GoalAmount.Big(),
	})
}

// FinalizeTakeover 结算众筹。authority 为空表示系统任务触发
func (l *TakeoverLogic) FinalizeTakeover(ctx context.Context, address, authority string) (*model.TakeoverModel, error) {
	db := l.db.WithContext(ctx)
	takeover, err := findTakeover(db, "address = ?", address)
	if err != nil {
		return nil, err
	}
	if authority != "" && authority != takeover.Authority {
		return nil, ErrUnauthorized
	}
	if takeover.IsFinalized {
		return nil, calc.ErrAlreadyFinalized
	}

	now := l.now()
	progress := l.Progress(takeover, now)
	if !progress.CanFinalize {
		return nil, calc.ErrCannotFinalize
	}

	if err := markFinalized(db, takeover.Id, progress.IsGoalMet, now); err != nil {
		return nil, err
	}

	logger.Info("Takeover %s finalized: successful=%t total_contributed=%s",
		takeover.Address, progress.IsGoalMet, takeover.TotalContributed)
	return findTakeover(db, "id = ?", takeover.Id)
}

// markFinalized 仅在尚未结算时生效，保证只结算一次
func markFinalized(db *gorm.DB, id int64, successful bool, now time.Time) error {
	result := db.Model(&model.TakeoverModel{}).
		Where("id = ? AND is_finalized = ?", id, false).
		Updates(map[string]interface{}{
			"is_finalized":  true,
			"is_successful": successful,
			"finalized_at":  now,
		})
	if result.Error != nil {
		return fmt.Errorf("finalize takeover: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return calc.ErrAlreadyFinalized
	}
	return nil
}

// FinalizeDue 结算所有可结算的众筹，返回成功结算的数量
func (l *TakeoverLogic) FinalizeDue(ctx context.Context) (int, error) {
	now := l.now()
	var takeovers []model.TakeoverModel
	if err := l.db.WithContext(ctx).
		Where("is_finalized = ?", false).
		Find(&takeovers).Error; err != nil {
		return 0, fmt.Errorf("find unfinalized takeovers: %w", err)
	}

	finalized := 0
	for i := range takeovers {
		t := &takeovers[i]
		progress := l.Progress(t, now)
		// 目标达成后仍允许继续贡献到截止时间，只在截止后由任务结算
		if !progress.CanFinalize || !progress.IsExpired {
			continue
		}
		if err := markFinalized(l.db.WithContext(ctx), t.Id, progress.IsGoalMet, now); err != nil {
			if errors.Is(err, calc.ErrAlreadyFinalized) {
				continue
			}
			logger.Error("Failed to finalize takeover %s: %v", t.Address, err)
			continue
		}
		logger.Info("Takeover %s finalized by task: successful=%t", t.Address, progress.IsGoalMet)
		finalized++
	}
	return finalized, nil
}

// ListUnfinalized 同步任务使用
func (l *TakeoverLogic) ListUnfinalized(ctx context.Context) ([]model.TakeoverModel, error) {
	var takeovers []model.TakeoverModel
	if err := l.db.WithContext(ctx).Where("is_finalized = ?", false).Find(&takeovers).Error; err != nil {
		return nil, fmt.Errorf("list unfinalized takeovers: %w", err)
	}
	return takeovers, nil
}

// ReconcileTakeover 用链上状态更新本地记录。
// 累计金额和人数只增不减，结算后冻结；结算状态只写一次；供应量变化时重新计算目标。
func (l *TakeoverLogic) ReconcileTakeover(ctx context.Context, state OnChainState) (*model.TakeoverModel, error) {
	now := l.now()
	var updated *model.TakeoverModel

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		takeover, err := findTakeover(tx, "address = ?", state.Address)
		if err != nil {
			return err
		}

		// 结算后累计金额、人数和供应量冻结，领取按结算时的快照计算
		if !takeover.IsFinalized {
			updates := map[string]interface{}{}
			if state.TotalContributed != nil && state.TotalContributed.Cmp(takeover.TotalContributed.Big()) > 0 {
				updates["total_contributed"] = model.NewAmount(state.TotalContributed)
			}
			if state.ContributorCount > takeover.ContributorCount {
				updates["contributor_count"] = state.ContributorCount
			}
			if state.TotalSupply != nil && state.TotalSupply.Sign() > 0 &&
				state.TotalSupply.Cmp(takeover.TotalSupply.Big()) != 0 {
				for k, v := range supplyUpdates(takeover, state.TotalSupply) {
					updates[k] = v
				}
			}

			if len(updates) > 0 {
				if err := tx.Model(&model.TakeoverModel{}).
					Where("id = ? AND is_finalized = ?", takeover.Id, false).
					Updates(updates).Error; err != nil {
					return fmt.Errorf("reconcile takeover: %w", err)
				}
			}
		}

		if err := tx.Model(&model.TakeoverModel{}).Where("id = ?", takeover.Id).
			Update("last_synced_at", now).Error; err != nil {
			return fmt.Errorf("reconcile takeover: %w", err)
		}

		if state.IsFinalized && !takeover.IsFinalized {
			if err := markFinalized(tx, takeover.Id, state.IsSuccessful, now); err != nil && !errors.Is(err, calc.ErrAlreadyFinalized) {
				return err
			}
		}

		updated, err = findTakeover(tx, "id = ?", takeover.Id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// supplyUpdates 供应量变化后重新计算目标和资金池，新值不合法时保持原值
func supplyUpdates(takeover *model.TakeoverModel, supply *big.Int) map[string]interface{} {
	if err := calc.ValidateSupply(supply, takeover.TokenDecimals); err != nil {
		logger.Warn("Takeover %s: skip supply %s out of range: %v", takeover.Address, supply, err)
		return nil
	}
	metrics, err := calc.ComputeGoal(calc.GoalInput{
		TotalSupply:           supply,
		Decimals:              takeover.TokenDecimals,
		TargetParticipationBp: takeover.TargetParticipationBp,
		RewardRateBp:          takeover.RewardRateBp,
	})
	if err == nil {
		err = calc.ValidateGoalReachable(metrics)
	}
	if err != nil {
		logger.Warn("Takeover %s: skip metric recomputation for supply %s: %v", takeover.Address, supply, err)
		return nil
	}

	logger.Info("Takeover %s: supply changed %s -> %s, goal %s -> %s",
		takeover.Address, takeover.TotalSupply, supply, takeover.GoalAmount, metrics.GoalAmount)
	return map[string]interface{}{
		"total_supply":                model.NewAmount(supply),
		"goal_amount":                 model.NewAmount(metrics.GoalAmount),
		"calculated_min_amount":       model.NewAmount(metrics.GoalAmount),
		"reward_pool_tokens":          model.NewAmount(metrics.RewardPoolTokens),
		"liquidity_pool_tokens":       model.NewAmount(metrics.LiquidityPoolTokens),
		"max_safe_total_contribution": model.NewAmount(metrics.MaxSafeTotalContribution),
	}
}

// GetStats 全局统计
func (l *TakeoverLogic) GetStats(ctx context.Context) (*TakeoverStats, error) {
	db := l.db.WithContext(ctx)
	stats := &TakeoverStats{}
	now := l.now().Unix()

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalTakeovers, db.Model(&model.TakeoverModel{})},
		{&stats.ActiveTakeovers, db.Model(&model.TakeoverModel{}).
			Where("is_finalized = ? AND start_time <= ? AND end_time > ?", false, now, now)},
		{&stats.FinalizedTakeovers, db.Model(&model.TakeoverModel{}).Where("is_finalized = ?", true)},
		{&stats.SuccessfulTakeovers, db.Model(&model.TakeoverModel{}).
			Where("is_finalized = ? AND is_successful = ?", true, true)},
		{&stats.TotalContributions, db.Model(&model.ContributionModel{})},
		{&stats.UniqueContributors, db.Model(&model.ContributionModel{}).Distinct("contributor")},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count stats: %w", err)
		}
	}

	// 在内存中累加，避免 SUM 在 sqlite 上溢出 int64
	var totals []model.Amount
	if err := db.Model(&model.TakeoverModel{}).Pluck("total_contributed", &totals).Error; err != nil {
		return nil, fmt.Errorf("sum contributions: %w", err)
	}
	sum := new(big.Int)
	for _, t := range totals {
		sum.Add(sum, t.Big())
	}
	stats.TotalContributed = model.NewAmount(sum)
	return stats, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
