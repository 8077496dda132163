package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/logger"
	"github.com/blues/takeover/internal/model"
	"gorm.io/gorm"
)

// ContributionLogic 贡献与领取业务逻辑
type ContributionLogic struct {
	db  *gorm.DB
	now func() time.Time
}

// NewContributionLogic 创建贡献业务逻辑
func NewContributionLogic(db *gorm.DB) *ContributionLogic {
	return &ContributionLogic{db: db, now: time.Now}
}

// SetClock 替换时间源
func (l *ContributionLogic) SetClock(now func() time.Time) {
	l.now = now
}

// ContributeInput 贡献参数
type ContributeInput struct {
	TakeoverAddress string
	Contributor     string
	Amount          *big.Int
	TxSignature     string
}

// ContributionFilter 列表查询条件
type ContributionFilter struct {
	TakeoverAddress string
	Contributor     string
	Page            int
	PageSize        int
}

// ContributorSummary 某个贡献者在一个众筹中的汇总
type ContributorSummary struct {
	TakeoverAddress   string         `json:"takeover_address"`
	Contributor       string         `json:"contributor"`
	TotalContributed  model.Amount   `json:"total_contributed"`
	ContributionCount int64          `json:"contribution_count"`
	ClaimedCount      int64          `json:"claimed_count"`
	ClaimedAmount     model.Amount   `json:"claimed_amount"`
	Claimable         model.Amount   `json:"claimable"`
	ClaimType         calc.ClaimType `json:"claim_type,omitempty"`
	ExpectedReward    model.Amount   `json:"expected_reward"`
}

// Contribute 记录一笔贡献并原子地累加众筹总额
func (l *ContributionLogic) Contribute(ctx context.Context, in ContributeInput) (*model.ContributionModel, error) {
	if _, err := calc.ParseAddress("contributor", in.Contributor); err != nil {
		return nil, err
	}
	if in.Amount == nil || in.Amount.Sign() <= 0 {
		return nil, calc.NewRangeError("amount", "Contribution amount must be greater than 0")
	}
	if _, err := calc.ParseAmount("amount", in.Amount); err != nil {
		return nil, err
	}

	now := l.now()
	var contribution *model.ContributionModel

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		takeover, err := findTakeover(tx, "address = ?", in.TakeoverAddress)
		if err != nil {
			return err
		}
		if takeover.IsFinalized || now.Unix() >= takeover.EndTime {
			return calc.ErrTakeoverClosed
		}
		if now.Unix() < takeover.StartTime {
			return calc.ErrTakeoverNotStarted
		}

		newTotal := new(big.Int).Add(takeover.TotalContributed.Big(), in.Amount)
		if newTotal.Cmp(takeover.MaxSafeTotalContribution.Big()) > 0 {
			return calc.ErrExceedsSafeCeiling
		}

		var signature *string
		if in.TxSignature != "" {
			var dup int64
			if err := tx.Model(&model.ContributionModel{}).
				Where("tx_signature = ?", in.TxSignature).
				Count(&dup).Error; err != nil {
				return err
			}
			if dup > 0 {
				return ErrDuplicateSignature
			}
			signature = &in.TxSignature
		}

		var previous int64
		if err := tx.Model(&model.ContributionModel{}).
			Where("takeover_id = ? AND contributor = ?", takeover.Id, in.Contributor).
			Count(&previous).Error; err != nil {
			return err
		}
		newContributor := int64(0)
		if previous == 0 {
			newContributor = 1
		}

		amount := model.NewAmount(in.Amount)
		result := tx.Model(&model.TakeoverModel{}).
			Where("id = ? AND is_finalized = ? AND total_contributed + ? <= max_safe_total_contribution",
				takeover.Id, false, amount).
			Updates(map[string]interface{}{
				"total_contributed": gorm.Expr("total_contributed + ?", amount),
				"contributor_count": gorm.Expr("contributor_count + ?", newContributor),
			})
		if result.Error != nil {
			return fmt.Errorf("increment total contributed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return calc.ErrExceedsSafeCeiling
		}

		contribution = &model.ContributionModel{
			TakeoverId:      takeover.Id,
			TakeoverAddress: takeover.Address,
			Contributor:     in.Contributor,
			Amount:          amount,
			TxSignature:     signature,
		}
		return tx.Create(contribution).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Contribution %d recorded: takeover=%s contributor=%s amount=%s",
		contribution.Id, contribution.TakeoverAddress, contribution.Contributor, contribution.Amount)
	return contribution, nil
}

// Claim 领取奖励或退款，每笔贡献只能领取一次。contributor 为空时不校验归属
func (l *ContributionLogic) Claim(ctx context.Context, id int64, contributor string) (*model.ContributionModel, error) {
	db := l.db.WithContext(ctx)

	contribution, err := findContribution(db, id)
	if err != nil {
		return nil, err
	}
	if contributor != "" && contributor != contribution.Contributor {
		return nil, ErrUnauthorized
	}
	takeover, err := findTakeover(db, "id = ?", contribution.TakeoverId)
	if err != nil {
		return nil, err
	}

	claim, err := calc.ComputeClaim(contribution.Amount.Big(), snapshotOf(takeover, contribution.Claimed))
	if err != nil {
		return nil, err
	}

	result := db.Model(&model.ContributionModel{}).
		Where("id = ? AND claimed = ?", id, false).
		Updates(map[string]interface{}{
			"claimed":      true,
			"claim_amount": model.NewAmount(claim.Amount),
			"claim_type":   string(claim.Type),
			"claimed_at":   l.now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("claim contribution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, calc.ErrAlreadyClaimed
	}

	logger.Info("Contribution %d claimed: type=%s amount=%s", id, claim.Type, claim.Amount)
	return findContribution(db, id)
}

func snapshotOf(t *model.TakeoverModel, claimed bool) calc.ClaimSnapshot {
	return calc.ClaimSnapshot{
		IsFinalized:      t.IsFinalized,
		IsSuccessful:     t.IsSuccessful,
		RewardRateBp:     t.RewardRateBp,
		RewardPoolTokens: t.RewardPoolTokens.Big(),
		TotalContributed: t.TotalContributed.Big(),
		AlreadyClaimed:   claimed,
	}
}

func findContribution(db *gorm.DB, id int64) (*model.ContributionModel, error) {
	var contribution model.ContributionModel
	if err := db.First(&contribution, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContributionNotFound
		}
		return nil, fmt.Errorf("get contribution: %w", err)
	}
	return &contribution, nil
}

// GetContribution 按 ID 查询
func (l *ContributionLogic) GetContribution(ctx context.Context, id int64) (*model.ContributionModel, error) {
	return findContribution(l.db.WithContext(ctx), id)
}

// ListContributions 分页查询，按时间倒序
func (l *ContributionLogic) ListContributions(ctx context.Context, filter ContributionFilter) ([]model.ContributionModel, int64, error) {
	query := l.db.WithContext(ctx).Model(&model.ContributionModel{})
	if filter.TakeoverAddress != "" {
		query = query.Where("takeover_address = ?", filter.TakeoverAddress)
	}
	if filter.Contributor != "" {
		query = query.Where("contributor = ?", filter.Contributor)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count contributions: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var contributions []model.ContributionModel
	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&contributions).Error; err != nil {
		return nil, 0, fmt.Errorf("list contributions: %w", err)
	}
	return contributions, total, nil
}

// GetContributorSummary 汇总贡献者在某个众筹中的金额和可领取额
func (l *ContributionLogic) GetContributorSummary(ctx context.Context, address, contributor string) (*ContributorSummary, error) {
	db := l.db.WithContext(ctx)
	takeover, err := findTakeover(db, "address = ?", address)
	if err != nil {
		return nil, err
	}

	var contributions []model.ContributionModel
	if err := db.Where("takeover_id = ? AND contributor = ?", takeover.Id, contributor).
		Order("id ASC").
		Find(&contributions).Error; err != nil {
		return nil, fmt.Errorf("list contributor records: %w", err)
	}

	total, claimed, claimable := new(big.Int), new(big.Int), new(big.Int)
	summary := &ContributorSummary{
		TakeoverAddress:   address,
		Contributor:       contributor,
		ContributionCount: int64(len(contributions)),
	}
	for i := range contributions {
		c := &contributions[i]
		total.Add(total, c.Amount.Big())
		if c.Claimed {
			summary.ClaimedCount++
			if amt := c.ClaimAmount.BigOrNil(); amt != nil {
				claimed.Add(claimed, amt)
			}
			if c.ClaimType != "" {
				summary.ClaimType = calc.ClaimType(c.ClaimType)
			}
			continue
		}
		if !takeover.IsFinalized {
			continue
		}
		claim, err := calc.ComputeClaim(c.Amount.Big(), snapshotOf(takeover, false))
		if err != nil {
			return nil, err
		}
		claimable.Add(claimable, claim.Amount)
		summary.ClaimType = claim.Type
	}

	summary.TotalContributed = model.NewAmount(total)
	summary.ClaimedAmount = model.NewAmount(claimed)
	summary.Claimable = model.NewAmount(claimable)
	summary.ExpectedReward = model.NewAmount(calc.ExpectedReward(total, takeover.RewardRateBp))
	return summary, nil
}
