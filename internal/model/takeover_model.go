package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TakeoverModel V1 → V2 代币迁移众筹
type TakeoverModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 链上身份
	Address     string `json:"address" gorm:"uniqueIndex;not null"`
	Authority   string `json:"authority" gorm:"index;not null"`
	V1TokenMint string `json:"v1_token_mint" gorm:"not null"`
	V2TokenMint string `json:"v2_token_mint"`
	RewardVault string `json:"reward_vault"`

	// 展示信息
	TokenName   string `json:"token_name"`
	TokenSymbol string `json:"token_symbol"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`

	// 供应量与费率
	TokenDecimals         int    `json:"token_decimals" gorm:"not null"`
	TotalSupply           Amount `json:"total_supply" gorm:"type:numeric(20,0);not null"`
	TargetParticipationBp int    `json:"target_participation_bp" gorm:"not null"`
	RewardRateBp          int    `json:"reward_rate_bp" gorm:"not null"`

	// 派生金额
	GoalAmount               Amount  `json:"goal_amount" gorm:"type:numeric(40,0);not null"`
	CalculatedMinAmount      *Amount `json:"calculated_min_amount,omitempty" gorm:"type:numeric(40,0)"`
	MinAmount                *Amount `json:"min_amount,omitempty" gorm:"type:numeric(40,0)"` // 旧版字段
	RewardPoolTokens         Amount  `json:"reward_pool_tokens" gorm:"type:numeric(20,0);not null"`
	LiquidityPoolTokens      Amount  `json:"liquidity_pool_tokens" gorm:"type:numeric(20,0);not null"`
	MaxSafeTotalContribution Amount  `json:"max_safe_total_contribution" gorm:"type:numeric(20,0);not null"`

	// 价格（SOL）
	V1MarketPriceSol decimal.NullDecimal `json:"v1_market_price_sol" gorm:"type:numeric(30,9)"`
	V2PriceSol       decimal.NullDecimal `json:"v2_price_sol" gorm:"type:numeric(30,9)"`

	// 进度
	TotalContributed Amount `json:"total_contributed" gorm:"type:numeric(20,0);not null;default:0"`
	ContributorCount int64  `json:"contributor_count" gorm:"not null;default:0"`

	// 时间（Unix 秒）
	StartTime int64 `json:"start_time" gorm:"not null"`
	EndTime   int64 `json:"end_time" gorm:"not null;index"`

	// 结算
	IsFinalized  bool       `json:"is_finalized" gorm:"not null;default:false;index"`
	IsSuccessful bool       `json:"is_successful" gorm:"not null;default:false"`
	FinalizedAt  *time.Time `json:"finalized_at"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
}

// TableName 自定义表名
func (TakeoverModel) TableName() string {
	return "takeover"
}
