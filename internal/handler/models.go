package handler

import (
	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/model"
	"github.com/shopspring/decimal"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}

// 金额字段接受十进制字符串或 JSON 数字，统一由 calc.ParseAmount 解析

// CalculateGoalRequest 目标计算请求
type CalculateGoalRequest struct {
	TotalSupply           interface{} `json:"total_supply"`
	TokenDecimals         *int        `json:"token_decimals"`
	TargetParticipationBp *int        `json:"target_participation_bp"`
	RewardRateBp          *int        `json:"reward_rate_bp"`
}

// GoalResponse 目标计算结果
type GoalResponse struct {
	ActualSupply             string       `json:"actual_supply"`
	TargetParticipationBp    int          `json:"target_participation_bp"`
	RewardRateBp             int          `json:"reward_rate_bp"`
	GoalAmount               model.Amount `json:"goal_amount"`
	RewardPoolTokens         model.Amount `json:"reward_pool_tokens"`
	LiquidityPoolTokens      model.Amount `json:"liquidity_pool_tokens"`
	MaxSafeTotalContribution model.Amount `json:"max_safe_total_contribution"`
	Display                  GoalDisplay  `json:"display"`
}

// GoalDisplay 紧凑展示文案，如 522.67M
type GoalDisplay struct {
	ActualSupply             string `json:"actual_supply"`
	GoalAmount               string `json:"goal_amount"`
	RewardPoolTokens         string `json:"reward_pool_tokens"`
	MaxSafeTotalContribution string `json:"max_safe_total_contribution"`
}

// CreateTakeoverRequest 创建众筹请求
type CreateTakeoverRequest struct {
	Address     string `json:"address"`
	Authority   string `json:"authority"`
	V1TokenMint string `json:"v1_token_mint"`
	V2TokenMint string `json:"v2_token_mint"`
	RewardVault string `json:"reward_vault"`

	TokenName   string `json:"token_name"`
	TokenSymbol string `json:"token_symbol"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`

	TotalSupply           interface{} `json:"total_supply"`
	TokenDecimals         *int        `json:"token_decimals"`
	TargetParticipationBp *int        `json:"target_participation_bp"`
	RewardRateBp          *int        `json:"reward_rate_bp"`

	V1MarketPriceSol *decimal.Decimal `json:"v1_market_price_sol"`
	V2PriceSol       *decimal.Decimal `json:"v2_price_sol"`

	StartTime interface{} `json:"start_time"` // 缺省为当前时间
	EndTime   interface{} `json:"end_time"`
}

// TakeoverResponse 众筹详情，附带读取时计算的进度
type TakeoverResponse struct {
	*model.TakeoverModel
	EffectiveGoal model.Amount  `json:"effective_goal"`
	Progress      calc.Progress `json:"progress"`
}

// TakeoverListResponse 众筹列表
type TakeoverListResponse struct {
	Takeovers  []TakeoverResponse `json:"takeovers"`
	Pagination Pagination         `json:"pagination"`
}

// FinalizeTakeoverRequest 结算请求
type FinalizeTakeoverRequest struct {
	Authority string `json:"authority"`
}

// ContributeRequest 贡献请求
type ContributeRequest struct {
	Contributor          string      `json:"contributor"`
	Amount               interface{} `json:"amount"`
	TransactionSignature string      `json:"transaction_signature"`
}

// ContributionListResponse 贡献列表
type ContributionListResponse struct {
	Contributions []model.ContributionModel `json:"contributions"`
	Pagination    Pagination                `json:"pagination"`
}

// ClaimRequest 领取请求
type ClaimRequest struct {
	Contributor string `json:"contributor"`
}
