package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/config"
	"github.com/blues/takeover/internal/logic"
	"github.com/blues/takeover/internal/model"
	"github.com/gin-gonic/gin"
)

type TakeoverHandler struct {
	takeoverLogic *logic.TakeoverLogic
	defaults      config.TakeoverConfig
}

func NewTakeoverHandler(takeoverLogic *logic.TakeoverLogic, defaults config.TakeoverConfig) *TakeoverHandler {
	return &TakeoverHandler{takeoverLogic: takeoverLogic, defaults: defaults}
}

// CalculateGoal 仅计算目标和资金池，不落库
func (h *TakeoverHandler) CalculateGoal(c *gin.Context) {
	var req CalculateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	supply, err := calc.ParseAmount("total_supply", req.TotalSupply)
	if err != nil {
		HandleError(c, err)
		return
	}
	if req.TokenDecimals == nil {
		HandleError(c, calc.NewRangeError("token_decimals", "token_decimals is required"))
		return
	}

	in := calc.GoalInput{
		TotalSupply:           supply,
		Decimals:              *req.TokenDecimals,
		TargetParticipationBp: h.defaults.DefaultParticipationBp,
		RewardRateBp:          h.defaults.DefaultRewardRateBp,
	}
	if req.TargetParticipationBp != nil {
		in.TargetParticipationBp = *req.TargetParticipationBp
	}
	if req.RewardRateBp != nil {
		in.RewardRateBp = *req.RewardRateBp
	}

	metrics, err := calc.ComputeGoal(in)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", GoalResponse{
		ActualSupply:             metrics.ActualSupply.String(),
		TargetParticipationBp:    in.TargetParticipationBp,
		RewardRateBp:             in.RewardRateBp,
		GoalAmount:               model.NewAmount(metrics.GoalAmount),
		RewardPoolTokens:         model.NewAmount(metrics.RewardPoolTokens),
		LiquidityPoolTokens:      model.NewAmount(metrics.LiquidityPoolTokens),
		MaxSafeTotalContribution: model.NewAmount(metrics.MaxSafeTotalContribution),
		Display: GoalDisplay{
			ActualSupply:             calc.FormatCompactTokens(metrics.ActualSupply),
			GoalAmount:               calc.FormatCompact(metrics.GoalAmount, in.Decimals),
			RewardPoolTokens:         calc.FormatCompact(metrics.RewardPoolTokens, in.Decimals),
			MaxSafeTotalContribution: calc.FormatCompact(metrics.MaxSafeTotalContribution, in.Decimals),
		},
	})
}

// CreateTakeover 创建众筹
func (h *TakeoverHandler) CreateTakeover(c *gin.Context) {
	var req CreateTakeoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	in, err := h.toCreateInput(&req)
	if err != nil {
		HandleError(c, err)
		return
	}

	takeover, err := h.takeoverLogic.CreateTakeover(c.Request.Context(), in)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "takeover created", h.view(takeover))
}

func (h *TakeoverHandler) toCreateInput(req *CreateTakeoverRequest) (logic.CreateTakeoverInput, error) {
	in := logic.CreateTakeoverInput{
		Address:               req.Address,
		Authority:             req.Authority,
		V1TokenMint:           req.V1TokenMint,
		V2TokenMint:           req.V2TokenMint,
		RewardVault:           req.RewardVault,
		TokenName:             req.TokenName,
		TokenSymbol:           req.TokenSymbol,
		Description:           req.Description,
		ImageURL:              req.ImageURL,
		TargetParticipationBp: req.TargetParticipationBp,
		RewardRateBp:          req.RewardRateBp,
		V1MarketPriceSol:      req.V1MarketPriceSol,
		V2PriceSol:            req.V2PriceSol,
	}

	supply, err := calc.ParseAmount("total_supply", req.TotalSupply)
	if err != nil {
		return in, err
	}
	in.TotalSupply = supply

	if req.TokenDecimals == nil {
		return in, calc.NewRangeError("token_decimals", "token_decimals is required")
	}
	in.TokenDecimals = *req.TokenDecimals

	in.StartTime = h.takeoverLogic.Now().Unix()
	if req.StartTime != nil {
		if in.StartTime, err = calc.ParseTimestamp("start_time", req.StartTime); err != nil {
			return in, err
		}
	}
	if in.EndTime, err = calc.ParseTimestamp("end_time", req.EndTime); err != nil {
		return in, err
	}
	return in, nil
}

// ListTakeovers 众筹列表
func (h *TakeoverHandler) ListTakeovers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := logic.TakeoverFilter{
		Authority: c.Query("authority"),
		Page:      page,
		PageSize:  pageSize,
	}
	if raw := c.Query("finalized"); raw != "" {
		finalized, err := strconv.ParseBool(raw)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "finalized must be true or false")
			return
		}
		filter.Finalized = &finalized
	}

	takeovers, total, err := h.takeoverLogic.ListTakeovers(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	views := make([]TakeoverResponse, 0, len(takeovers))
	for i := range takeovers {
		views = append(views, h.view(&takeovers[i]))
	}
	SuccessResponse(c, http.StatusOK, "ok", TakeoverListResponse{
		Takeovers:  views,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetTakeover 众筹详情
func (h *TakeoverHandler) GetTakeover(c *gin.Context) {
	takeover, err := h.takeoverLogic.GetTakeover(c.Request.Context(), c.Param("address"))
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", h.view(takeover))
}

// FinalizeTakeover 由众筹发起人结算
func (h *TakeoverHandler) FinalizeTakeover(c *gin.Context) {
	var req FinalizeTakeoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Authority == "" {
		ErrorResponse(c, http.StatusBadRequest, "authority is required")
		return
	}

	takeover, err := h.takeoverLogic.FinalizeTakeover(c.Request.Context(), c.Param("address"), req.Authority)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "takeover finalized", h.view(takeover))
}

// GetStats 全局统计
func (h *TakeoverHandler) GetStats(c *gin.Context) {
	stats, err := h.takeoverLogic.GetStats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", stats)
}

func (h *TakeoverHandler) view(t *model.TakeoverModel) TakeoverResponse {
	return TakeoverResponse{
		TakeoverModel: t,
		EffectiveGoal: model.NewAmount(logic.EffectiveGoal(t)),
		Progress:      h.takeoverLogic.Progress(t, h.takeoverLogic.Now()),
	}
}
