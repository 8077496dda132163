package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/logic"
	"github.com/gin-gonic/gin"
)

type ContributionHandler struct {
	contributionLogic *logic.ContributionLogic
}

func NewContributionHandler(contributionLogic *logic.ContributionLogic) *ContributionHandler {
	return &ContributionHandler{contributionLogic: contributionLogic}
}

// Contribute 向众筹贡献 V1 代币
func (h *ContributionHandler) Contribute(c *gin.Context) {
	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	amount, err := calc.ParseAmount("amount", req.Amount)
	if err != nil {
		HandleError(c, err)
		return
	}

	contribution, err := h.contributionLogic.Contribute(c.Request.Context(), logic.ContributeInput{
		TakeoverAddress: c.Param("address"),
		Contributor:     req.Contributor,
		Amount:          amount,
		TxSignature:     req.TransactionSignature,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "contribution recorded", contribution)
}

// ListContributions 众筹的贡献记录，可按贡献者过滤
func (h *ContributionHandler) ListContributions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	contributions, total, err := h.contributionLogic.ListContributions(c.Request.Context(), logic.ContributionFilter{
		TakeoverAddress: c.Param("address"),
		Contributor:     c.Query("contributor"),
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", ContributionListResponse{
		Contributions: contributions,
		Pagination:    newPagination(page, pageSize, total),
	})
}

// GetContributorSummary 贡献者汇总
func (h *ContributionHandler) GetContributorSummary(c *gin.Context) {
	summary, err := h.contributionLogic.GetContributorSummary(c.Request.Context(), c.Param("address"), c.Param("contributor"))
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", summary)
}

// GetContribution 单条贡献记录
func (h *ContributionHandler) GetContribution(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	contribution, err := h.contributionLogic.GetContribution(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", contribution)
}

// Claim 领取奖励或退款
func (h *ContributionHandler) Claim(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Contributor == "" {
		ErrorResponse(c, http.StatusBadRequest, "contributor is required")
		return
	}

	contribution, err := h.contributionLogic.Claim(c.Request.Context(), id, req.Contributor)
	if err != nil {
		HandleError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "claimed", contribution)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "invalid contribution id")
		return 0, false
	}
	return id, true
}
