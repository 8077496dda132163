package handler

import (
	"errors"
	"net/http"

	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/logger"
	"github.com/blues/takeover/internal/logic"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// HandleError 将业务错误映射为 HTTP 状态码
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, calc.ErrInputRange), errors.Is(err, calc.ErrMalformedNumeric):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, logic.ErrTakeoverNotFound), errors.Is(err, logic.ErrContributionNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, logic.ErrUnauthorized):
		ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, calc.ErrStateConflict):
		ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		ErrorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindError 请求体无法解析
func bindError(c *gin.Context, err error) {
	ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}
