package router

import (
	"context"
	"net/http"
	"time"

	"github.com/blues/takeover/internal/config"
	"github.com/blues/takeover/internal/handler"
	"github.com/blues/takeover/internal/logic"
	"github.com/blues/takeover/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// SlotReader 健康检查读取链上最新 slot
type SlotReader interface {
	GetSlot(ctx context.Context) (uint64, error)
}

type Options struct {
	Config        *config.Config
	Takeovers     *logic.TakeoverLogic
	Contributions *logic.ContributionLogic
	Limiter       *middleware.RateLimiter // 可为空
	Chain         SlotReader              // 可为空
}

func Setup(opts Options) *gin.Engine {
	// 大于 2^53 的金额以 json.Number 解码，避免精度丢失
	binding.EnableDecoderUseNumber = true

	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware())
	}

	// 健康检查
	r.GET("/health", healthHandler(opts.Chain))

	takeoverHandler := handler.NewTakeoverHandler(opts.Takeovers, opts.Config.Takeover)
	contributionHandler := handler.NewContributionHandler(opts.Contributions)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		v1.POST("/calculate/goal", takeoverHandler.CalculateGoal)
		v1.GET("/stats", takeoverHandler.GetStats)

		takeovers := v1.Group("/takeovers")
		{
			takeovers.POST("", takeoverHandler.CreateTakeover)
			takeovers.GET("", takeoverHandler.ListTakeovers)
			takeovers.GET("/:address", takeoverHandler.GetTakeover)
			takeovers.POST("/:address/finalize", takeoverHandler.FinalizeTakeover)
			takeovers.GET("/:address/contributions", contributionHandler.ListContributions)
			takeovers.POST("/:address/contributions", contributionHandler.Contribute)
			takeovers.GET("/:address/contributors/:contributor", contributionHandler.GetContributorSummary)
		}

		contributions := v1.Group("/contributions")
		{
			contributions.GET("/:id", contributionHandler.GetContribution)
			contributions.POST("/:id/claim", contributionHandler.Claim)
		}
	}

	return r
}

func healthHandler(chain SlotReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": "takeover-service",
		}
		if chain != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			slot, err := chain.GetSlot(ctx)
			if err != nil {
				body["status"] = "degraded"
				body["chain_error"] = err.Error()
			} else {
				body["slot"] = slot
			}
		}
		c.JSON(http.StatusOK, body)
	}
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
