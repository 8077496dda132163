package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blues/takeover/internal/chain"
	"github.com/blues/takeover/internal/config"
	"github.com/blues/takeover/internal/logger"
	"github.com/blues/takeover/internal/logic"
	"github.com/blues/takeover/internal/middleware"
	"github.com/blues/takeover/internal/repository"
	"github.com/blues/takeover/internal/router"
	"github.com/blues/takeover/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	takeovers := logic.NewTakeoverLogic(db, cfg.Takeover)
	contributions := logic.NewContributionLogic(db)

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Fatal("Failed to initialize rate limiter: %v", err)
	}

	interval := time.Duration(cfg.Task.Interval) * time.Second
	jobs := []task.Job{
		task.NewTakeoverFinalizeJob(takeovers, interval),
		task.NewRateLimitCleanupJob(limiter, interval),
	}

	opts := router.Options{
		Config:        cfg,
		Takeovers:     takeovers,
		Contributions: contributions,
		Limiter:       limiter,
	}

	// 初始化链上客户端
	if cfg.Chain.Enabled {
		client, err := chain.Dial(context.Background(), cfg.Chain)
		if err != nil {
			logger.Fatal("Failed to initialize chain client: %v", err)
		}
		defer client.Close()

		opts.Chain = client
		jobs = append(jobs, task.NewTakeoverSyncJob(takeovers, client, cfg.Chain.SyncWorkers, interval))
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 启动定时任务
	tasks, err := task.NewManager(jobs...)
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	if err := tasks.Start(); err != nil {
		logger.Fatal("Failed to start task manager: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Setup(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	tasks.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
