package main

import (
	"log"

	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/database"
	"github.com/blues/efs/internal/fee"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/payment"
	"github.com/blues/efs/internal/router"
	"github.com/blues/efs/internal/settlement"
	"github.com/blues/efs/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	logger.Setup(cfg.Log)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化费用计算器与结算批处理
	fees := fee.NewCalculator(cfg.Fee)
	runner := settlement.NewRunner(db, fees,
		payment.NewLogProcessor(), payment.NewLogPayoutService(), cfg.Task)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, fees, runner)

	// 启动定时任务
	manager := task.Start(runner, cfg)
	defer manager.Stop()

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
