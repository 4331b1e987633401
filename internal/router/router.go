package router

import (
	"github.com/blues/efs/internal/fee"
	"github.com/blues/efs/internal/handler"
	"github.com/blues/efs/internal/settlement"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, fees *fee.Calculator, runner *settlement.Runner) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "event-funding-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动与下单路由
		campaignHandler := handler.NewCampaignHandler(db, fees)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)
			campaigns.POST("/:id/pledges", campaignHandler.CreatePledge)
			campaigns.GET("/:id/pledges", campaignHandler.GetPledges)
		}

		// 费用计算路由
		feeHandler := handler.NewFeeHandler(fees)
		feeRoutes := v1.Group("/fees")
		{
			feeRoutes.POST("/preview", feeHandler.PreviewFees)
			feeRoutes.GET("/compare", feeHandler.CompareTiers)
		}

		// 结算触发路由
		settlementHandler := handler.NewSettlementHandler(runner)
		v1.POST("/settlements/run", settlementHandler.RunSettlement)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
