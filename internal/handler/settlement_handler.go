package handler

import (
	"net/http"
	"time"

	"github.com/blues/efs/internal/settlement"
	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	runner *settlement.Runner
}

func NewSettlementHandler(runner *settlement.Runner) *SettlementHandler {
	return &SettlementHandler{runner: runner}
}

// RunSettlement 运维手动触发一轮结算。单个活动的失败只体现在汇总里，
// 仅候选查询等顶层故障返回非 2xx。
func (h *SettlementHandler) RunSettlement(c *gin.Context) {
	summary, err := h.runner.Run(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
