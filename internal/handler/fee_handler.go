package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/fee"
	"github.com/gin-gonic/gin"
)

type FeeHandler struct {
	calculator *fee.Calculator
}

func NewFeeHandler(calculator *fee.Calculator) *FeeHandler {
	return &FeeHandler{calculator: calculator}
}

// PreviewFees 下单前费用预览。与结算使用同一计算器，预览金额即结算金额。
func (h *FeeHandler) PreviewFees(c *gin.Context) {
	var req struct {
		Amount              int64    `json:"amount"`
		Tier                fee.Tier `json:"tier"`
		IncludeProcessorFee bool     `json:"include_processor_fee"`
		PlatformFeePayment  bool     `json:"platform_fee_payment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Tier == "" {
		req.Tier = fee.TierStandard
	}

	breakdown, err := h.calculator.Compute(req.Amount, req.Tier, fee.Options{
		IncludeProcessorFee: req.IncludeProcessorFee,
		PlatformFeePayment:  req.PlatformFeePayment,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的金额"})
		case errors.Is(err, apperrors.ErrInvalidTier):
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的费率档位"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"fees": breakdown})
}

// CompareTiers 对比创作者计划与标准费率的节省金额
func (h *FeeHandler) CompareTiers(c *gin.Context) {
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的金额"})
		return
	}

	comparison, err := h.calculator.Compare(amount)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的金额"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comparison": comparison})
}
