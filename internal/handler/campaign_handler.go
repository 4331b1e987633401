package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/fee"
	"github.com/blues/efs/internal/logic"
	"github.com/blues/efs/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
	pledgeLogic   *logic.PledgeLogic
}

func NewCampaignHandler(db *gorm.DB, fees *fee.Calculator) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: logic.NewCampaignLogic(db),
		pledgeLogic:   logic.NewPledgeLogic(db, fees),
	}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var campaign model.Campaign
	if err := c.ShouldBindJSON(&campaign); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.campaignLogic.CreateCampaign(c.Request.Context(), &campaign); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "活动创建成功",
		"campaign": campaign,
	})
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	status := model.FundingStatus(c.Query("status"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	campaigns, total, err := h.campaignLogic.GetCampaigns(c.Request.Context(), status, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的活动ID"})
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "活动不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaign": campaign})
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的活动ID"})
		return
	}

	stats, err := h.campaignLogic.GetCampaignStats(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "活动不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// CreatePledge 下单支持活动
func (h *CampaignHandler) CreatePledge(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的活动ID"})
		return
	}

	var req logic.CreatePledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pledge, breakdown, err := h.pledgeLogic.CreatePledge(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCampaignNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "活动不存在"})
		case errors.Is(err, apperrors.ErrCampaignClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "活动已结束，无法支持"})
		case errors.Is(err, apperrors.ErrInsufficientTickets):
			c.JSON(http.StatusConflict, gin.H{"error": "剩余票数不足"})
		case errors.Is(err, apperrors.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的金额"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "支持成功",
		"pledge":  pledge,
		"fees":    breakdown,
	})
}

// GetPledges 获取活动的支持记录
func (h *CampaignHandler) GetPledges(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的活动ID"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	pledges, total, err := h.pledgeLogic.GetPledges(c.Request.Context(), id, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pledges":   pledges,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
