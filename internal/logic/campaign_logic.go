package logic

import (
	"context"
	"errors"
	"time"

	"github.com/blues/efs/internal/model"
	"github.com/blues/efs/internal/repository"
	"gorm.io/gorm"
)

// CampaignLogic 活动业务逻辑
type CampaignLogic struct {
	campaigns *repository.CampaignRepository
	pledges   *repository.PledgeRepository
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{
		campaigns: repository.NewCampaignRepository(db),
		pledges:   repository.NewPledgeRepository(db),
	}
}

// CreateCampaign 创建活动
func (l *CampaignLogic) CreateCampaign(ctx context.Context, campaign *model.Campaign) error {
	if err := l.validateCampaign(campaign); err != nil {
		return err
	}

	// 初始化状态与票务桶：全部容量进入可售桶
	campaign.FundingStatus = model.FundingStatusInProgress
	campaign.CurrentAmount = 0
	campaign.AvailableTickets = campaign.Capacity
	campaign.ReservedTickets = 0
	campaign.TicketsSold = 0
	campaign.FundedAt = nil

	return l.campaigns.Create(ctx, campaign)
}

// GetCampaign 获取活动详情
func (l *CampaignLogic) GetCampaign(ctx context.Context, id int64) (*model.Campaign, error) {
	return l.campaigns.FindByID(ctx, id)
}

// GetCampaigns 获取活动列表
func (l *CampaignLogic) GetCampaigns(ctx context.Context, status model.FundingStatus, page, pageSize int) ([]model.Campaign, int64, error) {
	return l.campaigns.List(ctx, status, page, pageSize)
}

// GetCampaignStats 获取活动统计信息
func (l *CampaignLogic) GetCampaignStats(ctx context.Context, id int64) (map[string]interface{}, error) {
	campaign, err := l.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	backerCount, err := l.pledges.CountDistinctBackers(ctx, id)
	if err != nil {
		return nil, err
	}

	completionPercentage := float64(0)
	if campaign.TargetAmount > 0 {
		completionPercentage = float64(campaign.CurrentAmount) / float64(campaign.TargetAmount) * 100
	}

	remainingTime := time.Duration(0)
	if campaign.FundingStatus == model.FundingStatusInProgress && time.Now().Before(campaign.PledgeDeadline) {
		remainingTime = time.Until(campaign.PledgeDeadline)
	}

	return map[string]interface{}{
		"campaign_id":           campaign.Id,
		"current_amount":        campaign.CurrentAmount,
		"target_amount":         campaign.TargetAmount,
		"completion_percentage": completionPercentage,
		"backer_count":          backerCount,
		"available_tickets":     campaign.AvailableTickets,
		"reserved_tickets":      campaign.ReservedTickets,
		"tickets_sold":          campaign.TicketsSold,
		"remaining_time":        remainingTime.String(),
		"funding_status":        campaign.FundingStatus,
	}, nil
}

// validateCampaign 验证活动数据
func (l *CampaignLogic) validateCampaign(campaign *model.Campaign) error {
	if campaign.Title == "" {
		return errors.New("活动标题不能为空")
	}
	if campaign.TargetAmount <= 0 {
		return errors.New("目标金额必须大于0")
	}
	if campaign.Capacity < 0 {
		return errors.New("票务容量不能为负")
	}
	if !campaign.PledgeDeadline.After(time.Now()) {
		return errors.New("筹款截止时间不能早于当前时间")
	}
	return nil
}
