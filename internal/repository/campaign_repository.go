package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/model"
	"gorm.io/gorm"
)

// CampaignRepository 活动数据访问层
type CampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建活动数据访问层
func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// WithTx 返回绑定到指定事务的副本
func (r *CampaignRepository) WithTx(tx *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: tx}
}

// Create 创建活动
func (r *CampaignRepository) Create(ctx context.Context, campaign *model.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

// FindByID 查询单个活动，并在仓储边界校验状态枚举
func (r *CampaignRepository) FindByID(ctx context.Context, id int64) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCampaignNotFound
		}
		return nil, err
	}

	if !campaign.FundingStatus.Valid() {
		return nil, fmt.Errorf("campaign %d has unknown funding status %q", id, campaign.FundingStatus)
	}

	return &campaign, nil
}

// List 按状态分页查询活动
func (r *CampaignRepository) List(ctx context.Context, status model.FundingStatus, page, pageSize int) ([]model.Campaign, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Campaign{})
	if status != "" {
		if !status.Valid() {
			return nil, 0, fmt.Errorf("unknown funding status %q", status)
		}
		query = query.Where("funding_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []model.Campaign
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&campaigns).Error
	if err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// FindDueForSettlement 查询待结算活动：筹款中且已达标或已过截止时间。
// 每行是一次一致性读取，不产生任何副作用。
func (r *CampaignRepository) FindDueForSettlement(ctx context.Context, now time.Time) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	err := r.db.WithContext(ctx).
		Where("funding_status = ? AND (current_amount >= target_amount OR pledge_deadline <= ?)",
			model.FundingStatusInProgress, now).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// SettleFunded 条件更新：筹款中 -> 成功，预留票全部转为已售。
// 返回受影响行数，0 表示另一个进程已抢先结算。
func (r *CampaignRepository) SettleFunded(ctx context.Context, id int64, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Campaign{}).
		Where("id = ? AND funding_status = ?", id, model.FundingStatusInProgress).
		Updates(map[string]interface{}{
			"funding_status":   model.FundingStatusFunded,
			"funded_at":        now,
			"tickets_sold":     gorm.Expr("tickets_sold + reserved_tickets"),
			"reserved_tickets": 0,
		})
	return res.RowsAffected, res.Error
}

// SettleFailed 条件更新：筹款中 -> 失败，预留票全部退回可售
func (r *CampaignRepository) SettleFailed(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Campaign{}).
		Where("id = ? AND funding_status = ?", id, model.FundingStatusInProgress).
		Updates(map[string]interface{}{
			"funding_status":    model.FundingStatusFailed,
			"available_tickets": gorm.Expr("available_tickets + reserved_tickets"),
			"reserved_tickets":  0,
		})
	return res.RowsAffected, res.Error
}

// ReserveForPledge 下单时的条件更新：扣减可售票、增加预留票、累加当前金额。
// 活动必须仍在筹款中、未过截止时间且库存足够，否则返回具体原因。
func (r *CampaignRepository) ReserveForPledge(ctx context.Context, id int64, tickets, amount int64, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Campaign{}).
		Where("id = ? AND funding_status = ? AND pledge_deadline > ? AND available_tickets >= ?",
			id, model.FundingStatusInProgress, now, tickets).
		Updates(map[string]interface{}{
			"available_tickets": gorm.Expr("available_tickets - ?", tickets),
			"reserved_tickets":  gorm.Expr("reserved_tickets + ?", tickets),
			"current_amount":    gorm.Expr("current_amount + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// 条件不满足，重新读取以区分拒绝原因
	campaign, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if campaign.FundingStatus != model.FundingStatusInProgress || !campaign.PledgeDeadline.After(now) {
		return apperrors.ErrCampaignClosed
	}
	return apperrors.ErrInsufficientTickets
}
