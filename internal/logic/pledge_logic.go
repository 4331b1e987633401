package logic

import (
	"context"
	"errors"
	"time"

	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/fee"
	"github.com/blues/efs/internal/model"
	"github.com/blues/efs/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PledgeLogic 下单业务逻辑
type PledgeLogic struct {
	db        *gorm.DB
	campaigns *repository.CampaignRepository
	pledges   *repository.PledgeRepository
	fees      *fee.Calculator
}

// NewPledgeLogic 创建下单业务逻辑
func NewPledgeLogic(db *gorm.DB, fees *fee.Calculator) *PledgeLogic {
	return &PledgeLogic{
		db:        db,
		campaigns: repository.NewCampaignRepository(db),
		pledges:   repository.NewPledgeRepository(db),
		fees:      fees,
	}
}

// CreatePledgeRequest 下单请求
type CreatePledgeRequest struct {
	BackerName      string `json:"backer_name" binding:"required"`
	Amount          int64  `json:"amount" binding:"required,min=1"`
	TicketCount     int64  `json:"ticket_count" binding:"min=0"`
	PaymentIntentId string `json:"payment_intent_id"`
}

// CreatePledge 下单：预留门票、累加活动当前金额并创建待扣款的支持记录。
// 三者在同一事务内完成，保证票务桶守恒与 current_amount 反范式字段一致。
func (l *PledgeLogic) CreatePledge(ctx context.Context, campaignId int64, req *CreatePledgeRequest) (*model.Pledge, *fee.Breakdown, error) {
	if req.Amount <= 0 {
		return nil, nil, apperrors.ErrInvalidAmount
	}
	if req.TicketCount < 0 {
		return nil, nil, errors.New("票数不能为负")
	}

	now := time.Now()
	var pledge *model.Pledge
	var breakdown *fee.Breakdown

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaigns := l.campaigns.WithTx(tx)
		pledges := l.pledges.WithTx(tx)

		campaign, err := campaigns.FindByID(ctx, campaignId)
		if err != nil {
			return err
		}

		if err := campaigns.ReserveForPledge(ctx, campaignId, req.TicketCount, req.Amount, now); err != nil {
			return err
		}

		// 下单时的费用快照，结算转账复用同一计算器保证金额一致
		tier := fee.TierForCampaign(campaign.CreatorProgram)
		breakdown, err = l.fees.Compute(req.Amount, tier, fee.Options{IncludeProcessorFee: true})
		if err != nil {
			return err
		}

		pledge = &model.Pledge{
			Id:              uuid.NewString(),
			EventId:         campaignId,
			BackerName:      req.BackerName,
			Amount:          req.Amount,
			TicketCount:     req.TicketCount,
			Status:          model.PledgeStatusRequiresCapture,
			PaymentIntentId: req.PaymentIntentId,
			PlatformFee:     breakdown.PlatformFee,
			ProcessorFee:    breakdown.ProcessorFee,
			TotalCharged:    breakdown.Total,
		}
		return pledges.Create(ctx, pledge)
	})
	if err != nil {
		return nil, nil, err
	}

	return pledge, breakdown, nil
}

// GetPledges 获取活动的支持记录列表
func (l *PledgeLogic) GetPledges(ctx context.Context, campaignId int64, page, pageSize int) ([]model.Pledge, int64, error) {
	return l.pledges.ListByEvent(ctx, campaignId, page, pageSize)
}
