package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/blues/efs/internal/fee"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/model"
	"github.com/blues/efs/internal/repository"
	"gorm.io/gorm"
)

// Outcome 单个活动的结算结果
type Outcome struct {
	CampaignId     int64    `json:"campaign_id"`
	Decision       Decision `json:"-"`
	AlreadySettled bool     `json:"already_settled"`
	PledgeIds      []string `json:"pledge_ids"`
	PledgeCount    int64    `json:"pledge_count"`
	NetToCreator   int64    `json:"net_to_creator"`
	CreatorAccount string   `json:"-"`
}

// Executor 结算执行器。每个活动的结算在单个事务内完成：
// 状态条件更新、票务桶迁移、支持记录批量变更要么全部生效要么全部回滚。
// 幂等性由 funding_status 的条件更新保证，重复执行是良性空操作。
type Executor struct {
	db        *gorm.DB
	campaigns *repository.CampaignRepository
	pledges   *repository.PledgeRepository
	fees      *fee.Calculator
}

// NewExecutor 创建结算执行器
func NewExecutor(db *gorm.DB, fees *fee.Calculator) *Executor {
	return &Executor{
		db:        db,
		campaigns: repository.NewCampaignRepository(db),
		pledges:   repository.NewPledgeRepository(db),
		fees:      fees,
	}
}

// Execute 应用结算判定。活动不存在返回 ErrCampaignNotFound；
// 活动已离开筹款中状态时返回 AlreadySettled 的空操作结果，不报错。
func (e *Executor) Execute(ctx context.Context, campaignId int64, decision Decision, now time.Time) (*Outcome, error) {
	outcome := &Outcome{CampaignId: campaignId, Decision: decision}
	if decision == DecisionNone {
		return outcome, nil
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaigns := e.campaigns.WithTx(tx)
		pledges := e.pledges.WithTx(tx)

		campaign, err := campaigns.FindByID(ctx, campaignId)
		if err != nil {
			return err
		}
		if campaign.FundingStatus.Terminal() {
			outcome.AlreadySettled = true
			return nil
		}

		// 先做状态条件更新再收集支持记录：条件更新持有活动行锁后，
		// 并发下单会被 ReserveForPledge 的筹款中守卫挡住，此后读到的
		// 待扣款集合与批量变更命中的行完全一致，不会漏报给支付处理方
		var rows int64
		var target model.PledgeStatus
		switch decision {
		case DecisionSucceed:
			rows, err = campaigns.SettleFunded(ctx, campaignId, now)
			target = model.PledgeStatusSucceeded
		case DecisionFail:
			rows, err = campaigns.SettleFailed(ctx, campaignId)
			target = model.PledgeStatusCanceled
		}
		if err != nil {
			return err
		}
		if rows == 0 {
			// 条件更新落空：另一个调度实例已完成结算
			outcome.AlreadySettled = true
			return nil
		}

		pledgeIds, err := pledges.IDsByEventAndStatus(ctx, campaignId, model.PledgeStatusRequiresCapture)
		if err != nil {
			return err
		}

		count, err := pledges.TransitionByEvent(ctx, campaignId, model.PledgeStatusRequiresCapture, target)
		if err != nil {
			return err
		}
		if count != int64(len(pledgeIds)) {
			// 集合与变更行数不一致意味着结果无法如实上报，回滚留待下一轮
			return fmt.Errorf("campaign %d transitioned %d pledges but collected %d ids",
				campaignId, count, len(pledgeIds))
		}
		outcome.PledgeIds = pledgeIds
		outcome.PledgeCount = count

		// 状态更新之后重新读取，金额取结算时刻的最终值
		settled, err := campaigns.FindByID(ctx, campaignId)
		if err != nil {
			return err
		}

		// 反范式化的 current_amount 与逐笔汇总不一致时只告警，仍以
		// current_amount 为准结算，避免结算结果依赖于哪个实例先跑
		if sum, sumErr := pledges.SumActiveByEvent(ctx, campaignId); sumErr != nil {
			logger.Warn("Failed to verify pledge sum for campaign %d: %v", campaignId, sumErr)
		} else if decision == DecisionSucceed && sum != settled.CurrentAmount {
			logger.Warn("Campaign %d current_amount %d differs from pledge sum %d",
				campaignId, settled.CurrentAmount, sum)
		}

		if decision == DecisionSucceed {
			tier := fee.TierForCampaign(settled.CreatorProgram)
			breakdown, err := e.fees.Compute(settled.CurrentAmount, tier, fee.Options{})
			if err != nil {
				return err
			}
			outcome.NetToCreator = breakdown.NetToCreator
			outcome.CreatorAccount = settled.CreatorAccount
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}
