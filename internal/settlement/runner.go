package settlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/fee"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/model"
	"github.com/blues/efs/internal/payment"
	"github.com/blues/efs/internal/repository"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// CampaignError 批处理中单个活动的失败信息
type CampaignError struct {
	CampaignId int64  `json:"campaign_id"`
	Error      string `json:"error"`
}

// Summary 一轮批处理的汇总。单个活动的失败只进入 Errors，
// 批处理本身只要候选查询与循环完成即视为成功。
type Summary struct {
	Total     int             `json:"total"`
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Errors    []CampaignError `json:"errors,omitempty"`
}

type campaignExecutor interface {
	Execute(ctx context.Context, campaignId int64, decision Decision, now time.Time) (*Outcome, error)
}

// Runner 结算批处理：查询候选活动，逐个判定并执行，活动间互不阻塞。
// 执行器的幂等保证使并发处理与重叠运行都是安全的，无需分布式锁。
type Runner struct {
	campaigns *repository.CampaignRepository
	exec      campaignExecutor
	processor payment.Processor
	payouts   payment.PayoutService
	workers   int
	dbTimeout time.Duration
}

// NewRunner 创建结算批处理
func NewRunner(db *gorm.DB, fees *fee.Calculator, processor payment.Processor,
	payouts payment.PayoutService, cfg config.TaskConfig) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	dbTimeout := time.Duration(cfg.DBTimeout) * time.Second
	if dbTimeout <= 0 {
		dbTimeout = 5 * time.Second
	}

	return &Runner{
		campaigns: repository.NewCampaignRepository(db),
		exec:      NewExecutor(db, fees),
		processor: processor,
		payouts:   payouts,
		workers:   workers,
		dbTimeout: dbTimeout,
	}
}

// Run 执行一轮结算。仅当候选查询本身失败时返回错误，
// 单个活动的失败计入汇总后继续处理其余活动。
func (r *Runner) Run(ctx context.Context, now time.Time) (*Summary, error) {
	candidates, err := r.campaigns.FindDueForSettlement(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns due for settlement: %w", err)
	}

	summary := &Summary{Total: len(candidates)}
	if len(candidates) == 0 {
		logger.Info("Settlement run completed. No campaigns due")
		return summary, nil
	}

	poolSize := r.workers
	if len(candidates) < poolSize {
		poolSize = len(candidates)
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := range candidates {
		campaign := candidates[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			r.settleOne(ctx, &campaign, now, summary, &mu)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			summary.Processed++
			summary.Failed++
			summary.Errors = append(summary.Errors, CampaignError{
				CampaignId: campaign.Id,
				Error:      submitErr.Error(),
			})
			mu.Unlock()
			logger.Error("Failed to submit campaign %d to pool: %v", campaign.Id, submitErr)
		}
	}
	wg.Wait()

	logger.Info("Settlement run completed. total=%d processed=%d succeeded=%d failed=%d",
		summary.Total, summary.Processed, summary.Succeeded, summary.Failed)
	return summary, nil
}

// settleOne 处理单个活动：判定、执行、记录结果
func (r *Runner) settleOne(ctx context.Context, campaign *model.Campaign, now time.Time,
	summary *Summary, mu *sync.Mutex) {
	decision := Decide(campaign, now)
	if decision == DecisionNone {
		logger.Debug("Campaign %d is not due, skipping", campaign.Id)
		return
	}

	execCtx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	outcome, err := r.exec.Execute(execCtx, campaign.Id, decision, now)

	mu.Lock()
	summary.Processed++
	if err != nil {
		summary.Failed++
		summary.Errors = append(summary.Errors, CampaignError{
			CampaignId: campaign.Id,
			Error:      err.Error(),
		})
		mu.Unlock()
		logger.Error("Failed to settle campaign %d: %v", campaign.Id, err)
		return
	}
	summary.Succeeded++
	mu.Unlock()

	if outcome.AlreadySettled {
		logger.Info("Campaign %d already settled by another run", campaign.Id)
		return
	}

	logger.Info("Settled campaign %d as %s, %d pledges transitioned",
		campaign.Id, decision, outcome.PledgeCount)
	r.notifyCollaborators(ctx, decision, outcome)
}

// notifyCollaborators 结算提交后通知支付处理方与划转服务。
// 状态迁移已持久化，这里的失败只记日志，由对账流程兜底。
func (r *Runner) notifyCollaborators(ctx context.Context, decision Decision, outcome *Outcome) {
	if r.processor != nil {
		for _, pledgeId := range outcome.PledgeIds {
			var err error
			if decision == DecisionSucceed {
				err = r.processor.CaptureHold(ctx, pledgeId)
			} else {
				err = r.processor.ReleaseHold(ctx, pledgeId)
			}
			if err != nil {
				logger.Error("Failed to signal processor for pledge %s: %v", pledgeId, err)
			}
		}
	}

	if decision == DecisionSucceed && r.payouts != nil && outcome.CreatorAccount != "" {
		if err := r.payouts.TransferToCreator(ctx, outcome.CreatorAccount, outcome.NetToCreator); err != nil {
			logger.Error("Failed to initiate payout for campaign %d: %v", outcome.CampaignId, err)
		}
	}
}
