package task

import (
	"context"
	"time"

	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/settlement"
	"github.com/go-co-op/gocron/v2"
)

// SettlementJob 活动结算定时任务
type SettlementJob struct {
	runner *settlement.Runner
	config *config.Config
}

// NewSettlementJob 创建活动结算定时任务
func NewSettlementJob(runner *settlement.Runner, cfg *config.Config) *SettlementJob {
	return &SettlementJob{
		runner: runner,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *SettlementJob) GetName() string {
	return "campaign_settlement_runner"
}

// GetSchedule 获取调度配置
func (j *SettlementJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *SettlementJob) Execute() {
	logger.Info("Starting campaign settlement run")

	summary, err := j.runner.Run(context.Background(), time.Now())
	if err != nil {
		// 顶层故障：候选查询失败等，留待下一轮调度重试
		logger.Error("Settlement run aborted: %v", err)
		return
	}

	for _, campaignErr := range summary.Errors {
		logger.Error("Campaign %d settlement failed: %s", campaignErr.CampaignId, campaignErr.Error)
	}
}
