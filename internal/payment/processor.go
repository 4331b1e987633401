package payment

import (
	"context"

	"github.com/blues/efs/internal/logger"
)

// Processor 支付处理方协作接口。结算引擎只保证支持记录的状态迁移，
// 实际的扣款/释放由外部实现完成。
type Processor interface {
	// CaptureHold 对已预授权的支持记录执行扣款
	CaptureHold(ctx context.Context, pledgeId string) error
	// ReleaseHold 释放支持记录的预授权，资金不发生转移
	ReleaseHold(ctx context.Context, pledgeId string) error
}

// PayoutService 创作者收款协作接口
type PayoutService interface {
	// TransferToCreator 将结算净额划转到创作者收款账户
	TransferToCreator(ctx context.Context, account string, amount int64) error
}

// LogProcessor 仅记录日志的支付处理方实现，供本地运行与联调使用
type LogProcessor struct{}

// NewLogProcessor 创建日志版支付处理方
func NewLogProcessor() *LogProcessor {
	return &LogProcessor{}
}

// CaptureHold 记录扣款意图
func (p *LogProcessor) CaptureHold(ctx context.Context, pledgeId string) error {
	logger.Info("Capture hold for pledge %s", pledgeId)
	return nil
}

// ReleaseHold 记录释放意图
func (p *LogProcessor) ReleaseHold(ctx context.Context, pledgeId string) error {
	logger.Info("Release hold for pledge %s", pledgeId)
	return nil
}

// LogPayoutService 仅记录日志的划转实现
type LogPayoutService struct{}

// NewLogPayoutService 创建日志版划转服务
func NewLogPayoutService() *LogPayoutService {
	return &LogPayoutService{}
}

// TransferToCreator 记录划转意图
func (s *LogPayoutService) TransferToCreator(ctx context.Context, account string, amount int64) error {
	logger.Info("Transfer %d to creator account %s", amount, account)
	return nil
}
