package task

import (
	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/logger"
	"github.com/blues/efs/internal/settlement"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	runner    *settlement.Runner
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(runner *settlement.Runner, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		runner:    runner,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(runner *settlement.Runner, cfg *config.Config) *Manager {
	manager := NewManager(runner, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	// 注册活动结算任务
	m.RegisterSettlementJob()
}

// RegisterSettlementJob 注册活动结算任务。单例模式保证同一进程内
// 上一轮未结束时不会叠加执行，跨进程的重叠由执行器的幂等保证兜底。
func (m *Manager) RegisterSettlementJob() {
	job := NewSettlementJob(m.runner, m.config)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
