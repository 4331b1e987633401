package model

import (
	"time"
)

// Campaign 全有或全无众筹活动模型
type Campaign struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`

	// 创建者信息
	CreatorName    string `json:"creator_name"`
	CreatorAccount string `json:"creator_account"` // 收款账户（外部支付服务的账户标识）
	CreatorProgram bool   `json:"creator_program"` // 是否加入创作者计划（享受折扣费率）

	// 众筹信息
	TargetAmount   int64     `json:"target_amount" gorm:"not null" binding:"required,min=1"`
	CurrentAmount  int64     `json:"current_amount" gorm:"default:0"`
	PledgeDeadline time.Time `json:"pledge_deadline" gorm:"not null"`

	// 状态
	FundingStatus FundingStatus `json:"funding_status" gorm:"default:'in_progress'"`
	FundedAt      *time.Time    `json:"funded_at"`

	// 票务库存：三个桶的总和恒等于 capacity
	Capacity         int64 `json:"capacity" gorm:"not null"`
	AvailableTickets int64 `json:"available_tickets" gorm:"default:0"`
	ReservedTickets  int64 `json:"reserved_tickets" gorm:"default:0"`
	TicketsSold      int64 `json:"tickets_sold" gorm:"default:0"`
}

// FundingStatus 活动筹款状态
type FundingStatus string

const (
	FundingStatusInProgress FundingStatus = "in_progress"    // 筹款中
	FundingStatusFunded     FundingStatus = "funded"         // 筹款成功（终态）
	FundingStatusFailed     FundingStatus = "funding_failed" // 筹款失败（终态）
)

// Valid 校验状态取值
func (s FundingStatus) Valid() bool {
	switch s {
	case FundingStatusInProgress, FundingStatusFunded, FundingStatusFailed:
		return true
	}
	return false
}

// Terminal 是否为终态
func (s FundingStatus) Terminal() bool {
	return s == FundingStatusFunded || s == FundingStatusFailed
}

// GoalReached 是否达到目标金额
func (c *Campaign) GoalReached() bool {
	return c.CurrentAmount >= c.TargetAmount
}

// TableName 自定义表名
func (Campaign) TableName() string {
	return "campaign"
}
