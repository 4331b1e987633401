package model

import (
	"time"
)

// Pledge 支持记录：支持者对活动的条件性出资承诺
type Pledge struct {
	Id        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId    int64  `json:"event_id" gorm:"not null;index"`
	BackerName string `json:"backer_name"`

	// 金额与票数
	Amount      int64 `json:"amount" gorm:"not null"`
	TicketCount int64 `json:"ticket_count" gorm:"default:0"`

	// 状态：由所属活动的筹款状态决定，仅结算执行器批量变更
	Status PledgeStatus `json:"status" gorm:"default:'requires_capture';index"`

	// 支付处理方的预授权单号
	PaymentIntentId string `json:"payment_intent_id"`

	// 下单时的费用快照
	PlatformFee  int64 `json:"platform_fee" gorm:"default:0"`
	ProcessorFee int64 `json:"processor_fee" gorm:"default:0"`
	TotalCharged int64 `json:"total_charged" gorm:"default:0"`
}

// PledgeStatus 支持记录状态
type PledgeStatus string

const (
	PledgeStatusRequiresCapture PledgeStatus = "requires_capture" // 已预授权，等待活动结算
	PledgeStatusSucceeded       PledgeStatus = "succeeded"        // 活动成功，可执行扣款
	PledgeStatusCanceled        PledgeStatus = "canceled"         // 活动失败，释放预授权
)

// Valid 校验状态取值
func (s PledgeStatus) Valid() bool {
	switch s {
	case PledgeStatusRequiresCapture, PledgeStatusSucceeded, PledgeStatusCanceled:
		return true
	}
	return false
}

// TableName 自定义表名
func (Pledge) TableName() string {
	return "pledge"
}
