package settlement

import (
	"time"

	"github.com/blues/efs/internal/model"
)

// Decision 结算判定结果
type Decision int

const (
	DecisionNone Decision = iota
	DecisionSucceed
	DecisionFail
)

func (d Decision) String() string {
	switch d {
	case DecisionSucceed:
		return "succeed"
	case DecisionFail:
		return "fail"
	}
	return "none"
}

// Decide 纯函数判定：达标即成功，达标优先于截止时间 —— 已过截止但金额
// 已达标的活动绝不能判失败。未达标且已过截止判失败，其余情况不处理。
func Decide(campaign *model.Campaign, now time.Time) Decision {
	if campaign.FundingStatus != model.FundingStatusInProgress {
		return DecisionNone
	}
	if campaign.GoalReached() {
		return DecisionSucceed
	}
	if !now.Before(campaign.PledgeDeadline) {
		return DecisionFail
	}
	return DecisionNone
}
