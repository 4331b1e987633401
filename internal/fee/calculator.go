package fee

import (
	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/config"
	"github.com/shopspring/decimal"
)

// Tier 平台费率档位
type Tier string

const (
	TierStandard       Tier = "standard"        // 标准费率
	TierCreatorProgram Tier = "creator_program" // 创作者计划折扣费率
)

// Valid 校验档位取值
func (t Tier) Valid() bool {
	return t == TierStandard || t == TierCreatorProgram
}

// Options 费用计算选项
type Options struct {
	IncludeProcessorFee bool // 是否计入支付通道费
	PlatformFeePayment  bool // 金额本身是平台费账单时置真，避免对平台费再收费
}

// Breakdown 费用明细，金额单位为分
type Breakdown struct {
	Subtotal              int64   `json:"subtotal"`
	PlatformFeePercentage float64 `json:"platform_fee_percentage"`
	PlatformFee           int64   `json:"platform_fee"`
	ProcessorFee          int64   `json:"processor_fee"`
	TotalFees             int64   `json:"total_fees"`
	Total                 int64   `json:"total"`
	NetToCreator          int64   `json:"net_to_creator"`
}

// TierComparison 两档费率对同一金额的对比
type TierComparison struct {
	Amount         int64      `json:"amount"`
	Standard       *Breakdown `json:"standard"`
	CreatorProgram *Breakdown `json:"creator_program"`
	Savings        int64      `json:"savings"`
	SavingsPercent float64    `json:"savings_percent"`
}

// Calculator 费用计算器。无状态，费率来自配置注入。
// 下单预览与结算转账必须走同一个实例，保证两处舍入规则一致。
type Calculator struct {
	standardRate   decimal.Decimal
	programRate    decimal.Decimal
	processorRate  decimal.Decimal
	processorFixed int64
}

// NewCalculator 创建费用计算器
func NewCalculator(cfg config.FeeConfig) *Calculator {
	return &Calculator{
		standardRate:   decimal.NewFromFloat(cfg.StandardRate),
		programRate:    decimal.NewFromFloat(cfg.ProgramRate),
		processorRate:  decimal.NewFromFloat(cfg.ProcessorRate),
		processorFixed: cfg.ProcessorFixed,
	}
}

// Compute 计算费用明细。金额为负返回 ErrInvalidAmount，为零返回全零明细。
// 所有舍入使用银行家舍入（四舍六入五成双），精确到分。
func (c *Calculator) Compute(amount int64, tier Tier, opts Options) (*Breakdown, error) {
	if amount < 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	rate, err := c.rateFor(tier)
	if err != nil {
		return nil, err
	}

	b := &Breakdown{
		Subtotal:              amount,
		PlatformFeePercentage: rate.InexactFloat64(),
	}
	if amount == 0 {
		return b, nil
	}

	sub := decimal.NewFromInt(amount)

	if !opts.PlatformFeePayment {
		b.PlatformFee = sub.Mul(rate).RoundBank(0).IntPart()
	}
	if opts.IncludeProcessorFee {
		b.ProcessorFee = sub.Mul(c.processorRate).RoundBank(0).IntPart() + c.processorFixed
	}

	b.TotalFees = b.PlatformFee + b.ProcessorFee
	b.Total = b.Subtotal + b.TotalFees
	b.NetToCreator = b.Subtotal - b.PlatformFee

	return b, nil
}

// Compare 计算创作者计划相对标准费率的节省金额与比例
func (c *Calculator) Compare(amount int64) (*TierComparison, error) {
	standard, err := c.Compute(amount, TierStandard, Options{})
	if err != nil {
		return nil, err
	}
	program, err := c.Compute(amount, TierCreatorProgram, Options{})
	if err != nil {
		return nil, err
	}

	comparison := &TierComparison{
		Amount:         amount,
		Standard:       standard,
		CreatorProgram: program,
		Savings:        standard.PlatformFee - program.PlatformFee,
	}
	if standard.PlatformFee > 0 {
		comparison.SavingsPercent = float64(comparison.Savings) / float64(standard.PlatformFee) * 100
	}

	return comparison, nil
}

// TierForCampaign 活动创建者对应的费率档位
func TierForCampaign(creatorProgram bool) Tier {
	if creatorProgram {
		return TierCreatorProgram
	}
	return TierStandard
}

func (c *Calculator) rateFor(tier Tier) (decimal.Decimal, error) {
	switch tier {
	case TierStandard:
		return c.standardRate, nil
	case TierCreatorProgram:
		return c.programRate, nil
	}
	return decimal.Decimal{}, apperrors.ErrInvalidTier
}
