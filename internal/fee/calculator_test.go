package fee

import (
	"testing"

	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator() *Calculator {
	return NewCalculator(config.FeeConfig{
		StandardRate:   0.20,
		ProgramRate:    0.15,
		ProcessorRate:  0.029,
		ProcessorFixed: 30,
	})
}

func TestCalculator_Compute(t *testing.T) {
	calc := newTestCalculator()

	t.Run("standard tier with processor fee", func(t *testing.T) {
		b, err := calc.Compute(10000, TierStandard, Options{IncludeProcessorFee: true})

		require.NoError(t, err)
		assert.Equal(t, int64(10000), b.Subtotal)
		assert.Equal(t, 0.20, b.PlatformFeePercentage)
		assert.Equal(t, int64(2000), b.PlatformFee)
		assert.Equal(t, int64(320), b.ProcessorFee)
		assert.Equal(t, int64(2320), b.TotalFees)
		assert.Equal(t, int64(12320), b.Total)
		assert.Equal(t, int64(8000), b.NetToCreator)
	})

	t.Run("creator program tier", func(t *testing.T) {
		b, err := calc.Compute(10000, TierCreatorProgram, Options{})

		require.NoError(t, err)
		assert.Equal(t, 0.15, b.PlatformFeePercentage)
		assert.Equal(t, int64(1500), b.PlatformFee)
		assert.Equal(t, int64(0), b.ProcessorFee)
		assert.Equal(t, int64(8500), b.NetToCreator)
	})

	t.Run("platform fee payment is not fee'd again", func(t *testing.T) {
		b, err := calc.Compute(10000, TierStandard, Options{
			IncludeProcessorFee: true,
			PlatformFeePayment:  true,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(0), b.PlatformFee)
		assert.Equal(t, int64(320), b.ProcessorFee)
		assert.Equal(t, int64(10000), b.NetToCreator)
	})

	t.Run("zero amount returns all-zero breakdown", func(t *testing.T) {
		b, err := calc.Compute(0, TierStandard, Options{IncludeProcessorFee: true})

		require.NoError(t, err)
		assert.Equal(t, int64(0), b.Subtotal)
		assert.Equal(t, int64(0), b.PlatformFee)
		assert.Equal(t, int64(0), b.ProcessorFee)
		assert.Equal(t, int64(0), b.Total)
		assert.Equal(t, int64(0), b.NetToCreator)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		_, err := calc.Compute(-1, TierStandard, Options{})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})

	t.Run("unknown tier rejected", func(t *testing.T) {
		_, err := calc.Compute(10000, Tier("vip"), Options{})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTier)
	})
}

func TestCalculator_BankersRounding(t *testing.T) {
	calc := newTestCalculator()

	// 2.9% 命中半分时四舍六入五成双：72.5 -> 72，217.5 -> 218
	b, err := calc.Compute(2500, TierStandard, Options{IncludeProcessorFee: true})
	require.NoError(t, err)
	assert.Equal(t, int64(72+30), b.ProcessorFee)

	b, err = calc.Compute(7500, TierStandard, Options{IncludeProcessorFee: true})
	require.NoError(t, err)
	assert.Equal(t, int64(218+30), b.ProcessorFee)
}

func TestCalculator_FeeRoundTrip(t *testing.T) {
	calc := newTestCalculator()

	amounts := []int64{1, 99, 101, 2500, 3333, 7500, 10000, 123457, 99999999}
	for _, amount := range amounts {
		for _, tier := range []Tier{TierStandard, TierCreatorProgram} {
			b, err := calc.Compute(amount, tier, Options{IncludeProcessorFee: true})
			require.NoError(t, err)
			assert.Equal(t, b.Subtotal, b.NetToCreator+b.PlatformFee,
				"net + platform fee must equal subtotal for amount=%d tier=%s", amount, tier)
			assert.Equal(t, b.Total, b.Subtotal+b.TotalFees,
				"total must equal subtotal + fees for amount=%d tier=%s", amount, tier)
		}
	}
}

func TestCalculator_Compare(t *testing.T) {
	calc := newTestCalculator()

	t.Run("savings of creator program vs standard", func(t *testing.T) {
		c, err := calc.Compare(10000)

		require.NoError(t, err)
		assert.Equal(t, int64(2000), c.Standard.PlatformFee)
		assert.Equal(t, int64(1500), c.CreatorProgram.PlatformFee)
		assert.Equal(t, int64(500), c.Savings)
		assert.InDelta(t, 25.0, c.SavingsPercent, 0.001)
	})

	t.Run("zero amount has zero savings", func(t *testing.T) {
		c, err := calc.Compare(0)

		require.NoError(t, err)
		assert.Equal(t, int64(0), c.Savings)
		assert.Equal(t, 0.0, c.SavingsPercent)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		_, err := calc.Compare(-500)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})
}
