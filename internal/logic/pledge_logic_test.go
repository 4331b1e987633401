package logic

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/config"
	"github.com/blues/efs/internal/fee"
	"github.com/blues/efs/internal/model"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Campaign{}, &model.Pledge{}))

	return db
}

func testCalculator() *fee.Calculator {
	return fee.NewCalculator(config.FeeConfig{
		StandardRate:   0.20,
		ProgramRate:    0.15,
		ProcessorRate:  0.029,
		ProcessorFixed: 30,
	})
}

func TestCampaignLogic_CreateCampaign(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	campaignLogic := NewCampaignLogic(db)

	t.Run("initializes buckets from capacity", func(t *testing.T) {
		campaign := &model.Campaign{
			Title:          "Launch Party",
			TargetAmount:   100000,
			PledgeDeadline: time.Now().Add(48 * time.Hour),
			Capacity:       100,
		}

		require.NoError(t, campaignLogic.CreateCampaign(ctx, campaign))

		assert.Equal(t, model.FundingStatusInProgress, campaign.FundingStatus)
		assert.Equal(t, int64(100), campaign.AvailableTickets)
		assert.Equal(t, int64(0), campaign.ReservedTickets)
		assert.Equal(t, int64(0), campaign.TicketsSold)
		assert.Equal(t, int64(0), campaign.CurrentAmount)
	})

	t.Run("rejects past deadline", func(t *testing.T) {
		campaign := &model.Campaign{
			Title:          "Too Late",
			TargetAmount:   100000,
			PledgeDeadline: time.Now().Add(-time.Hour),
			Capacity:       100,
		}

		require.Error(t, campaignLogic.CreateCampaign(ctx, campaign))
	})

	t.Run("rejects non-positive target", func(t *testing.T) {
		campaign := &model.Campaign{
			Title:          "Free Lunch",
			TargetAmount:   0,
			PledgeDeadline: time.Now().Add(time.Hour),
		}

		require.Error(t, campaignLogic.CreateCampaign(ctx, campaign))
	})
}

func TestPledgeLogic_CreatePledge(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	campaignLogic := NewCampaignLogic(db)
	pledgeLogic := NewPledgeLogic(db, testCalculator())

	newCampaign := func(t *testing.T, capacity int64) *model.Campaign {
		campaign := &model.Campaign{
			Title:          "Evening Show",
			TargetAmount:   100000,
			PledgeDeadline: time.Now().Add(24 * time.Hour),
			Capacity:       capacity,
		}
		require.NoError(t, campaignLogic.CreateCampaign(ctx, campaign))
		return campaign
	}

	t.Run("reserves tickets and snapshots fees", func(t *testing.T) {
		campaign := newCampaign(t, 10)

		pledge, breakdown, err := pledgeLogic.CreatePledge(ctx, campaign.Id, &CreatePledgeRequest{
			BackerName:      "ada",
			Amount:          10000,
			TicketCount:     2,
			PaymentIntentId: "pi_abc",
		})

		require.NoError(t, err)
		assert.Equal(t, model.PledgeStatusRequiresCapture, pledge.Status)
		assert.Equal(t, int64(2000), breakdown.PlatformFee)
		assert.Equal(t, int64(320), breakdown.ProcessorFee)
		assert.Equal(t, int64(12320), breakdown.Total)
		assert.Equal(t, breakdown.PlatformFee, pledge.PlatformFee)
		assert.Equal(t, breakdown.Total, pledge.TotalCharged)

		var got model.Campaign
		require.NoError(t, db.First(&got, campaign.Id).Error)
		assert.Equal(t, int64(8), got.AvailableTickets)
		assert.Equal(t, int64(2), got.ReservedTickets)
		assert.Equal(t, int64(10000), got.CurrentAmount)
		assert.Equal(t, got.Capacity, got.AvailableTickets+got.ReservedTickets+got.TicketsSold)
	})

	t.Run("rejects when tickets are sold out", func(t *testing.T) {
		campaign := newCampaign(t, 1)

		_, _, err := pledgeLogic.CreatePledge(ctx, campaign.Id, &CreatePledgeRequest{
			BackerName:  "bob",
			Amount:      5000,
			TicketCount: 2,
		})

		assert.ErrorIs(t, err, apperrors.ErrInsufficientTickets)

		// 拒绝的下单不得留下任何痕迹
		var got model.Campaign
		require.NoError(t, db.First(&got, campaign.Id).Error)
		assert.Equal(t, int64(0), got.CurrentAmount)
		assert.Equal(t, int64(1), got.AvailableTickets)

		var pledgeCount int64
		require.NoError(t, db.Model(&model.Pledge{}).
			Where("event_id = ?", campaign.Id).Count(&pledgeCount).Error)
		assert.Equal(t, int64(0), pledgeCount)
	})

	t.Run("rejects settled campaign", func(t *testing.T) {
		campaign := newCampaign(t, 10)
		require.NoError(t, db.Model(&model.Campaign{}).Where("id = ?", campaign.Id).
			Update("funding_status", model.FundingStatusFailed).Error)

		_, _, err := pledgeLogic.CreatePledge(ctx, campaign.Id, &CreatePledgeRequest{
			BackerName: "eve",
			Amount:     5000,
		})

		assert.ErrorIs(t, err, apperrors.ErrCampaignClosed)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		campaign := newCampaign(t, 10)

		_, _, err := pledgeLogic.CreatePledge(ctx, campaign.Id, &CreatePledgeRequest{
			BackerName: "mallory",
			Amount:     0,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})

	t.Run("missing campaign", func(t *testing.T) {
		_, _, err := pledgeLogic.CreatePledge(ctx, 404, &CreatePledgeRequest{
			BackerName: "nobody",
			Amount:     5000,
		})

		assert.ErrorIs(t, err, apperrors.ErrCampaignNotFound)
	})
}
