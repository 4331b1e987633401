package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/blues/efs/internal/apperrors"
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

func TestCampaignRepository_FindDueForSettlement(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	db := setupTestDB(t)
	repo := NewCampaignRepository(db)

	goalReached := &model.Campaign{
		Title: "Goal Reached", TargetAmount: 1000, CurrentAmount: 1000,
		PledgeDeadline: now.Add(time.Hour), FundingStatus: model.FundingStatusInProgress,
	}
	deadlinePassed := &model.Campaign{
		Title: "Deadline Passed", TargetAmount: 1000, CurrentAmount: 400,
		PledgeDeadline: now.Add(-time.Minute), FundingStatus: model.FundingStatusInProgress,
	}
	notDue := &model.Campaign{
		Title: "Not Due", TargetAmount: 1000, CurrentAmount: 400,
		PledgeDeadline: now.Add(time.Hour), FundingStatus: model.FundingStatusInProgress,
	}
	alreadyFunded := &model.Campaign{
		Title: "Already Funded", TargetAmount: 1000, CurrentAmount: 1500,
		PledgeDeadline: now.Add(-time.Hour), FundingStatus: model.FundingStatusFunded,
	}
	for _, c := range []*model.Campaign{goalReached, deadlinePassed, notDue, alreadyFunded} {
		require.NoError(t, db.Create(c).Error)
	}

	due, err := repo.FindDueForSettlement(ctx, now)

	require.NoError(t, err)
	ids := make([]int64, 0, len(due))
	for _, c := range due {
		ids = append(ids, c.Id)
	}
	assert.ElementsMatch(t, []int64{goalReached.Id, deadlinePassed.Id}, ids)
}

func TestCampaignRepository_SettleFunded(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	db := setupTestDB(t)
	repo := NewCampaignRepository(db)

	campaign := &model.Campaign{
		Title: "CAS", TargetAmount: 1000, CurrentAmount: 1200,
		PledgeDeadline: now.Add(-time.Hour), FundingStatus: model.FundingStatusInProgress,
		Capacity: 30, AvailableTickets: 10, ReservedTickets: 20,
	}
	require.NoError(t, db.Create(campaign).Error)

	rows, err := repo.SettleFunded(ctx, campaign.Id, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	var got model.Campaign
	require.NoError(t, db.First(&got, campaign.Id).Error)
	assert.Equal(t, model.FundingStatusFunded, got.FundingStatus)
	assert.Equal(t, int64(20), got.TicketsSold)
	assert.Equal(t, int64(0), got.ReservedTickets)
	assert.Equal(t, int64(10), got.AvailableTickets)

	// 状态守卫：重复结算不命中任何行
	rows, err = repo.SettleFunded(ctx, campaign.Id, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = repo.SettleFailed(ctx, campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestCampaignRepository_ReserveForPledge(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	db := setupTestDB(t)
	repo := NewCampaignRepository(db)

	t.Run("reserves tickets and bumps amount", func(t *testing.T) {
		campaign := &model.Campaign{
			Title: "Open", TargetAmount: 1000, PledgeDeadline: now.Add(time.Hour),
			FundingStatus: model.FundingStatusInProgress,
			Capacity:      10, AvailableTickets: 10,
		}
		require.NoError(t, db.Create(campaign).Error)

		require.NoError(t, repo.ReserveForPledge(ctx, campaign.Id, 3, 500, now))

		var got model.Campaign
		require.NoError(t, db.First(&got, campaign.Id).Error)
		assert.Equal(t, int64(7), got.AvailableTickets)
		assert.Equal(t, int64(3), got.ReservedTickets)
		assert.Equal(t, int64(500), got.CurrentAmount)
		assert.Equal(t, got.Capacity, got.AvailableTickets+got.ReservedTickets+got.TicketsSold)
	})

	t.Run("rejects when not enough tickets", func(t *testing.T) {
		campaign := &model.Campaign{
			Title: "Scarce", TargetAmount: 1000, PledgeDeadline: now.Add(time.Hour),
			FundingStatus: model.FundingStatusInProgress,
			Capacity:      2, AvailableTickets: 2,
		}
		require.NoError(t, db.Create(campaign).Error)

		err := repo.ReserveForPledge(ctx, campaign.Id, 3, 500, now)

		assert.ErrorIs(t, err, apperrors.ErrInsufficientTickets)
	})

	t.Run("rejects settled campaign", func(t *testing.T) {
		campaign := &model.Campaign{
			Title: "Settled", TargetAmount: 1000, PledgeDeadline: now.Add(time.Hour),
			FundingStatus: model.FundingStatusFunded,
			Capacity:      10, AvailableTickets: 10,
		}
		require.NoError(t, db.Create(campaign).Error)

		err := repo.ReserveForPledge(ctx, campaign.Id, 1, 500, now)

		assert.ErrorIs(t, err, apperrors.ErrCampaignClosed)
	})

	t.Run("rejects past deadline", func(t *testing.T) {
		campaign := &model.Campaign{
			Title: "Expired", TargetAmount: 1000, PledgeDeadline: now.Add(-time.Hour),
			FundingStatus: model.FundingStatusInProgress,
			Capacity:      10, AvailableTickets: 10,
		}
		require.NoError(t, db.Create(campaign).Error)

		err := repo.ReserveForPledge(ctx, campaign.Id, 1, 500, now)

		assert.ErrorIs(t, err, apperrors.ErrCampaignClosed)
	})

	t.Run("missing campaign", func(t *testing.T) {
		err := repo.ReserveForPledge(ctx, 404, 1, 500, now)

		assert.ErrorIs(t, err, apperrors.ErrCampaignNotFound)
	})
}

func TestCampaignRepository_FindByID_ValidatesStatus(t *testing.T) {
	ctx := context.Background()

	db := setupTestDB(t)
	repo := NewCampaignRepository(db)

	campaign := &model.Campaign{
		Title: "Corrupt", TargetAmount: 1000,
		PledgeDeadline: time.Now().Add(time.Hour), FundingStatus: model.FundingStatusInProgress,
	}
	require.NoError(t, db.Create(campaign).Error)
	require.NoError(t, db.Model(&model.Campaign{}).Where("id = ?", campaign.Id).
		Update("funding_status", "definitely_not_a_status").Error)

	_, err := repo.FindByID(ctx, campaign.Id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown funding status")
}
