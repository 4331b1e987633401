package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/blues/efs/internal/apperrors"
	"github.com/blues/efs/internal/model"
	"gorm.io/gorm"
)

// PledgeRepository 支持记录数据访问层
type PledgeRepository struct {
	db *gorm.DB
}

// NewPledgeRepository 创建支持记录数据访问层
func NewPledgeRepository(db *gorm.DB) *PledgeRepository {
	return &PledgeRepository{db: db}
}

// WithTx 返回绑定到指定事务的副本
func (r *PledgeRepository) WithTx(tx *gorm.DB) *PledgeRepository {
	return &PledgeRepository{db: tx}
}

// Create 创建支持记录
func (r *PledgeRepository) Create(ctx context.Context, pledge *model.Pledge) error {
	return r.db.WithContext(ctx).Create(pledge).Error
}

// FindByID 查询单条支持记录
func (r *PledgeRepository) FindByID(ctx context.Context, id string) (*model.Pledge, error) {
	var pledge model.Pledge
	if err := r.db.WithContext(ctx).First(&pledge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPledgeNotFound
		}
		return nil, err
	}
	if !pledge.Status.Valid() {
		return nil, fmt.Errorf("pledge %s has unknown status %q", id, pledge.Status)
	}
	return &pledge, nil
}

// ListByEvent 按活动分页查询支持记录
func (r *PledgeRepository) ListByEvent(ctx context.Context, eventId int64, page, pageSize int) ([]model.Pledge, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Pledge{}).Where("event_id = ?", eventId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pledges []model.Pledge
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pledges).Error
	if err != nil {
		return nil, 0, err
	}

	return pledges, total, nil
}

// IDsByEventAndStatus 查询活动下指定状态的支持记录ID列表
func (r *PledgeRepository) IDsByEventAndStatus(ctx context.Context, eventId int64, status model.PledgeStatus) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Pledge{}).
		Where("event_id = ? AND status = ?", eventId, status).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TransitionByEvent 批量变更活动下指定状态的支持记录，返回变更条数
func (r *PledgeRepository) TransitionByEvent(ctx context.Context, eventId int64, from, to model.PledgeStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Pledge{}).
		Where("event_id = ? AND status = ?", eventId, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// SumActiveByEvent 汇总活动下未取消支持记录的金额
func (r *PledgeRepository) SumActiveByEvent(ctx context.Context, eventId int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Pledge{}).
		Where("event_id = ? AND status <> ?", eventId, model.PledgeStatusCanceled).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// CountDistinctBackers 统计活动下未取消支持记录的支持者数量
func (r *PledgeRepository) CountDistinctBackers(ctx context.Context, eventId int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Pledge{}).
		Where("event_id = ? AND status <> ?", eventId, model.PledgeStatusCanceled).
		Distinct("backer_name").
		Count(&count).Error
	return count, err
}
