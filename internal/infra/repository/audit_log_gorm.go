package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// 作成のみ。UPDATE/DELETEを発行するメソッドはこのリポジトリに存在しない。
func (r *auditLogGormRepository) Create(ctx context.Context, log *model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return err
	}
	return nil
}

func (r *auditLogGormRepository) FindByID(ctx context.Context, id int64) (model.AuditLog, error) {
	var log model.AuditLog

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&log).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AuditLog{}, repo.ErrNotFound
	}
	if err != nil {
		return model.AuditLog{}, err
	}
	return log, nil
}

func applyAuditFilter(q *gorm.DB, filter repo.AuditLogFilter) *gorm.DB {
	if filter.ActorKind != nil {
		q = q.Where("actor_kind = ?", *filter.ActorKind)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.LogTypeID != nil {
		q = q.Where("log_type_id = ?", *filter.LogTypeID)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", *filter.CreatedTo)
	}
	return q
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := applyAuditFilter(r.db.WithContext(ctx).Model(&model.AuditLog{}), filter)

	//新しい順
	q = q.Order("id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	q = q.Limit(limit).Offset(filter.Skip)

	var logs []model.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogGormRepository) Count(ctx context.Context, filter repo.AuditLogFilter) (int64, error) {
	q := applyAuditFilter(r.db.WithContext(ctx).Model(&model.AuditLog{}), filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
