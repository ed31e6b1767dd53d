package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type logTypeGormRepository struct {
	db *gorm.DB
}

func NewLogTypeGormRepository(db *gorm.DB) repo.LogTypeRepository {
	return &logTypeGormRepository{db: db}
}

func (r *logTypeGormRepository) FindByID(ctx context.Context, id int64) (model.LogType, error) {
	var lt model.LogType

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&lt).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.LogType{}, repo.ErrNotFound
	}
	if err != nil {
		return model.LogType{}, err
	}
	return lt, nil
}

func (r *logTypeGormRepository) FindByName(ctx context.Context, name model.LogTypeName) (model.LogType, error) {
	var lt model.LogType

	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&lt).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.LogType{}, repo.ErrNotFound
	}
	if err != nil {
		return model.LogType{}, err
	}
	return lt, nil
}

func (r *logTypeGormRepository) ListActive(ctx context.Context) ([]model.LogType, error) {
	var types []model.LogType

	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&types).Error

	if err != nil {
		return nil, err
	}
	return types, nil
}
