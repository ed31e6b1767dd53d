package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type purchaseGormRepository struct {
	db *gorm.DB
}

func NewPurchaseGormRepository(db *gorm.DB) repo.PurchaseRepository {
	return &purchaseGormRepository{db: db}
}

func (r *purchaseGormRepository) Create(ctx context.Context, p *model.Purchase) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return err
	}
	return nil
}

func (r *purchaseGormRepository) FindByID(ctx context.Context, id int64) (model.Purchase, error) {
	var p model.Purchase

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Purchase{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Purchase{}, err
	}
	return p, nil
}

// 購入番号で1件検索（重複チェック用）
func (r *purchaseGormRepository) FindByNumber(ctx context.Context, number string) (model.Purchase, bool, error) {
	var p model.Purchase

	err := r.db.WithContext(ctx).
		Where("purchase_number = ?", number).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Purchase{}, false, nil
	}
	if err != nil {
		return model.Purchase{}, false, err
	}
	return p, true, nil
}

func (r *purchaseGormRepository) List(ctx context.Context, f repo.PurchaseListFilter) ([]model.Purchase, error) {
	q := r.db.WithContext(ctx).Model(&model.Purchase{})

	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.PurchaseNumber != "" {
		q = q.Where("purchase_number = ?", f.PurchaseNumber)
	}

	//新しい順
	q = q.Order("created_at DESC, id DESC")

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	q = q.Limit(limit).Offset(f.Skip)

	var purchases []model.Purchase
	if err := q.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
