package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) FindByProduct(ctx context.Context, productID int64) (model.Inventory, error) {
	var inv model.Inventory

	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&inv).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Inventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

// 行がなければ数量0で作る
func (r *InventoryGormRepository) EnsureRow(ctx context.Context, productID int64) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	inv := model.Inventory{
		ProductID:    productID,
		CurrentQty:   decimal.Zero,
		ReservedQty:  decimal.Zero,
		AvailableQty: decimal.Zero,
		UpdatedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).Create(&inv).Error
}

// 入庫: current += qty
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, qty decimal.Decimal) error {
	now := time.Now()

	res := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"current_qty": gorm.Expr("current_qty + ?", qty),
			//UPDATE内の式は更新前の行の値を見るので、同じ文で導出列も直せる
			"available_qty":   gorm.Expr("current_qty + ? - reserved_qty", qty),
			"last_inbound_at": now,
			"updated_at":      now,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 出庫: 在庫が足りるときだけ減らす。
// チェックと減算をWHERE付きUPDATE1文で行うため、
// 同時リクエストが古い値を見て両方通ることはない。
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, qty decimal.Decimal) (bool, error) {
	now := time.Now()

	res := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("product_id = ? AND current_qty >= ?", productID, qty).
		Updates(map[string]interface{}{
			"current_qty":      gorm.Expr("current_qty - ?", qty),
			"available_qty":    gorm.Expr("current_qty - ? - reserved_qty", qty),
			"last_outbound_at": now,
			"updated_at":       now,
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 修復用: 台帳から再計算した値で上書き
func (r *InventoryGormRepository) SetCurrent(ctx context.Context, productID int64, qty decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&model.Inventory{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"current_qty":   qty,
			"available_qty": gorm.Expr("? - reserved_qty", qty),
			"updated_at":    time.Now(),
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
