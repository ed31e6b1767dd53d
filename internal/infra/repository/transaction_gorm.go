package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionGormRepository struct {
	db *gorm.DB
}

func NewTransactionGormRepository(db *gorm.DB) repo.TransactionRepository {
	return &transactionGormRepository{db: db}
}

// 台帳への追記。更新・削除のメソッドは実装しない。
func (r *transactionGormRepository) Create(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return err
	}
	return nil
}

func (r *transactionGormRepository) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	var t model.Transaction

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&t).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func (r *transactionGormRepository) List(ctx context.Context, filter repo.TransactionFilter) ([]model.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})

	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != nil {
		q = q.Where("kind = ?", *filter.Kind)
	}
	if filter.PurchaseID != nil {
		q = q.Where("purchase_id = ?", *filter.PurchaseID)
	}

	//取引日の新しい順
	q = q.Order("effective_date DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	q = q.Limit(limit).Offset(filter.Skip)

	var txs []model.Transaction
	if err := q.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// 商品×種類の数量合計
func (r *transactionGormRepository) SumByKind(ctx context.Context, productID int64, kind model.MovementKind) (decimal.Decimal, error) {
	var total decimal.Decimal

	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("product_id = ? AND kind = ?", productID, kind).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error

	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
