package repository

import (
	"context"

	"app/internal/domain/model"
)

// 購入ヘッダの絞り込み条件。
type PurchaseListFilter struct {
	SupplierID     *int64
	PurchaseNumber string
	Skip           int
	Limit          int
}

type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	FindByID(ctx context.Context, id int64) (model.Purchase, error)

	//購入番号の重複チェック用
	FindByNumber(ctx context.Context, number string) (model.Purchase, bool, error)

	List(ctx context.Context, f PurchaseListFilter) ([]model.Purchase, error)
}
