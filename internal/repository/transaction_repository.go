package repository

import (
	"context"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 台帳の絞り込み条件。
type TransactionFilter struct {
	ProductID  *int64
	Kind       *model.MovementKind
	PurchaseID *int64
	Skip       int
	Limit      int
}

// 在庫台帳の約束。追記と読み取りのみで、更新・削除は存在しない。
type TransactionRepository interface {
	//台帳に1行追記
	Create(ctx context.Context, tx *model.Transaction) error

	FindByID(ctx context.Context, id int64) (model.Transaction, error)

	//取引日の新しい順で一覧取得
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	//商品×種類ごとの数量合計。台帳が在庫の正であり、
	//SUM(INBOUND) - SUM(OUTBOUND) が正しい現在在庫になる。
	SumByKind(ctx context.Context, productID int64, kind model.MovementKind) (decimal.Decimal, error)
}
