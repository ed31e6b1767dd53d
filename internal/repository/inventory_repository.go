package repository

import (
	"app/internal/domain/model"
	"context"

	"github.com/shopspring/decimal"
)

// 在庫サマリ（Projection）の約束。書き込みはTransaction経由のみ。
type InventoryRepository interface {
	FindByProduct(ctx context.Context, productID int64) (model.Inventory, error)

	//行がなければ数量0で作成。あれば何もしない。
	EnsureRow(ctx context.Context, productID int64) error

	//入庫: current += qty、last_inbound_atを更新
	IncreaseStock(ctx context.Context, productID int64, qty decimal.Decimal) error

	//出庫: 在庫が足りるときだけ current -= qty。
	//チェックと減算を1文のUPDATEで行い、同時出庫の取りすぎを防ぐ。
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty decimal.Decimal) (bool, error)

	//修復用: currentを指定値で上書き（台帳から再計算した値を入れる）
	SetCurrent(ctx context.Context, productID int64, qty decimal.Decimal) error
}
