package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	transactions repo.TransactionRepository
	inventory    repo.InventoryRepository
	purchases    repo.PurchaseRepository
	products     repo.ProductRepository
}

func (r *txReposGorm) Transactions() repo.TransactionRepository { return r.transactions }
func (r *txReposGorm) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txReposGorm) Purchases() repo.PurchaseRepository       { return r.purchases }
func (r *txReposGorm) Products() repo.ProductRepository         { return r.products }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがエラーなら全ロールバック。台帳の追記と在庫サマリの更新が
// 片方だけ残る状態を観測させない。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			transactions: NewTransactionGormRepository(tx),
			inventory:    NewInventoryGormRepository(tx),
			purchases:    NewPurchaseGormRepository(tx),
			products:     NewProductGormRepository(tx),
		}
		return fn(r)
	})
}
