package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type TransactionUsecase struct {
	txManager       repo.TransactionManager
	transactionRepo repo.TransactionRepository
	inventoryRepo   repo.InventoryRepository
	productRepo     repo.ProductRepository
	recorder        *AuditRecorder
}

// DI
func NewTransactionUsecase(
	txManager repo.TransactionManager,
	transactionRepo repo.TransactionRepository,
	inventoryRepo repo.InventoryRepository,
	productRepo repo.ProductRepository,
	recorder *AuditRecorder,
) *TransactionUsecase {
	return &TransactionUsecase{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		inventoryRepo:   inventoryRepo,
		productRepo:     productRepo,
		recorder:        recorder,
	}
}

type RecordMovementInput struct {
	Kind          model.MovementKind
	ProductID     int64
	Quantity      decimal.Decimal
	EffectiveDate *time.Time
	Note          string
}

// 在庫移動を1件記録する。
// 台帳への追記と在庫サマリの更新を同じDBトランザクションで行い、
// 片方だけ反映された状態を残さない。
func (u *TransactionUsecase) RecordMovement(ctx context.Context, userID int64, in RecordMovementInput) (model.Transaction, error) {
	if userID <= 0 {
		return model.Transaction{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	//種類は固定カタログ。未知の値は「存在しない種類」扱い。
	if !in.Kind.Valid() {
		return model.Transaction{}, NewHTTPError(http.StatusNotFound, "movement kind not found")
	}
	if in.ProductID <= 0 {
		return model.Transaction{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if !in.Quantity.IsPositive() {
		return model.Transaction{}, NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
	}

	effectiveDate := time.Now()
	if in.EffectiveDate != nil {
		effectiveDate = *in.EffectiveDate
	}

	var created model.Transaction

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		product, err := r.Products().FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !product.IsActive {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}

		if err := r.Inventory().EnsureRow(ctx, in.ProductID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		switch in.Kind {
		case model.MovementInbound:
			if err := r.Inventory().IncreaseStock(ctx, in.ProductID, in.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		case model.MovementOutbound:
			//チェックと減算を1文で。同時出庫でも取りすぎない。
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, in.ProductID, in.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				inv, err := r.Inventory().FindByProduct(ctx, in.ProductID)
				if err != nil {
					return NewHTTPError(http.StatusBadRequest, "insufficient stock")
				}
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("insufficient stock: current %s, requested %s",
						inv.CurrentQty.String(), in.Quantity.String()))
			}
		}

		created = model.Transaction{
			Kind:          in.Kind,
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			UserID:        userID,
			EffectiveDate: effectiveDate,
			RecordedAt:    time.Now(),
			Note:          in.Note,
		}
		if err := r.Transactions().Create(ctx, &created); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}

	//監査ログはcommit後のベストエフォート
	u.recorder.Info(ctx, userID,
		fmt.Sprintf("movement recorded: %s product=%d qty=%s", created.Kind, created.ProductID, created.Quantity.String()))

	return created, nil
}

type ListMovementsInput struct {
	ProductID *int64
	Kind      *model.MovementKind
	Skip      int
	Limit     int
}

func (u *TransactionUsecase) ListMovements(ctx context.Context, in ListMovementsInput) ([]model.Transaction, error) {
	if in.Skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid skip")
	}
	if in.Kind != nil && !in.Kind.Valid() {
		return nil, NewHTTPError(http.StatusNotFound, "movement kind not found")
	}

	txs, err := u.transactionRepo.List(ctx, repo.TransactionFilter{
		ProductID: in.ProductID,
		Kind:      in.Kind,
		Skip:      in.Skip,
		Limit:     in.Limit,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return txs, nil
}

func (u *TransactionUsecase) GetMovement(ctx context.Context, id int64) (model.Transaction, error) {
	if id <= 0 {
		return model.Transaction{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	tx, err := u.transactionRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Transaction{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Transaction{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return tx, nil
}

type StockOutput struct {
	ProductID    int64           `json:"product_id"`
	CurrentQty   decimal.Decimal `json:"current_qty"`
	AvailableQty decimal.Decimal `json:"available_qty"`
	MinStock     decimal.Decimal `json:"min_stock"`
	IsLow        bool            `json:"is_low"`
}

// 台帳から現在在庫を算出して返す。サマリ行ではなく台帳が正。
func (u *TransactionUsecase) CurrentStock(ctx context.Context, productID int64) (StockOutput, error) {
	if productID <= 0 {
		return StockOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return StockOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return StockOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	current, err := u.ledgerStock(ctx, productID)
	if err != nil {
		return StockOutput{}, err
	}

	return StockOutput{
		ProductID:    productID,
		CurrentQty:   current,
		AvailableQty: current,
		MinStock:     product.MinStock,
		IsLow:        current.LessThan(product.MinStock),
	}, nil
}

// SUM(INBOUND) - SUM(OUTBOUND)
func (u *TransactionUsecase) ledgerStock(ctx context.Context, productID int64) (decimal.Decimal, error) {
	inbound, err := u.transactionRepo.SumByKind(ctx, productID, model.MovementInbound)
	if err != nil {
		return decimal.Zero, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	outbound, err := u.transactionRepo.SumByKind(ctx, productID, model.MovementOutbound)
	if err != nil {
		return decimal.Zero, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return inbound.Sub(outbound), nil
}

type RecomputeOutput struct {
	ProductID  int64           `json:"product_id"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
	WasDrifted bool            `json:"was_drifted"`
}

// 在庫サマリを台帳から再計算して上書きする修復操作。
// 何度実行しても結果は同じ。
func (u *TransactionUsecase) RecomputeProjection(ctx context.Context, userID int64, productID int64) (RecomputeOutput, error) {
	if userID <= 0 {
		return RecomputeOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return RecomputeOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return RecomputeOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return RecomputeOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var out RecomputeOutput

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Inventory().EnsureRow(ctx, productID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		inv, err := r.Inventory().FindByProduct(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		inbound, err := r.Transactions().SumByKind(ctx, productID, model.MovementInbound)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outbound, err := r.Transactions().SumByKind(ctx, productID, model.MovementOutbound)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		truth := inbound.Sub(outbound)

		if err := r.Inventory().SetCurrent(ctx, productID, truth); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = RecomputeOutput{
			ProductID:  productID,
			Before:     inv.CurrentQty,
			After:      truth,
			WasDrifted: !inv.CurrentQty.Equal(truth),
		}
		return nil
	})
	if err != nil {
		return RecomputeOutput{}, err
	}

	if out.WasDrifted {
		u.recorder.SystemWarning(ctx,
			fmt.Sprintf("projection drift repaired: product=%d before=%s after=%s",
				productID, out.Before.String(), out.After.String()))
	}

	return out, nil
}

type LowStockItem struct {
	ProductID  int64           `json:"product_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	CurrentQty decimal.Decimal `json:"current_qty"`
	MinStock   decimal.Decimal `json:"min_stock"`
}

// 最低在庫を下回っているアクティブな商品の一覧。
// thresholdが正ならその値を全商品に適用し、ゼロなら各商品のMinStockを使う。
// 在庫数量の少ない順に返す。
func (u *TransactionUsecase) LowStockReport(ctx context.Context, threshold decimal.Decimal) ([]LowStockItem, error) {
	if threshold.IsNegative() {
		return nil, NewHTTPError(http.StatusBadRequest, "threshold must be >= 0")
	}

	products, err := u.productRepo.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := []LowStockItem{}
	for _, p := range products {
		current, err := u.ledgerStock(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		min := p.MinStock
		if threshold.IsPositive() {
			min = threshold
		}
		if current.LessThan(min) {
			items = append(items, LowStockItem{
				ProductID:  p.ID,
				Code:       p.Code,
				Name:       p.Name,
				CurrentQty: current,
				MinStock:   min,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CurrentQty.Equal(items[j].CurrentQty) {
			return items[i].CurrentQty.LessThan(items[j].CurrentQty)
		}
		return items[i].ProductID < items[j].ProductID
	})

	return items, nil
}
