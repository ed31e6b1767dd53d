package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseUsecase struct {
	txManager       repo.TransactionManager
	purchaseRepo    repo.PurchaseRepository
	transactionRepo repo.TransactionRepository
	recorder        *AuditRecorder
}

// DI
func NewPurchaseUsecase(
	txManager repo.TransactionManager,
	purchaseRepo repo.PurchaseRepository,
	transactionRepo repo.TransactionRepository,
	recorder *AuditRecorder,
) *PurchaseUsecase {
	return &PurchaseUsecase{
		txManager:       txManager,
		purchaseRepo:    purchaseRepo,
		transactionRepo: transactionRepo,
		recorder:        recorder,
	}
}

type CreateHeaderInput struct {
	PurchaseNumber string
	SupplierID     int64
	Store          string
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Discount       decimal.Decimal
	Note           string
}

// 購入ヘッダを作成する。合計はサーバ側で subtotal + tax - discount を計算する。
// 購入番号の省略時は衝突しない番号を生成する。
func (u *PurchaseUsecase) CreateHeader(ctx context.Context, userID int64, in CreateHeaderInput) (model.Purchase, error) {
	if userID <= 0 {
		return model.Purchase{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Subtotal.IsNegative() || in.Tax.IsNegative() || in.Discount.IsNegative() {
		return model.Purchase{}, NewHTTPError(http.StatusBadRequest, "amounts must be >= 0")
	}

	total := in.Subtotal.Add(in.Tax).Sub(in.Discount)
	if total.IsNegative() {
		return model.Purchase{}, NewHTTPError(http.StatusBadRequest, "total must be >= 0")
	}

	number := strings.TrimSpace(in.PurchaseNumber)
	if number == "" {
		number = "C-" + uuid.NewString()
	} else {
		_, exists, err := u.purchaseRepo.FindByNumber(ctx, number)
		if err != nil {
			return model.Purchase{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return model.Purchase{}, NewHTTPError(http.StatusBadRequest, "purchase number already exists")
		}
	}

	now := time.Now()
	p := model.Purchase{
		PurchaseNumber: number,
		SupplierID:     in.SupplierID,
		Store:          in.Store,
		Subtotal:       in.Subtotal,
		Tax:            in.Tax,
		Discount:       in.Discount,
		Total:          total,
		Note:           in.Note,
		UserID:         userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.purchaseRepo.Create(ctx, &p); err != nil {
		//一意制約に先を越された場合もここに落ちる
		return model.Purchase{}, NewHTTPError(http.StatusBadRequest, "purchase number already exists")
	}

	u.recorder.Info(ctx, userID,
		fmt.Sprintf("purchase created: #%d number=%s total=%s", p.ID, p.PurchaseNumber, p.Total.String()))

	return p, nil
}

type PurchaseItemInput struct {
	ProductID int64
	Quantity  decimal.Decimal
	Note      string
}

// 購入明細のバッチ追加。全明細を1つのDBトランザクションで処理し、
// 1件でも失敗したら全件ロールバックする（部分適用は残さない）。
// 各明細は台帳のINBOUND 1行になる。
func (u *PurchaseUsecase) AddItems(ctx context.Context, userID int64, purchaseID int64, items []PurchaseItemInput) ([]model.Transaction, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if purchaseID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid purchase id")
	}
	if len(items) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "items required")
	}

	created := make([]model.Transaction, 0, len(items))

	err := u.txManager.WithinTx(ctx, func(r repo.TxRepos) error {
		purchase, err := r.Purchases().FindByID(ctx, purchaseID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "purchase not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//送信順に処理する
		for i, item := range items {
			if item.ProductID <= 0 {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("item %d: invalid product id", i))
			}
			if !item.Quantity.IsPositive() {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("item %d: quantity must be > 0", i))
			}

			product, err := r.Products().FindByID(ctx, item.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("item %d: product not found", i))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !product.IsActive {
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("item %d: product not found", i))
			}

			if err := r.Inventory().EnsureRow(ctx, item.ProductID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := r.Inventory().IncreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			note := item.Note
			if note == "" {
				note = fmt.Sprintf("purchase #%d", purchase.ID)
			}

			pid := purchase.ID
			now := time.Now()
			tx := model.Transaction{
				Kind:          model.MovementInbound,
				ProductID:     item.ProductID,
				Quantity:      item.Quantity,
				UserID:        userID,
				EffectiveDate: now,
				RecordedAt:    now,
				Note:          note,
				PurchaseID:    &pid,
			}
			if err := r.Transactions().Create(ctx, &tx); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			created = append(created, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.recorder.Info(ctx, userID,
		fmt.Sprintf("purchase items added: purchase=%d items=%d", purchaseID, len(created)))

	return created, nil
}

// 購入に紐づくINBOUND台帳行の一覧。
func (u *PurchaseUsecase) ListItems(ctx context.Context, purchaseID int64, skip, limit int) ([]model.Transaction, error) {
	if purchaseID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid purchase id")
	}
	if skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid skip")
	}

	if _, err := u.purchaseRepo.FindByID(ctx, purchaseID); err != nil {
		if err == repo.ErrNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "purchase not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	txs, err := u.transactionRepo.List(ctx, repo.TransactionFilter{
		PurchaseID: &purchaseID,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return txs, nil
}

func (u *PurchaseUsecase) GetHeader(ctx context.Context, purchaseID int64) (model.Purchase, error) {
	if purchaseID <= 0 {
		return model.Purchase{}, NewHTTPError(http.StatusBadRequest, "invalid purchase id")
	}

	p, err := u.purchaseRepo.FindByID(ctx, purchaseID)
	if err == repo.ErrNotFound {
		return model.Purchase{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Purchase{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type ListHeadersInput struct {
	SupplierID     *int64
	PurchaseNumber string
	Skip           int
	Limit          int
}

func (u *PurchaseUsecase) ListHeaders(ctx context.Context, in ListHeadersInput) ([]model.Purchase, error) {
	if in.Skip < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid skip")
	}

	purchases, err := u.purchaseRepo.List(ctx, repo.PurchaseListFilter{
		SupplierID:     in.SupplierID,
		PurchaseNumber: strings.TrimSpace(in.PurchaseNumber),
		Skip:           in.Skip,
		Limit:          in.Limit,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return purchases, nil
}
