package usecase_test

import (
	"context"
	"sync"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func newTransactionUC(
	txRepo *TransactionRepoMock,
	invRepo *InventoryRepoMock,
	prodRepo *ProductRepoMock,
) *usecase.TransactionUsecase {
	tm := &fakeTxManager{repos: fakeTxRepos{
		transactions: txRepo,
		inventory:    invRepo,
		products:     prodRepo,
	}}
	return usecase.NewTransactionUsecase(tm, txRepo, invRepo, prodRepo, newSilentRecorder())
}

func TestRecordMovement_UnknownKind(t *testing.T) {
	uc := newTransactionUC(new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.RecordMovement(context.Background(), 1, usecase.RecordMovementInput{
		Kind:      model.MovementKind("TRANSFER"),
		ProductID: 1,
		Quantity:  d("1"),
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestRecordMovement_NonPositiveQuantity(t *testing.T) {
	uc := newTransactionUC(new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	for _, qty := range []string{"0", "-3"} {
		_, err := uc.RecordMovement(context.Background(), 1, usecase.RecordMovementInput{
			Kind:      model.MovementInbound,
			ProductID: 1,
			Quantity:  d(qty),
		})

		he, ok := usecase.AsHTTPError(err)
		assert.True(t, ok)
		assert.Equal(t, 400, he.Status)
	}
}

func TestRecordMovement_ProductNotFound(t *testing.T) {
	prodRepo := new(ProductRepoMock)
	prodRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	uc := newTransactionUC(new(TransactionRepoMock), new(InventoryRepoMock), prodRepo)

	_, err := uc.RecordMovement(context.Background(), 1, usecase.RecordMovementInput{
		Kind:      model.MovementInbound,
		ProductID: 99,
		Quantity:  d("1"),
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestRecordMovement_Inbound(t *testing.T) {
	txRepo := new(TransactionRepoMock)
	invRepo := new(InventoryRepoMock)
	prodRepo := new(ProductRepoMock)

	prodRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, IsActive: true}, nil)
	invRepo.On("EnsureRow", mock.Anything, int64(1)).Return(nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(1), d("5")).Return(nil)
	txRepo.On("Create", mock.Anything, mock.MatchedBy(func(tx *model.Transaction) bool {
		return tx.Kind == model.MovementInbound &&
			tx.ProductID == 1 &&
			tx.Quantity.Equal(d("5")) &&
			tx.UserID == 7
	})).Return(nil)

	uc := newTransactionUC(txRepo, invRepo, prodRepo)

	created, err := uc.RecordMovement(context.Background(), 7, usecase.RecordMovementInput{
		Kind:      model.MovementInbound,
		ProductID: 1,
		Quantity:  d("5"),
		Note:      "restock",
	})

	assert.NoError(t, err)
	assert.Equal(t, model.MovementInbound, created.Kind)
	assert.False(t, created.RecordedAt.IsZero())
	txRepo.AssertExpectations(t)
	invRepo.AssertExpectations(t)
}

func TestRecordMovement_OutboundInsufficient(t *testing.T) {
	txRepo := new(TransactionRepoMock)
	invRepo := new(InventoryRepoMock)
	prodRepo := new(ProductRepoMock)

	prodRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, IsActive: true}, nil)
	invRepo.On("EnsureRow", mock.Anything, int64(1)).Return(nil)
	invRepo.On("DecreaseStockIfEnough", mock.Anything, int64(1), d("10")).Return(false, nil)
	invRepo.On("FindByProduct", mock.Anything, int64(1)).
		Return(model.Inventory{ProductID: 1, CurrentQty: d("3")}, nil)

	uc := newTransactionUC(txRepo, invRepo, prodRepo)

	_, err := uc.RecordMovement(context.Background(), 1, usecase.RecordMovementInput{
		Kind:      model.MovementOutbound,
		ProductID: 1,
		Quantity:  d("10"),
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Contains(t, he.Message, "insufficient stock")
	assert.Contains(t, he.Message, "3")
	//台帳への追記は起きない
	txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 条件付きUPDATEの意味をそのまま再現するfake。
// 同時出庫で残高がマイナスにならないことを確かめる。
type guardedInventory struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

func (g *guardedInventory) FindByProduct(ctx context.Context, productID int64) (model.Inventory, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.Inventory{ProductID: productID, CurrentQty: g.balance}, nil
}

func (g *guardedInventory) EnsureRow(ctx context.Context, productID int64) error { return nil }

func (g *guardedInventory) IncreaseStock(ctx context.Context, productID int64, qty decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balance = g.balance.Add(qty)
	return nil
}

func (g *guardedInventory) DecreaseStockIfEnough(ctx context.Context, productID int64, qty decimal.Decimal) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.balance.LessThan(qty) {
		return false, nil
	}
	g.balance = g.balance.Sub(qty)
	return true, nil
}

func (g *guardedInventory) SetCurrent(ctx context.Context, productID int64, qty decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balance = qty
	return nil
}

func TestRecordMovement_ConcurrentOutboundNeverOverdraws(t *testing.T) {
	inv := &guardedInventory{balance: d("10")}

	txRepo := new(TransactionRepoMock)
	txRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	prodRepo := new(ProductRepoMock)
	prodRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, IsActive: true}, nil)

	tm := &fakeTxManager{repos: fakeTxRepos{
		transactions: txRepo,
		inventory:    inv,
		products:     prodRepo,
	}}
	uc := usecase.NewTransactionUsecase(tm, txRepo, inv, prodRepo, newSilentRecorder())

	//在庫10に対して3ずつ20本の同時出庫 → 成功はちょうど3本
	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RecordMovement(context.Background(), 1, usecase.RecordMovementInput{
				Kind:      model.MovementOutbound,
				ProductID: 1,
				Quantity:  d("3"),
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	assert.True(t, inv.balance.Equal(d("1")), "balance = %s", inv.balance)
	assert.False(t, inv.balance.IsNegative())
}

func TestCurrentStock(t *testing.T) {
	txRepo := new(TransactionRepoMock)
	prodRepo := new(ProductRepoMock)

	prodRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, MinStock: d("5"), IsActive: true}, nil)
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementInbound).Return(d("12.5"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementOutbound).Return(d("9"), nil)

	uc := newTransactionUC(txRepo, new(InventoryRepoMock), prodRepo)

	out, err := uc.CurrentStock(context.Background(), 1)

	assert.NoError(t, err)
	assert.True(t, out.CurrentQty.Equal(d("3.5")))
	assert.True(t, out.IsLow)
}

func TestRecomputeProjection_RepairsDrift(t *testing.T) {
	txRepo := new(TransactionRepoMock)
	invRepo := new(InventoryRepoMock)
	prodRepo := new(ProductRepoMock)

	prodRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, IsActive: true}, nil)
	invRepo.On("EnsureRow", mock.Anything, int64(1)).Return(nil)
	//サマリは7でずれている
	invRepo.On("FindByProduct", mock.Anything, int64(1)).
		Return(model.Inventory{ProductID: 1, CurrentQty: d("7")}, nil)
	//台帳の真値は4
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementInbound).Return(d("10"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementOutbound).Return(d("6"), nil)
	invRepo.On("SetCurrent", mock.Anything, int64(1), d("4")).Return(nil)

	uc := newTransactionUC(txRepo, invRepo, prodRepo)

	out, err := uc.RecomputeProjection(context.Background(), 1, 1)

	assert.NoError(t, err)
	assert.True(t, out.Before.Equal(d("7")))
	assert.True(t, out.After.Equal(d("4")))
	assert.True(t, out.WasDrifted)
	invRepo.AssertExpectations(t)
}

func TestLowStockReport_SortedAscending(t *testing.T) {
	txRepo := new(TransactionRepoMock)
	prodRepo := new(ProductRepoMock)

	prodRepo.On("ListActive", mock.Anything).Return([]model.Product{
		{ID: 1, Code: "A", Name: "alpha", MinStock: d("10")},
		{ID: 2, Code: "B", Name: "beta", MinStock: d("10")},
		{ID: 3, Code: "C", Name: "gamma", MinStock: d("1")},
	}, nil)

	//1は残5、2は残2、3は十分
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementInbound).Return(d("5"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementOutbound).Return(d("0"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(2), model.MovementInbound).Return(d("2"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(2), model.MovementOutbound).Return(d("0"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(3), model.MovementInbound).Return(d("9"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(3), model.MovementOutbound).Return(d("1"), nil)

	uc := newTransactionUC(txRepo, new(InventoryRepoMock), prodRepo)

	items, err := uc.LowStockReport(context.Background(), decimal.Zero)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ProductID)
	assert.Equal(t, int64(1), items[1].ProductID)
}

func TestLowStockReport_ExplicitThresholdOverridesMinStock(t *testing.T) {
	txRepo := new(TransactionRepoMock)
	prodRepo := new(ProductRepoMock)

	prodRepo.On("ListActive", mock.Anything).Return([]model.Product{
		{ID: 1, Code: "A", Name: "alpha", MinStock: d("10")},
	}, nil)
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementInbound).Return(d("5"), nil)
	txRepo.On("SumByKind", mock.Anything, int64(1), model.MovementOutbound).Return(d("0"), nil)

	uc := newTransactionUC(txRepo, new(InventoryRepoMock), prodRepo)

	//閾値3ならMinStock=10でも残5は低在庫扱いしない
	items, err := uc.LowStockReport(context.Background(), d("3"))

	assert.NoError(t, err)
	assert.Empty(t, items)
}
