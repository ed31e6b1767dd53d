package usecase_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newPurchaseUC(
	purchaseRepo *PurchaseRepoMock,
	txRepo *TransactionRepoMock,
	invRepo *InventoryRepoMock,
	prodRepo *ProductRepoMock,
) *usecase.PurchaseUsecase {
	tm := &fakeTxManager{repos: fakeTxRepos{
		transactions: txRepo,
		inventory:    invRepo,
		purchases:    purchaseRepo,
		products:     prodRepo,
	}}
	return usecase.NewPurchaseUsecase(tm, purchaseRepo, txRepo, newSilentRecorder())
}

func TestCreateHeader_TotalArithmetic(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	purchaseRepo.On("FindByNumber", mock.Anything, "C-001").
		Return(model.Purchase{}, false, nil)
	purchaseRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Purchase) bool {
		return p.Total.Equal(d("108.50"))
	})).Return(nil)

	uc := newPurchaseUC(purchaseRepo, new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	p, err := uc.CreateHeader(context.Background(), 1, usecase.CreateHeaderInput{
		PurchaseNumber: "C-001",
		Subtotal:       d("100.00"),
		Tax:            d("10.00"),
		Discount:       d("1.50"),
	})

	assert.NoError(t, err)
	assert.True(t, p.Total.Equal(d("108.50")))
	purchaseRepo.AssertExpectations(t)
}

func TestCreateHeader_NegativeTotalRejected(t *testing.T) {
	uc := newPurchaseUC(new(PurchaseRepoMock), new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.CreateHeader(context.Background(), 1, usecase.CreateHeaderInput{
		Subtotal: d("10"),
		Tax:      d("1"),
		Discount: d("20"),
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCreateHeader_NegativeComponentRejected(t *testing.T) {
	uc := newPurchaseUC(new(PurchaseRepoMock), new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.CreateHeader(context.Background(), 1, usecase.CreateHeaderInput{
		Subtotal: d("10"),
		Tax:      d("-1"),
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestCreateHeader_DuplicateNumberRejected(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	purchaseRepo.On("FindByNumber", mock.Anything, "C-001").
		Return(model.Purchase{ID: 1, PurchaseNumber: "C-001"}, true, nil)

	uc := newPurchaseUC(purchaseRepo, new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.CreateHeader(context.Background(), 1, usecase.CreateHeaderInput{
		PurchaseNumber: "C-001",
		Subtotal:       d("10"),
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Contains(t, he.Message, "already exists")
	purchaseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateHeader_GeneratesNumberWhenEmpty(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	purchaseRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Purchase) bool {
		return len(p.PurchaseNumber) > 2 && p.PurchaseNumber[:2] == "C-"
	})).Return(nil)

	uc := newPurchaseUC(purchaseRepo, new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	p, err := uc.CreateHeader(context.Background(), 1, usecase.CreateHeaderInput{
		Subtotal: d("10"),
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, p.PurchaseNumber)
	//番号未指定なら重複チェックのための問い合わせはしない
	purchaseRepo.AssertNotCalled(t, "FindByNumber", mock.Anything, mock.Anything)
}

func TestAddItems_EmptyBatchRejected(t *testing.T) {
	uc := newPurchaseUC(new(PurchaseRepoMock), new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.AddItems(context.Background(), 1, 1, nil)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestAddItems_AllOrNothingOnBadMiddleItem(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	txRepo := new(TransactionRepoMock)
	invRepo := new(InventoryRepoMock)
	prodRepo := new(ProductRepoMock)

	purchaseRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Purchase{ID: 5, PurchaseNumber: "C-005"}, nil)
	prodRepo.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, IsActive: true}, nil)
	//2番目の商品は存在しない
	prodRepo.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{}, repo.ErrNotFound)
	invRepo.On("EnsureRow", mock.Anything, int64(1)).Return(nil)
	invRepo.On("IncreaseStock", mock.Anything, int64(1), d("3")).Return(nil)
	txRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newPurchaseUC(purchaseRepo, txRepo, invRepo, prodRepo)

	created, err := uc.AddItems(context.Background(), 1, 5, []usecase.PurchaseItemInput{
		{ProductID: 1, Quantity: d("3")},
		{ProductID: 2, Quantity: d("4")},
	})

	//fnがエラーを返す = 実装ではDBトランザクションごとロールバックされる
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
	assert.Nil(t, created)
}

func TestAddItems_CreatesInboundRowsInOrder(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	txRepo := new(TransactionRepoMock)
	invRepo := new(InventoryRepoMock)
	prodRepo := new(ProductRepoMock)

	purchaseRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Purchase{ID: 5, PurchaseNumber: "C-005"}, nil)
	prodRepo.On("FindByID", mock.Anything, mock.Anything).
		Return(model.Product{ID: 1, IsActive: true}, nil)
	invRepo.On("EnsureRow", mock.Anything, mock.Anything).Return(nil)
	invRepo.On("IncreaseStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var seen []int64
	txRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		tx := args.Get(1).(*model.Transaction)
		seen = append(seen, tx.ProductID)
	}).Return(nil)

	uc := newPurchaseUC(purchaseRepo, txRepo, invRepo, prodRepo)

	created, err := uc.AddItems(context.Background(), 9, 5, []usecase.PurchaseItemInput{
		{ProductID: 3, Quantity: d("1")},
		{ProductID: 1, Quantity: d("2")},
		{ProductID: 2, Quantity: d("3")},
	})

	assert.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, seen)
	assert.Len(t, created, 3)

	for _, tx := range created {
		assert.Equal(t, model.MovementInbound, tx.Kind)
		assert.Equal(t, int64(9), tx.UserID)
		if assert.NotNil(t, tx.PurchaseID) {
			assert.Equal(t, int64(5), *tx.PurchaseID)
		}
	}
	//note省略時は購入参照が入る
	assert.Equal(t, "purchase #5", created[0].Note)
}

func TestAddItems_NonPositiveQuantityRejected(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	purchaseRepo.On("FindByID", mock.Anything, int64(5)).
		Return(model.Purchase{ID: 5}, nil)

	uc := newPurchaseUC(purchaseRepo, new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.AddItems(context.Background(), 1, 5, []usecase.PurchaseItemInput{
		{ProductID: 1, Quantity: d("0")},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestListItems_PurchaseNotFound(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	purchaseRepo.On("FindByID", mock.Anything, int64(77)).
		Return(model.Purchase{}, repo.ErrNotFound)

	uc := newPurchaseUC(purchaseRepo, new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.ListItems(context.Background(), 77, 0, 0)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestCreateHeader_DBConflictMapsTo400(t *testing.T) {
	purchaseRepo := new(PurchaseRepoMock)
	purchaseRepo.On("FindByNumber", mock.Anything, "C-001").
		Return(model.Purchase{}, false, nil)
	//一意制約違反で保存に失敗
	purchaseRepo.On("Create", mock.Anything, mock.Anything).
		Return(errors.New("duplicate key value violates unique constraint"))

	uc := newPurchaseUC(purchaseRepo, new(TransactionRepoMock), new(InventoryRepoMock), new(ProductRepoMock))

	_, err := uc.CreateHeader(context.Background(), 1, usecase.CreateHeaderInput{
		PurchaseNumber: "C-001",
		Subtotal:       d("10"),
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}
