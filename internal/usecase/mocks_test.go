package usecase_test

import (
	"context"
	"io"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type TransactionRepoMock struct{ mock.Mock }

func (m *TransactionRepoMock) Create(ctx context.Context, tx *model.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *TransactionRepoMock) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(model.Transaction)
	return t, args.Error(1)
}

func (m *TransactionRepoMock) List(ctx context.Context, filter repo.TransactionFilter) ([]model.Transaction, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.Transaction)
	return items, args.Error(1)
}

func (m *TransactionRepoMock) SumByKind(ctx context.Context, productID int64, kind model.MovementKind) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, kind)
	d, _ := args.Get(0).(decimal.Decimal)
	return d, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) FindByProduct(ctx context.Context, productID int64) (model.Inventory, error) {
	args := m.Called(ctx, productID)
	inv, _ := args.Get(0).(model.Inventory)
	return inv, args.Error(1)
}

func (m *InventoryRepoMock) EnsureRow(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty decimal.Decimal) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty decimal.Decimal) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) SetCurrent(ctx context.Context, productID int64, qty decimal.Decimal) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByCode(ctx context.Context, code string) (model.Product, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListActive(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

type PurchaseRepoMock struct{ mock.Mock }

func (m *PurchaseRepoMock) Create(ctx context.Context, p *model.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PurchaseRepoMock) FindByID(ctx context.Context, id int64) (model.Purchase, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Purchase)
	return p, args.Error(1)
}

func (m *PurchaseRepoMock) FindByNumber(ctx context.Context, number string) (model.Purchase, bool, error) {
	args := m.Called(ctx, number)
	p, _ := args.Get(0).(model.Purchase)
	return p, args.Bool(1), args.Error(2)
}

func (m *PurchaseRepoMock) List(ctx context.Context, f repo.PurchaseListFilter) ([]model.Purchase, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Purchase)
	return items, args.Error(1)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) Create(ctx context.Context, log *model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepoMock) FindByID(ctx context.Context, id int64) (model.AuditLog, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(model.AuditLog)
	return l, args.Error(1)
}

func (m *AuditLogRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

func (m *AuditLogRepoMock) Count(ctx context.Context, filter repo.AuditLogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type LogTypeRepoMock struct{ mock.Mock }

func (m *LogTypeRepoMock) FindByID(ctx context.Context, id int64) (model.LogType, error) {
	args := m.Called(ctx, id)
	lt, _ := args.Get(0).(model.LogType)
	return lt, args.Error(1)
}

func (m *LogTypeRepoMock) FindByName(ctx context.Context, name model.LogTypeName) (model.LogType, error) {
	args := m.Called(ctx, name)
	lt, _ := args.Get(0).(model.LogType)
	return lt, args.Error(1)
}

func (m *LogTypeRepoMock) ListActive(ctx context.Context) ([]model.LogType, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.LogType)
	return items, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpdateLastLogin(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// Tx周りのfake
// =====================

// WithinTxを素通しするfake。commit/rollbackの代わりに
// fnのエラーをそのまま返す。
type fakeTxManager struct {
	repos fakeTxRepos
}

type fakeTxRepos struct {
	transactions repo.TransactionRepository
	inventory    repo.InventoryRepository
	purchases    repo.PurchaseRepository
	products     repo.ProductRepository
}

func (r fakeTxRepos) Transactions() repo.TransactionRepository { return r.transactions }
func (r fakeTxRepos) Inventory() repo.InventoryRepository      { return r.inventory }
func (r fakeTxRepos) Purchases() repo.PurchaseRepository       { return r.purchases }
func (r fakeTxRepos) Products() repo.ProductRepository         { return r.products }

func (tm *fakeTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(tm.repos)
}

// 監査ログの書き込みを握りつぶすrecorder（本処理の検証に集中する用）
func newSilentRecorder() *usecase.AuditRecorder {
	auditRepo := new(AuditLogRepoMock)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	typeRepo := new(LogTypeRepoMock)
	typeRepo.On("FindByName", mock.Anything, mock.Anything).
		Return(model.LogType{ID: 1, Name: model.LogTypeInfo, IsActive: true}, nil).Maybe()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return usecase.NewAuditRecorder(auditRepo, typeRepo, logger)
}
