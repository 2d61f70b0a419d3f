// internal/api/handler/mocks_test.go
package handler

import (
	"context"
	"database/sql"

	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// stubTxController satisfies both db.TxController and repository.DBExecutor
// so the injected transaction functions can hand it straight to the mocked
// repositories.
type stubTxController struct {
	committed  bool
	rolledBack bool
}

func (s *stubTxController) Commit() error {
	s.committed = true
	return nil
}

func (s *stubTxController) Rollback() error {
	if !s.committed {
		s.rolledBack = true
	}
	return nil
}

func (s *stubTxController) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (s *stubTxController) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

func (s *stubTxController) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (s *stubTxController) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return &sql.Row{}
}

func testTxFuncs(tx *stubTxController) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	begin := func(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
		return tx, nil
	}
	commit := func(t db.TxController) error {
		return t.Commit()
	}
	rollback := func(t db.TxController) { _ = t.Rollback() }
	return begin, commit, rollback
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByOwner(ctx context.Context, q repository.DBExecutor, owner string) (*domain.Wallet, error) {
	args := m.Called(ctx, q, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) EnsureWallet(ctx context.Context, q repository.DBExecutor, owner string, role domain.WalletRole) (*domain.Wallet, error) {
	args := m.Called(ctx, q, owner, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, owner string, delta decimal.Decimal) error {
	args := m.Called(ctx, q, owner, delta)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByOwner(ctx context.Context, q repository.DBExecutor, owner string, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, owner, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, q repository.DBExecutor, order *domain.Order) error {
	args := m.Called(ctx, q, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByListingID(ctx context.Context, q repository.DBExecutor, listingID string) (*domain.Order, error) {
	args := m.Called(ctx, q, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetSellerStats(ctx context.Context, q repository.DBExecutor, seller string) (int64, decimal.Decimal, error) {
	args := m.Called(ctx, q, seller)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Error(2)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decimalEq(expected string) interface{} {
	want := money(expected)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}
