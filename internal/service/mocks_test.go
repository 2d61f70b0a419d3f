// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"bidflow/internal/domain"
	"bidflow/internal/notify"
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

// testTxFuncs wires the stub controller into the service constructor
// signature.
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

// MockListingRepository is a mock implementation of repository.ListingRepository.
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) CreateListing(ctx context.Context, q repository.DBExecutor, listing *domain.Listing) error {
	args := m.Called(ctx, q, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetListingByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Listing, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) UpdateStatusIf(ctx context.Context, q repository.DBExecutor, id string, expected, next domain.ListingStatus) (bool, error) {
	args := m.Called(ctx, q, id, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockListingRepository) GetListingForUpdate(ctx context.Context, q repository.DBExecutor, id string) (*domain.Listing, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) UpdateLeader(ctx context.Context, q repository.DBExecutor, id string, bidder string, amount decimal.Decimal) error {
	args := m.Called(ctx, q, id, bidder, amount)
	return args.Error(0)
}

func (m *MockListingRepository) AppendBid(ctx context.Context, q repository.DBExecutor, bid *domain.Bid) error {
	args := m.Called(ctx, q, bid)
	return args.Error(0)
}

func (m *MockListingRepository) GetBidsByListingID(ctx context.Context, q repository.DBExecutor, listingID string) ([]domain.Bid, error) {
	args := m.Called(ctx, q, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bid), args.Error(1)
}

func (m *MockListingRepository) FindDueForSettlement(ctx context.Context, q repository.DBExecutor, now time.Time, staleThreshold time.Duration) ([]domain.Listing, error) {
	args := m.Called(ctx, q, now, staleThreshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByStatus(ctx context.Context, q repository.DBExecutor, status domain.ListingStatus, limit, offset int) ([]domain.Listing, error) {
	args := m.Called(ctx, q, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

// MockHoldRepository is a mock implementation of repository.HoldRepository.
type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) CreateHold(ctx context.Context, q repository.DBExecutor, hold *domain.EscrowHold) error {
	args := m.Called(ctx, q, hold)
	return args.Error(0)
}

func (m *MockHoldRepository) GetHold(ctx context.Context, q repository.DBExecutor, listingID, bidder string) (*domain.EscrowHold, error) {
	args := m.Called(ctx, q, listingID, bidder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EscrowHold), args.Error(1)
}

func (m *MockHoldRepository) DeleteHold(ctx context.Context, q repository.DBExecutor, listingID, bidder string) (bool, error) {
	args := m.Called(ctx, q, listingID, bidder)
	return args.Bool(0), args.Error(1)
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

// MockEscrowService is a mock implementation of EscrowService.
type MockEscrowService struct {
	mock.Mock
}

func (m *MockEscrowService) Release(ctx context.Context, listingID, bidder, reason string) error {
	args := m.Called(ctx, listingID, bidder, reason)
	return args.Error(0)
}

func (m *MockEscrowService) HoldFunds(ctx context.Context, q repository.DBExecutor, listingID, bidder string, bidAmount decimal.Decimal) (*domain.EscrowHold, *domain.Wallet, error) {
	args := m.Called(ctx, q, listingID, bidder, bidAmount)
	var hold *domain.EscrowHold
	if args.Get(0) != nil {
		hold = args.Get(0).(*domain.EscrowHold)
	}
	var wallet *domain.Wallet
	if args.Get(1) != nil {
		wallet = args.Get(1).(*domain.Wallet)
	}
	return hold, wallet, args.Error(2)
}

func (m *MockEscrowService) ReleaseFunds(ctx context.Context, q repository.DBExecutor, listingID, bidder, reason string) (*domain.EscrowHold, *domain.Wallet, error) {
	args := m.Called(ctx, q, listingID, bidder, reason)
	var hold *domain.EscrowHold
	if args.Get(0) != nil {
		hold = args.Get(0).(*domain.EscrowHold)
	}
	var wallet *domain.Wallet
	if args.Get(1) != nil {
		wallet = args.Get(1).(*domain.Wallet)
	}
	return hold, wallet, args.Error(2)
}

// MockSettlementService is a mock implementation of SettlementService.
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) ProcessEndedAuction(ctx context.Context, listingID string) (*SettlementResult, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SettlementResult), args.Error(1)
}

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

var _ notify.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) OrderCreated(ctx context.Context, order *domain.Order) {
	m.Called(ctx, order)
}

func (m *MockNotifier) AuctionEnded(ctx context.Context, listingID string, winner *string, finalBid *decimal.Decimal) {
	m.Called(ctx, listingID, winner, finalBid)
}

func (m *MockNotifier) AuctionReserveNotMet(ctx context.Context, listingID string, reservePrice, highBid decimal.Decimal) {
	m.Called(ctx, listingID, reservePrice, highBid)
}

func (m *MockNotifier) AuctionCancelled(ctx context.Context, listingID, by string) {
	m.Called(ctx, listingID, by)
}

func (m *MockNotifier) BalanceUpdated(ctx context.Context, owner string, role domain.WalletRole, previous, next decimal.Decimal, reason string) {
	m.Called(ctx, owner, role, previous, next, reason)
}

func (m *MockNotifier) BidRefunded(ctx context.Context, owner string, amount decimal.Decimal, reason string) {
	m.Called(ctx, owner, amount, reason)
}
