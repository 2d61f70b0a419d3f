// internal/service/escrow_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bidflow/internal/commission"
	"bidflow/internal/domain"
	"bidflow/internal/notify"
	"bidflow/internal/repository"
	"bidflow/internal/util"
	"bidflow/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowService reserves and releases bidder funds. A hold always covers
// the bid plus the buyer premium; the winning bidder's hold is never
// released here, it is consumed by the settlement engine.
//
// Release owns its own transaction and emits events after the commit.
// HoldFunds and ReleaseFunds are the raw movements on a caller-supplied
// executor, for flows (bid placement) that need the hold swap inside one
// transaction with other writes; the caller emits events after its own
// commit.
type EscrowService interface {
	// Release refunds whatever amount is actually on hold for
	// (listing, bidder). Releasing a non-existent hold is a logged no-op:
	// refunds must be idempotent against double-calls.
	Release(ctx context.Context, listingID, bidder, reason string) error

	// HoldFunds debits the bidder's wallet for bid + premium and records
	// the hold on the caller's executor. Fails with
	// util.ErrInsufficientBalance when the available balance does not
	// cover the total. The returned wallet is the pre-debit snapshot.
	HoldFunds(ctx context.Context, q repository.DBExecutor, listingID, bidder string, bidAmount decimal.Decimal) (*domain.EscrowHold, *domain.Wallet, error)
	// ReleaseFunds performs the refund on the caller's executor. A nil
	// hold in the result means there was nothing to release. The returned
	// wallet is the pre-credit snapshot.
	ReleaseFunds(ctx context.Context, q repository.DBExecutor, listingID, bidder, reason string) (*domain.EscrowHold, *domain.Wallet, error)
}

type escrowService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	holdRepo        repository.HoldRepository
	transactionRepo repository.TransactionRepository
	notifier        notify.Notifier
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	logger          *slog.Logger
}

// NewEscrowService creates a new instance of EscrowService.
func NewEscrowService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	holdRepo repository.HoldRepository,
	transactionRepo repository.TransactionRepository,
	notifier notify.Notifier,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) EscrowService {
	return &escrowService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		holdRepo:        holdRepo,
		transactionRepo: transactionRepo,
		notifier:        notifier,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		logger:          logger,
	}
}

// HoldFunds debits the bidder and records the hold on the caller's executor.
func (s *escrowService) HoldFunds(ctx context.Context, q repository.DBExecutor, listingID, bidder string, bidAmount decimal.Decimal) (*domain.EscrowHold, *domain.Wallet, error) {
	if bidAmount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidInput
	}
	total := commission.HoldTotal(bidAmount)

	wallet, err := s.walletRepo.GetWalletByOwner(ctx, q, bidder)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, nil, util.ErrInsufficientBalance
		}
		return nil, nil, fmt.Errorf("hold: failed to get wallet for bidder %s: %w", bidder, err)
	}
	if wallet.Balance.LessThan(total) {
		return nil, nil, util.ErrInsufficientBalance
	}

	// The conditional update re-checks the invariant atomically; the read
	// above only exists for the fast path and the previous-balance event.
	if err := s.walletRepo.AdjustBalance(ctx, q, bidder, total.Neg()); err != nil {
		return nil, nil, fmt.Errorf("hold: failed to debit bidder %s: %w", bidder, err)
	}

	hold := &domain.EscrowHold{
		ListingID: listingID,
		Bidder:    bidder,
		Amount:    total,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.holdRepo.CreateHold(ctx, q, hold); err != nil {
		return nil, nil, fmt.Errorf("hold: failed to record escrow hold: %w", err)
	}

	memo := fmt.Sprintf("bid %s + buyer premium %s", bidAmount.StringFixed(2), total.Sub(bidAmount).StringFixed(2))
	transaction := domain.NewTransaction(
		uuid.NewString(),
		domain.TransactionTypeBidHold,
		total,
		&bidder,
		nil,
		&listingID,
		nil,
		&memo,
	)
	if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, nil, fmt.Errorf("hold: failed to create ledger entry: %w", err)
	}

	return hold, wallet, nil
}

// Release refunds the held amount (the amount actually on hold, not the
// current bid) and removes the hold entry.
func (s *escrowService) Release(ctx context.Context, listingID, bidder, reason string) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("release: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("release: transaction controller does not implement DBExecutor")
	}

	hold, wallet, err := s.ReleaseFunds(ctx, txExecutor, listingID, bidder, reason)
	if err != nil {
		return err
	}
	if hold == nil {
		return nil
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("release: failed to commit transaction: %w", err)
	}

	s.notifier.BidRefunded(ctx, bidder, hold.Amount, reason)
	s.notifier.BalanceUpdated(ctx, bidder, wallet.Role, wallet.Balance, wallet.Balance.Add(hold.Amount), "bid_refund")
	return nil
}

// ReleaseFunds refunds an outstanding hold on the caller's executor.
func (s *escrowService) ReleaseFunds(ctx context.Context, q repository.DBExecutor, listingID, bidder, reason string) (*domain.EscrowHold, *domain.Wallet, error) {
	hold, err := s.holdRepo.GetHold(ctx, q, listingID, bidder)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			// Already refunded or consumed; double-calls are expected.
			s.logger.WarnContext(ctx, "Release called with no escrow hold",
				"listing_id", listingID, "bidder", bidder, "reason", reason)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("release: failed to get escrow hold: %w", err)
	}

	deleted, err := s.holdRepo.DeleteHold(ctx, q, listingID, bidder)
	if err != nil {
		return nil, nil, fmt.Errorf("release: failed to delete escrow hold: %w", err)
	}
	if !deleted {
		// A concurrent release got there first.
		return nil, nil, nil
	}

	wallet, err := s.walletRepo.GetWalletByOwner(ctx, q, bidder)
	if err != nil {
		return nil, nil, fmt.Errorf("release: failed to get wallet for bidder %s: %w", bidder, err)
	}
	if err := s.walletRepo.AdjustBalance(ctx, q, bidder, hold.Amount); err != nil {
		return nil, nil, fmt.Errorf("release: failed to credit bidder %s: %w", bidder, err)
	}

	memo := fmt.Sprintf("refund: %s", reason)
	transaction := domain.NewTransaction(
		uuid.NewString(),
		domain.TransactionTypeBidRefund,
		hold.Amount,
		nil,
		&bidder,
		&listingID,
		nil,
		&memo,
	)
	if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, nil, fmt.Errorf("release: failed to create ledger entry: %w", err)
	}

	return hold, wallet, nil
}
