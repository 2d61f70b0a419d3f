// internal/service/settlement_service.go
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

// Outcome classifies how a settlement attempt ended.
type Outcome string

const (
	OutcomeSold             Outcome = "sold"
	OutcomeNoBids           Outcome = "no_bids"
	OutcomeReserveNotMet    Outcome = "reserve_not_met"
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

// SettlementResult is returned by ProcessEndedAuction. AlreadyProcessed is
// not an error: it is the idempotent no-op outcome, covering both repeat
// calls on settled listings and losses of the status compare-and-swap.
type SettlementResult struct {
	AlreadyProcessed bool          `json:"already_processed"`
	Outcome          Outcome       `json:"outcome"`
	Order            *domain.Order `json:"order,omitempty"`
}

// SettlementService converts an ended auction into an order plus ledger
// transfers. All serialization comes from the conditional status update on
// the listing; multiple process instances may call this concurrently.
type SettlementService interface {
	ProcessEndedAuction(ctx context.Context, listingID string) (*SettlementResult, error)
}

type settlementService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	listingRepo     repository.ListingRepository
	walletRepo      repository.WalletRepository
	holdRepo        repository.HoldRepository
	transactionRepo repository.TransactionRepository
	orderRepo       repository.OrderRepository
	escrow          EscrowService
	notifier        notify.Notifier
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	logger          *slog.Logger
}

// NewSettlementService creates a new instance of SettlementService.
func NewSettlementService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	listingRepo repository.ListingRepository,
	walletRepo repository.WalletRepository,
	holdRepo repository.HoldRepository,
	transactionRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
	escrow EscrowService,
	notifier notify.Notifier,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) SettlementService {
	return &settlementService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		listingRepo:     listingRepo,
		walletRepo:      walletRepo,
		holdRepo:        holdRepo,
		transactionRepo: transactionRepo,
		orderRepo:       orderRepo,
		escrow:          escrow,
		notifier:        notifier,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		logger:          logger,
	}
}

// ProcessEndedAuction is the single idempotent settlement entry point.
// Request-triggered calls, the recovery sweeper, and operator re-arms all
// funnel through here.
func (s *settlementService) ProcessEndedAuction(ctx context.Context, listingID string) (*SettlementResult, error) {
	listing, err := s.listingRepo.GetListingByID(ctx, s.dbExecutor, listingID)
	if err != nil {
		return nil, fmt.Errorf("process ended auction: %w", err)
	}

	// Entry guard: a non-active listing was already claimed or finished.
	if listing.Status != domain.ListingStatusActive {
		return s.alreadyProcessed(ctx, listing), nil
	}

	if time.Now().UTC().Before(listing.EndTime) {
		return nil, util.ErrAuctionNotEnded
	}

	// The status field is the lock. Losing the compare-and-swap means
	// another caller claimed the settlement; that is not an error.
	claimed, err := s.listingRepo.UpdateStatusIf(ctx, s.dbExecutor, listingID,
		domain.ListingStatusActive, domain.ListingStatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("process ended auction: failed to claim listing %s: %w", listingID, err)
	}
	if !claimed {
		current, err := s.listingRepo.GetListingByID(ctx, s.dbExecutor, listingID)
		if err != nil {
			return nil, fmt.Errorf("process ended auction: %w", err)
		}
		return s.alreadyProcessed(ctx, current), nil
	}

	result, err := s.settle(ctx, listing)
	if err != nil {
		// Pin to error rather than back to active: an automatic retry loop
		// would likely fail the same way. The sweeper or an operator
		// re-arms the listing explicitly. The pin itself is conditional on
		// still holding the processing claim: if the claim went stale, was
		// re-armed, and another settler finished, their terminal status
		// stands and must not be overwritten.
		pinned, pinErr := s.listingRepo.UpdateStatusIf(ctx, s.dbExecutor, listingID,
			domain.ListingStatusProcessing, domain.ListingStatusError)
		switch {
		case pinErr != nil:
			s.logger.ErrorContext(ctx, "Failed to pin listing to error state",
				"listing_id", listingID, "error", pinErr)
		case !pinned:
			s.logger.WarnContext(ctx, "Listing left the processing state before the error pin; leaving its status untouched",
				"listing_id", listingID)
		default:
			s.logger.ErrorContext(ctx, "Settlement failed; listing pinned to error state",
				"listing_id", listingID, "error", err)
		}
		return nil, fmt.Errorf("settlement failed for listing %s: %w", listingID, err)
	}
	return result, nil
}

// alreadyProcessed builds the idempotent no-op result. When an order exists
// for the listing the order-created notification is re-emitted: delivery to
// the notifier is at-least-once, duplicate orders are never created.
func (s *settlementService) alreadyProcessed(ctx context.Context, listing *domain.Listing) *SettlementResult {
	result := &SettlementResult{
		AlreadyProcessed: true,
		Outcome:          outcomeForStatus(listing.Status),
	}
	order, err := s.orderRepo.GetOrderByListingID(ctx, s.dbExecutor, listing.ID)
	if err == nil {
		result.Order = order
		result.Outcome = OutcomeSold
		s.notifier.OrderCreated(ctx, order)
	} else if !util.IsError(err, util.ErrNotFound) {
		s.logger.ErrorContext(ctx, "Failed to look up order for settled listing",
			"listing_id", listing.ID, "error", err)
	}
	return result
}

func outcomeForStatus(status domain.ListingStatus) Outcome {
	switch status {
	case domain.ListingStatusSold:
		return OutcomeSold
	case domain.ListingStatusExpired:
		return OutcomeNoBids
	case domain.ListingStatusReserveNotMet:
		return OutcomeReserveNotMet
	default:
		return OutcomeAlreadyProcessed
	}
}

// closeOut moves a listing from processing to a terminal status. Like the
// sold transition, it only succeeds while the processing claim is still
// held; an unmatched update means the claim went stale and another settler
// took over.
func (s *settlementService) closeOut(ctx context.Context, listingID string, terminal domain.ListingStatus) error {
	marked, err := s.listingRepo.UpdateStatusIf(ctx, s.dbExecutor, listingID,
		domain.ListingStatusProcessing, terminal)
	if err != nil {
		return err
	}
	if !marked {
		return fmt.Errorf("processing claim on listing %s was lost before completion", listingID)
	}
	return nil
}

// settle runs with the processing claim held. Any error bubbles up to the
// caller, which pins the listing to the error state.
func (s *settlementService) settle(ctx context.Context, listing *domain.Listing) (*SettlementResult, error) {
	// The bid history is ground truth for winner and amount; the cached
	// leader fields only stand in when history rows are unavailable.
	bids, err := s.listingRepo.GetBidsByListingID(ctx, s.dbExecutor, listing.ID)
	if err != nil {
		return nil, err
	}

	var winner string
	var winningBid decimal.Decimal
	if len(bids) > 0 {
		top := bids[0]
		for _, b := range bids[1:] {
			if b.Amount.GreaterThan(top.Amount) {
				top = b
			}
		}
		winner, winningBid = top.Bidder, top.Amount
	} else if listing.HasValidBid() && listing.HighestBidder != nil && listing.HighestBid.Valid {
		winner, winningBid = *listing.HighestBidder, listing.HighestBid.Decimal
	}

	if winner == "" {
		if err := s.closeOut(ctx, listing.ID, domain.ListingStatusExpired); err != nil {
			return nil, err
		}
		s.notifier.AuctionEnded(ctx, listing.ID, nil, nil)
		return &SettlementResult{Outcome: OutcomeNoBids}, nil
	}

	if listing.ReservePrice.Valid && winningBid.LessThan(listing.ReservePrice.Decimal) {
		// Refund only the final highest bidder; everyone earlier was
		// already released when outbid.
		if err := s.escrow.Release(ctx, listing.ID, winner, "reserve_not_met"); err != nil {
			return nil, err
		}
		if err := s.closeOut(ctx, listing.ID, domain.ListingStatusReserveNotMet); err != nil {
			return nil, err
		}
		s.notifier.AuctionReserveNotMet(ctx, listing.ID, listing.ReservePrice.Decimal, winningBid)
		return &SettlementResult{Outcome: OutcomeReserveNotMet}, nil
	}

	order, err := s.transferToSeller(ctx, listing, winner, winningBid)
	if err != nil {
		return nil, err
	}

	s.notifier.AuctionEnded(ctx, listing.ID, &winner, &winningBid)
	s.notifier.OrderCreated(ctx, order)
	return &SettlementResult{Outcome: OutcomeSold, Order: order}, nil
}

// transferToSeller consumes the winner's escrow hold and disburses it in a
// single database transaction: seller earnings, platform fee, and the buyer
// premium all move together or not at all, so a crash mid-settlement leaves
// nothing partially applied and the retry re-derives every amount from the
// bid history.
func (s *settlementService) transferToSeller(ctx context.Context, listing *domain.Listing, winner string, winningBid decimal.Decimal) (*domain.Order, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	hold, err := s.holdRepo.GetHold(ctx, txExecutor, listing.ID, winner)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("winner %s has no escrow hold for listing %s", winner, listing.ID)
		}
		return nil, err
	}
	if hold.Amount.LessThan(winningBid) {
		return nil, fmt.Errorf("escrow hold %s is below the winning bid %s for listing %s",
			hold.Amount, winningBid, listing.ID)
	}
	if _, err := s.holdRepo.DeleteHold(ctx, txExecutor, listing.ID, winner); err != nil {
		return nil, err
	}

	// Auctions take a flat platform cut; seller tiers apply to fixed-price
	// sales only. The premium is whatever the hold carried beyond the bid,
	// so the consumed hold is disbursed to the cent.
	breakdown := commission.Auction(winningBid)
	premium := hold.Amount.Sub(winningBid)

	sellerWallet, err := s.walletRepo.EnsureWallet(ctx, txExecutor, listing.Seller, domain.WalletRoleSeller)
	if err != nil {
		return nil, err
	}
	platformWallet, err := s.walletRepo.EnsureWallet(ctx, txExecutor, domain.PlatformOwner, domain.WalletRolePlatform)
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.AdjustBalance(ctx, txExecutor, listing.Seller, breakdown.SellerEarnings); err != nil {
		return nil, fmt.Errorf("failed to credit seller %s: %w", listing.Seller, err)
	}
	platformTotal := breakdown.PlatformFee.Add(premium)
	if err := s.walletRepo.AdjustBalance(ctx, txExecutor, domain.PlatformOwner, platformTotal); err != nil {
		return nil, fmt.Errorf("failed to credit platform: %w", err)
	}

	order := &domain.Order{
		ID:             uuid.NewString(),
		ListingID:      listing.ID,
		Buyer:          winner,
		Seller:         listing.Seller,
		Price:          winningBid,
		SellerEarnings: breakdown.SellerEarnings,
		PlatformFee:    breakdown.PlatformFee,
		WasAuction:     true,
		FinalBid:       decimal.NewNullDecimal(winningBid),
		ShippingStatus: domain.ShippingStatusPending,
		PaymentStatus:  domain.PaymentStatusCompleted,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.orderRepo.CreateOrder(ctx, txExecutor, order); err != nil {
		return nil, err
	}

	saleMemo := fmt.Sprintf("auction sale, flat fee rate %s", commission.AuctionFeeRate.String())
	saleTx := domain.NewTransaction(uuid.NewString(), domain.TransactionTypeAuctionSale,
		breakdown.SellerEarnings, &winner, &listing.Seller, &listing.ID, &order.ID, &saleMemo)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, saleTx); err != nil {
		return nil, err
	}

	platformOwner := domain.PlatformOwner
	feeMemo := fmt.Sprintf("platform fee %s of winning bid %s", commission.AuctionFeeRate.String(), winningBid.StringFixed(2))
	feeTx := domain.NewTransaction(uuid.NewString(), domain.TransactionTypePlatformFee,
		breakdown.PlatformFee, &winner, &platformOwner, &listing.ID, &order.ID, &feeMemo)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, feeTx); err != nil {
		return nil, err
	}

	if premium.IsPositive() {
		premiumMemo := fmt.Sprintf("buyer premium %s held with the bid", commission.BuyerPremiumRate.String())
		premiumTx := domain.NewTransaction(uuid.NewString(), domain.TransactionTypeBuyerPremium,
			premium, &winner, &platformOwner, &listing.ID, &order.ID, &premiumMemo)
		if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, premiumTx); err != nil {
			return nil, err
		}
	}

	// Close out the claim inside the same transaction. An unmatched update
	// means the claim went stale, the sweeper re-armed the listing, and
	// another settler finished; rolling back here moves no money twice.
	marked, err := s.listingRepo.UpdateStatusIf(ctx, txExecutor, listing.ID,
		domain.ListingStatusProcessing, domain.ListingStatusSold)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, fmt.Errorf("processing claim on listing %s was lost before completion", listing.ID)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("failed to commit settlement transaction: %w", err)
	}

	s.notifier.BalanceUpdated(ctx, listing.Seller, domain.WalletRoleSeller,
		sellerWallet.Balance, sellerWallet.Balance.Add(breakdown.SellerEarnings), "auction_sale")
	s.notifier.BalanceUpdated(ctx, domain.PlatformOwner, domain.WalletRolePlatform,
		platformWallet.Balance, platformWallet.Balance.Add(platformTotal), "platform_fee")

	return order, nil
}
