// internal/service/auction_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bidflow/internal/domain"
	"bidflow/internal/notify"
	"bidflow/internal/repository"
	"bidflow/internal/util"
	"bidflow/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateListingInput carries the seller-supplied auction parameters.
type CreateListingInput struct {
	Seller        string
	Title         string
	StartingPrice decimal.Decimal
	MinIncrement  decimal.Decimal
	ReservePrice  *decimal.Decimal
	EndTime       time.Time
}

// AuctionService is the bidder- and seller-facing surface of the auction
// engine: listing creation, bid placement with the escrow outbid protocol,
// and pre-end cancellation.
type AuctionService interface {
	CreateListing(ctx context.Context, input CreateListingInput) (*domain.Listing, error)
	// PlaceBid validates and accepts a bid. The whole sequence runs in one
	// transaction under a row lock on the listing, so concurrent bids on
	// the same listing serialize: the previous leader's escrow hold is
	// released strictly before the new leader's hold is taken, and a
	// rejected hold rolls the release back with it.
	PlaceBid(ctx context.Context, listingID, bidder string, amount decimal.Decimal) (*domain.Bid, error)
	// CancelAuction is only legal while the auction is active and before
	// its end time. It refunds the current highest bidder only; earlier
	// bidders were already released when outbid. Retrying a cancellation
	// is safe and completes a refund an earlier attempt left behind.
	CancelAuction(ctx context.Context, listingID, by string) error
}

type auctionService struct {
	dbBeginner  db.DBTxBeginner
	dbExecutor  repository.DBExecutor
	listingRepo repository.ListingRepository
	escrow      EscrowService
	notifier    notify.Notifier
	beginTx     db.BeginTxFunc
	commitTx    db.CommitTxFunc
	rollbackTx  db.RollbackTxFunc
	logger      *slog.Logger
}

// NewAuctionService creates a new instance of AuctionService.
func NewAuctionService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	listingRepo repository.ListingRepository,
	escrow EscrowService,
	notifier notify.Notifier,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) AuctionService {
	return &auctionService{
		dbBeginner:  dbBeginner,
		dbExecutor:  dbExecutor,
		listingRepo: listingRepo,
		escrow:      escrow,
		notifier:    notifier,
		beginTx:     beginTx,
		commitTx:    commitTx,
		rollbackTx:  rollbackTx,
		logger:      logger,
	}
}

// CreateListing validates and persists a new active auction listing.
func (s *auctionService) CreateListing(ctx context.Context, input CreateListingInput) (*domain.Listing, error) {
	if input.Seller == "" || input.Title == "" {
		return nil, util.ErrInvalidInput
	}
	if input.StartingPrice.LessThanOrEqual(decimal.Zero) || input.MinIncrement.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}
	if input.ReservePrice != nil && input.ReservePrice.LessThan(input.StartingPrice) {
		return nil, util.ErrInvalidInput
	}
	if !input.EndTime.After(time.Now().UTC()) {
		return nil, util.ErrInvalidInput
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:            uuid.NewString(),
		Seller:        input.Seller,
		Title:         input.Title,
		Status:        domain.ListingStatusActive,
		StartingPrice: input.StartingPrice,
		MinIncrement:  input.MinIncrement,
		EndTime:       input.EndTime.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.ReservePrice != nil {
		listing.ReservePrice = decimal.NewNullDecimal(*input.ReservePrice)
	}

	if err := s.listingRepo.CreateListing(ctx, s.dbExecutor, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return listing, nil
}

// PlaceBid accepts a bid on an active auction.
func (s *auctionService) PlaceBid(ctx context.Context, listingID, bidder string, amount decimal.Decimal) (*domain.Bid, error) {
	if bidder == "" || amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("place bid: transaction controller does not implement DBExecutor")
	}

	// The row lock serializes concurrent bids on this listing. Everything
	// below — validation, the leader swap, the bid append — sees and
	// produces a consistent leader.
	listing, err := s.listingRepo.GetListingForUpdate(ctx, txExecutor, listingID)
	if err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}
	if listing.Status != domain.ListingStatusActive {
		return nil, util.ErrAuctionNotActive
	}
	now := time.Now().UTC()
	if !now.Before(listing.EndTime) {
		return nil, util.ErrAuctionEnded
	}
	if bidder == listing.Seller {
		return nil, util.ErrSelfBid
	}

	minAcceptable := listing.StartingPrice
	if listing.HighestBid.Valid {
		minAcceptable = listing.HighestBid.Decimal.Add(listing.MinIncrement)
	}
	if amount.LessThan(minAcceptable) {
		return nil, util.ErrBidTooLow
	}

	// Outbid protocol: the superseded leader's hold is released before the
	// new hold is taken. Both run on this transaction, so a failed hold
	// rolls the release back too and the leader keeps their position. A
	// leader raising their own bid gets their current hold credited back
	// before the larger one is debited.
	var prevLeader string
	var reason string
	var released *domain.EscrowHold
	var releasedWallet *domain.Wallet
	if listing.HighestBidder != nil {
		prevLeader = *listing.HighestBidder
		reason = "outbid"
		if prevLeader == bidder {
			reason = "raised own bid"
		}
		released, releasedWallet, err = s.escrow.ReleaseFunds(ctx, txExecutor, listingID, prevLeader, reason)
		if err != nil {
			return nil, fmt.Errorf("place bid: failed to release previous leader: %w", err)
		}
	}

	hold, bidderWallet, err := s.escrow.HoldFunds(ctx, txExecutor, listingID, bidder, amount)
	if err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}

	bid := &domain.Bid{
		ListingID: listingID,
		Bidder:    bidder,
		Amount:    amount,
		CreatedAt: now,
	}
	if err := s.listingRepo.AppendBid(ctx, txExecutor, bid); err != nil {
		return nil, fmt.Errorf("place bid: failed to append bid: %w", err)
	}
	if err := s.listingRepo.UpdateLeader(ctx, txExecutor, listingID, bidder, amount); err != nil {
		return nil, fmt.Errorf("place bid: failed to update leader: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("place bid: failed to commit transaction: %w", err)
	}

	if released != nil && prevLeader != bidder {
		s.notifier.BidRefunded(ctx, prevLeader, released.Amount, reason)
		s.notifier.BalanceUpdated(ctx, prevLeader, releasedWallet.Role,
			releasedWallet.Balance, releasedWallet.Balance.Add(released.Amount), "bid_refund")
	}
	s.notifier.BalanceUpdated(ctx, bidder, bidderWallet.Role,
		bidderWallet.Balance, bidderWallet.Balance.Sub(hold.Amount), "bid_hold")

	return bid, nil
}

// CancelAuction cancels an active auction before its end time.
func (s *auctionService) CancelAuction(ctx context.Context, listingID, by string) error {
	listing, err := s.listingRepo.GetListingByID(ctx, s.dbExecutor, listingID)
	if err != nil {
		return fmt.Errorf("cancel auction: %w", err)
	}
	if listing.Status == domain.ListingStatusCancelled {
		// An earlier cancellation may have flipped the status and then
		// failed before the refund. Release is a no-op when the hold is
		// already gone, so retrying always converges.
		return s.refundOnCancel(ctx, listing)
	}
	if listing.Status != domain.ListingStatusActive {
		return util.ErrAuctionNotActive
	}
	if !time.Now().UTC().Before(listing.EndTime) {
		return util.ErrAuctionEnded
	}

	matched, err := s.listingRepo.UpdateStatusIf(ctx, s.dbExecutor, listingID,
		domain.ListingStatusActive, domain.ListingStatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel auction: %w", err)
	}
	if !matched {
		return util.ErrAuctionNotActive
	}

	if err := s.refundOnCancel(ctx, listing); err != nil {
		return err
	}

	s.notifier.AuctionCancelled(ctx, listingID, by)
	return nil
}

// refundOnCancel releases the current highest bidder's hold. Only the
// leader holds funds; earlier bidders were released when outbid.
func (s *auctionService) refundOnCancel(ctx context.Context, listing *domain.Listing) error {
	if listing.HighestBidder == nil {
		return nil
	}
	if err := s.escrow.Release(ctx, listing.ID, *listing.HighestBidder, "auction_cancelled"); err != nil {
		return fmt.Errorf("cancel auction: failed to refund highest bidder: %w", err)
	}
	return nil
}
