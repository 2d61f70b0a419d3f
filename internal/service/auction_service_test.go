// internal/service/auction_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"bidflow/internal/domain"
	"bidflow/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type auctionFixture struct {
	listingRepo *MockListingRepository
	escrow      *MockEscrowService
	notifier    *MockNotifier
	tx          *stubTxController
	svc         AuctionService
}

func newAuctionFixture() *auctionFixture {
	f := &auctionFixture{
		listingRepo: new(MockListingRepository),
		escrow:      new(MockEscrowService),
		notifier:    new(MockNotifier),
		tx:          &stubTxController{},
	}
	begin, commit, rollback := testTxFuncs(f.tx)
	f.svc = NewAuctionService(nil, f.tx, f.listingRepo, f.escrow, f.notifier,
		begin, commit, rollback, util.GetLogger())
	return f
}

func activeListing(id, seller string) *domain.Listing {
	return &domain.Listing{
		ID:            id,
		Seller:        seller,
		Title:         "vintage camera",
		Status:        domain.ListingStatusActive,
		StartingPrice: money("10.00"),
		MinIncrement:  money("1.00"),
		EndTime:       time.Now().UTC().Add(time.Hour),
	}
}

func withLeader(l *domain.Listing, bidder string, amount string) *domain.Listing {
	l.HighestBidder = &bidder
	l.HighestBid = decimal.NewNullDecimal(money(amount))
	l.BidCount = 1
	l.HasBid = true
	return l
}

func TestCreateListingValidation(t *testing.T) {
	f := newAuctionFixture()
	base := CreateListingInput{
		Seller:        "seller-sam",
		Title:         "vintage camera",
		StartingPrice: money("10.00"),
		MinIncrement:  money("1.00"),
		EndTime:       time.Now().UTC().Add(time.Hour),
	}

	cases := []struct {
		name   string
		mutate func(in *CreateListingInput)
	}{
		{"missing seller", func(in *CreateListingInput) { in.Seller = "" }},
		{"missing title", func(in *CreateListingInput) { in.Title = "" }},
		{"zero starting price", func(in *CreateListingInput) { in.StartingPrice = decimal.Zero }},
		{"zero increment", func(in *CreateListingInput) { in.MinIncrement = decimal.Zero }},
		{"reserve below start", func(in *CreateListingInput) {
			r := money("5.00")
			in.ReservePrice = &r
		}},
		{"end time in the past", func(in *CreateListingInput) { in.EndTime = time.Now().UTC().Add(-time.Minute) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := f.svc.CreateListing(context.Background(), in)
			assert.ErrorIs(t, err, util.ErrInvalidInput)
		})
	}
	f.listingRepo.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateListingPersistsActiveListing(t *testing.T) {
	f := newAuctionFixture()
	reserve := money("50.00")

	var created *domain.Listing
	f.listingRepo.On("CreateListing", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(2).(*domain.Listing)
	}).Return(nil)

	listing, err := f.svc.CreateListing(context.Background(), CreateListingInput{
		Seller:        "seller-sam",
		Title:         "vintage camera",
		StartingPrice: money("10.00"),
		MinIncrement:  money("1.00"),
		ReservePrice:  &reserve,
		EndTime:       time.Now().UTC().Add(time.Hour),
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.ListingStatusActive, created.Status)
	assert.NotEmpty(t, listing.ID)
	assert.True(t, listing.ReservePrice.Valid)
	assert.False(t, listing.HasBid)
}

func TestPlaceBidRejectsTooLowAndSelfBids(t *testing.T) {
	f := newAuctionFixture()
	listing := withLeader(activeListing("listing-1", "seller-sam"), "alice", "20.00")
	f.listingRepo.On("GetListingForUpdate", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)

	// Below highest bid + increment.
	_, err := f.svc.PlaceBid(context.Background(), "listing-1", "bob", money("20.50"))
	assert.ErrorIs(t, err, util.ErrBidTooLow)

	_, err = f.svc.PlaceBid(context.Background(), "listing-1", "seller-sam", money("30.00"))
	assert.ErrorIs(t, err, util.ErrSelfBid)

	assert.False(t, f.tx.committed)
	f.escrow.AssertNotCalled(t, "ReleaseFunds", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.escrow.AssertNotCalled(t, "HoldFunds", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceBidRejectsEndedAndInactiveAuctions(t *testing.T) {
	f := newAuctionFixture()

	ended := activeListing("listing-1", "seller-sam")
	ended.EndTime = time.Now().UTC().Add(-time.Minute)
	f.listingRepo.On("GetListingForUpdate", mock.Anything, mock.Anything, "listing-1").Return(ended, nil)
	_, err := f.svc.PlaceBid(context.Background(), "listing-1", "bob", money("15.00"))
	assert.ErrorIs(t, err, util.ErrAuctionEnded)

	cancelled := activeListing("listing-2", "seller-sam")
	cancelled.Status = domain.ListingStatusCancelled
	f.listingRepo.On("GetListingForUpdate", mock.Anything, mock.Anything, "listing-2").Return(cancelled, nil)
	_, err = f.svc.PlaceBid(context.Background(), "listing-2", "bob", money("15.00"))
	assert.ErrorIs(t, err, util.ErrAuctionNotActive)
}

func TestPlaceBidFirstBidAtStartingPrice(t *testing.T) {
	f := newAuctionFixture()
	listing := activeListing("listing-1", "seller-sam")

	f.listingRepo.On("GetListingForUpdate", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)
	f.escrow.On("HoldFunds", mock.Anything, mock.Anything, "listing-1", "bob", decimalEq("10.00")).
		Return(&domain.EscrowHold{ListingID: "listing-1", Bidder: "bob", Amount: money("11.00")},
			&domain.Wallet{Owner: "bob", Balance: money("100.00")}, nil)
	f.listingRepo.On("AppendBid", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.listingRepo.On("UpdateLeader", mock.Anything, mock.Anything, "listing-1", "bob", decimalEq("10.00")).Return(nil)
	f.notifier.On("BalanceUpdated", mock.Anything, "bob", mock.Anything,
		decimalEq("100.00"), decimalEq("89.00"), "bid_hold").Return()

	bid, err := f.svc.PlaceBid(context.Background(), "listing-1", "bob", money("10.00"))

	require.NoError(t, err)
	assert.Equal(t, "bob", bid.Bidder)
	assert.True(t, f.tx.committed)
	// No previous leader, so nothing to release.
	f.escrow.AssertNotCalled(t, "ReleaseFunds", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.listingRepo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestPlaceBidReleasesPreviousLeaderBeforeHolding(t *testing.T) {
	f := newAuctionFixture()
	listing := withLeader(activeListing("listing-1", "seller-sam"), "alice", "20.00")

	var calls []string
	f.listingRepo.On("GetListingForUpdate", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)
	f.escrow.On("ReleaseFunds", mock.Anything, mock.Anything, "listing-1", "alice", "outbid").Run(func(mock.Arguments) {
		calls = append(calls, "release")
	}).Return(&domain.EscrowHold{ListingID: "listing-1", Bidder: "alice", Amount: money("22.00")},
		&domain.Wallet{Owner: "alice", Balance: money("3.00")}, nil)
	f.escrow.On("HoldFunds", mock.Anything, mock.Anything, "listing-1", "bob", decimalEq("21.00")).Run(func(mock.Arguments) {
		calls = append(calls, "hold")
	}).Return(&domain.EscrowHold{ListingID: "listing-1", Bidder: "bob", Amount: money("23.10")},
		&domain.Wallet{Owner: "bob", Balance: money("100.00")}, nil)
	f.listingRepo.On("AppendBid", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.listingRepo.On("UpdateLeader", mock.Anything, mock.Anything, "listing-1", "bob", decimalEq("21.00")).Return(nil)
	f.notifier.On("BidRefunded", mock.Anything, "alice", decimalEq("22.00"), "outbid").Return()
	f.notifier.On("BalanceUpdated", mock.Anything, "alice", mock.Anything,
		decimalEq("3.00"), decimalEq("25.00"), "bid_refund").Return()
	f.notifier.On("BalanceUpdated", mock.Anything, "bob", mock.Anything,
		decimalEq("100.00"), decimalEq("76.90"), "bid_hold").Return()

	_, err := f.svc.PlaceBid(context.Background(), "listing-1", "bob", money("21.00"))

	require.NoError(t, err)
	// The displaced leader is refunded strictly before the new hold is taken.
	require.Equal(t, []string{"release", "hold"}, calls)
	f.escrow.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestPlaceBidLeaderRaisingOwnBid(t *testing.T) {
	f := newAuctionFixture()
	listing := withLeader(activeListing("listing-1", "seller-sam"), "alice", "20.00")

	f.listingRepo.On("GetListingForUpdate", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)
	// The 22.00 already on hold comes back before the 27.50 for the raised
	// bid goes out, so 6.00 of free cash is enough.
	f.escrow.On("ReleaseFunds", mock.Anything, mock.Anything, "listing-1", "alice", "raised own bid").
		Return(&domain.EscrowHold{ListingID: "listing-1", Bidder: "alice", Amount: money("22.00")},
			&domain.Wallet{Owner: "alice", Balance: money("6.00")}, nil)
	f.escrow.On("HoldFunds", mock.Anything, mock.Anything, "listing-1", "alice", decimalEq("25.00")).
		Return(&domain.EscrowHold{ListingID: "listing-1", Bidder: "alice", Amount: money("27.50")},
			&domain.Wallet{Owner: "alice", Balance: money("28.00")}, nil)
	f.listingRepo.On("AppendBid", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.listingRepo.On("UpdateLeader", mock.Anything, mock.Anything, "listing-1", "alice", decimalEq("25.00")).Return(nil)
	// Raising your own bid is not an outbid: no refund event for yourself,
	// just the net balance change.
	f.notifier.On("BalanceUpdated", mock.Anything, "alice", mock.Anything,
		decimalEq("28.00"), decimalEq("0.50"), "bid_hold").Return()

	_, err := f.svc.PlaceBid(context.Background(), "listing-1", "alice", money("25.00"))

	require.NoError(t, err)
	f.escrow.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "BidRefunded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceBidRollsBackLeaderReleaseWhenHoldFails(t *testing.T) {
	// The release and the failed hold share one transaction, so the
	// displaced leader's escrow hold comes back with the rollback and
	// their funds are never stranded.
	f := newAuctionFixture()
	listing := withLeader(activeListing("listing-1", "seller-sam"), "alice", "20.00")

	f.listingRepo.On("GetListingForUpdate", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)
	f.escrow.On("ReleaseFunds", mock.Anything, mock.Anything, "listing-1", "alice", "outbid").
		Return(&domain.EscrowHold{ListingID: "listing-1", Bidder: "alice", Amount: money("22.00")},
			&domain.Wallet{Owner: "alice", Balance: money("3.00")}, nil)
	f.escrow.On("HoldFunds", mock.Anything, mock.Anything, "listing-1", "bob", decimalEq("21.00")).
		Return(nil, nil, util.ErrInsufficientBalance)

	_, err := f.svc.PlaceBid(context.Background(), "listing-1", "bob", money("21.00"))

	assert.ErrorIs(t, err, util.ErrInsufficientBalance)
	assert.False(t, f.tx.committed)
	assert.True(t, f.tx.rolledBack)
	f.listingRepo.AssertNotCalled(t, "AppendBid", mock.Anything, mock.Anything, mock.Anything)
	f.listingRepo.AssertNotCalled(t, "UpdateLeader", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "BidRefunded", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "BalanceUpdated", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAuctionRefundsHighestBidder(t *testing.T) {
	f := newAuctionFixture()
	listing := withLeader(activeListing("listing-1", "seller-sam"), "alice", "20.00")

	f.listingRepo.On("GetListingByID", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)
	f.listingRepo.On("UpdateStatusIf", mock.Anything, mock.Anything, "listing-1",
		domain.ListingStatusActive, domain.ListingStatusCancelled).Return(true, nil)
	f.escrow.On("Release", mock.Anything, "listing-1", "alice", "auction_cancelled").Return(nil)
	f.notifier.On("AuctionCancelled", mock.Anything, "listing-1", "seller-sam").Return()

	err := f.svc.CancelAuction(context.Background(), "listing-1", "seller-sam")

	require.NoError(t, err)
	f.escrow.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCancelAuctionAfterEndTimeIsRejected(t *testing.T) {
	f := newAuctionFixture()
	listing := activeListing("listing-1", "seller-sam")
	listing.EndTime = time.Now().UTC().Add(-time.Minute)

	f.listingRepo.On("GetListingByID", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)

	err := f.svc.CancelAuction(context.Background(), "listing-1", "seller-sam")

	assert.ErrorIs(t, err, util.ErrAuctionEnded)
	f.listingRepo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAuctionLosesRaceToSettlement(t *testing.T) {
	f := newAuctionFixture()
	listing := withLeader(activeListing("listing-1", "seller-sam"), "alice", "20.00")

	f.listingRepo.On("GetListingByID", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)
	// Settlement claimed the listing between the read and the cancel.
	f.listingRepo.On("UpdateStatusIf", mock.Anything, mock.Anything, "listing-1",
		domain.ListingStatusActive, domain.ListingStatusCancelled).Return(false, nil)

	err := f.svc.CancelAuction(context.Background(), "listing-1", "seller-sam")

	assert.ErrorIs(t, err, util.ErrAuctionNotActive)
	f.escrow.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAuctionRetryCompletesStrandedRefund(t *testing.T) {
	// A first cancellation flipped the status but crashed before the
	// refund. Retrying on a cancelled listing releases the leader's hold
	// and reports success instead of rejecting the call.
	f := newAuctionFixture()
	listing := withLeader(activeListing("listing-1", "seller-sam"), "alice", "20.00")
	listing.Status = domain.ListingStatusCancelled

	f.listingRepo.On("GetListingByID", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)
	f.escrow.On("Release", mock.Anything, "listing-1", "alice", "auction_cancelled").Return(nil)

	err := f.svc.CancelAuction(context.Background(), "listing-1", "seller-sam")

	require.NoError(t, err)
	f.escrow.AssertExpectations(t)
	// The status is already cancelled; no second swap and no duplicate
	// cancellation event.
	f.listingRepo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "AuctionCancelled", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelAuctionRetryWithoutLeaderIsNoOp(t *testing.T) {
	f := newAuctionFixture()
	listing := activeListing("listing-1", "seller-sam")
	listing.Status = domain.ListingStatusCancelled

	f.listingRepo.On("GetListingByID", mock.Anything, mock.Anything, "listing-1").Return(listing, nil)

	err := f.svc.CancelAuction(context.Background(), "listing-1", "seller-sam")

	require.NoError(t, err)
	f.escrow.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
