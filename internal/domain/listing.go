// internal/domain/listing.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus is the auction lifecycle state stored on the listing.
// The status field doubles as the settlement lock: the transition
// active -> processing is performed with a conditional update and only
// the caller that wins that update may mutate the listing's financial
// fields. Terminal states: sold, expired, reserve_not_met, cancelled.
// The error state is terminal until the recovery sweeper or an operator
// re-arms the listing back to active.
type ListingStatus string

const (
	ListingStatusActive        ListingStatus = "active"
	ListingStatusProcessing    ListingStatus = "processing"
	ListingStatusSold          ListingStatus = "sold"
	ListingStatusExpired       ListingStatus = "expired"
	ListingStatusReserveNotMet ListingStatus = "reserve_not_met"
	ListingStatusCancelled     ListingStatus = "cancelled"
	ListingStatusError         ListingStatus = "error"
)

// Listing holds an auction listing together with the denormalized cache of
// the current leader. HighestBidder/HighestBid mirror the maximum of the
// bids table; the bid history remains the ground truth for amounts.
type Listing struct {
	ID            string              `db:"id" json:"id"` // UUID
	Seller        string              `db:"seller" json:"seller"`
	Title         string              `db:"title" json:"title"`
	Status        ListingStatus       `db:"status" json:"status"`
	StartingPrice decimal.Decimal     `db:"starting_price" json:"starting_price"`
	MinIncrement  decimal.Decimal     `db:"min_increment" json:"min_increment"`
	ReservePrice  decimal.NullDecimal `db:"reserve_price" json:"reserve_price"` // Optional seller minimum
	EndTime       time.Time           `db:"end_time" json:"end_time"`
	HighestBidder *string             `db:"highest_bidder" json:"highest_bidder"`
	HighestBid    decimal.NullDecimal `db:"highest_bid" json:"highest_bid"`
	BidCount      int                 `db:"bid_count" json:"bid_count"`
	HasBid        bool                `db:"has_bid" json:"has_bid"` // Normalized at bid acceptance
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

// HasValidBid reports whether the auction received at least one real bid.
// The normalized has_bid flag is authoritative for rows written by this
// system; the cached leader fields cover rows that predate it.
func (l *Listing) HasValidBid() bool {
	if l.HasBid {
		return true
	}
	return l.HighestBidder != nil || l.HighestBid.Valid || l.BidCount > 0
}

// Bid is one entry in a listing's append-only, chronological bid history.
type Bid struct {
	ID        int64           `db:"id" json:"id"` // Primary key, BIGSERIAL in DB
	ListingID string          `db:"listing_id" json:"listing_id"`
	Bidder    string          `db:"bidder" json:"bidder"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
