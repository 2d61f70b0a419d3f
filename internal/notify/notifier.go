// internal/notify/notifier.go

// Package notify carries settlement outcomes to interested parties.
// Delivery is fire-and-forget with at-least-once semantics: emitting an
// event never fails a money movement, and consumers must tolerate
// duplicates (the settlement entry point re-emits OrderCreated on retries).
package notify

import (
	"context"
	"time"

	"bidflow/internal/domain"

	"github.com/shopspring/decimal"
)

// Notifier is injected into the services at construction time.
// Implementations must not block on slow transports.
type Notifier interface {
	OrderCreated(ctx context.Context, order *domain.Order)
	AuctionEnded(ctx context.Context, listingID string, winner *string, finalBid *decimal.Decimal)
	AuctionReserveNotMet(ctx context.Context, listingID string, reservePrice, highBid decimal.Decimal)
	AuctionCancelled(ctx context.Context, listingID, by string)
	BalanceUpdated(ctx context.Context, owner string, role domain.WalletRole, previous, next decimal.Decimal, reason string)
	BidRefunded(ctx context.Context, owner string, amount decimal.Decimal, reason string)
}

// Event payloads as they cross the wire to the notification transport.

type OrderCreatedEvent struct {
	OrderID        string          `json:"order_id"`
	ListingID      string          `json:"listing_id"`
	Buyer          string          `json:"buyer"`
	Seller         string          `json:"seller"`
	Price          decimal.Decimal `json:"price"`
	SellerEarnings decimal.Decimal `json:"seller_earnings"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	WasAuction     bool            `json:"was_auction"`
	CreatedAt      time.Time       `json:"created_at"`
}

type AuctionEndedEvent struct {
	ListingID string           `json:"listing_id"`
	Winner    *string          `json:"winner,omitempty"`
	FinalBid  *decimal.Decimal `json:"final_bid,omitempty"`
}

type AuctionReserveNotMetEvent struct {
	ListingID    string          `json:"listing_id"`
	ReservePrice decimal.Decimal `json:"reserve_price"`
	HighBid      decimal.Decimal `json:"high_bid"`
}

type AuctionCancelledEvent struct {
	ListingID string `json:"listing_id"`
	By        string `json:"by"`
}

type BalanceUpdatedEvent struct {
	Owner    string            `json:"owner"`
	Role     domain.WalletRole `json:"role"`
	Previous decimal.Decimal   `json:"previous"`
	Next     decimal.Decimal   `json:"next"`
	Reason   string            `json:"reason"`
}

type BidRefundedEvent struct {
	Owner  string          `json:"owner"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}
