// internal/domain/hold.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EscrowHold reserves a bidder's funds (bid plus buyer premium) against a
// single auction position. A hold exists between bid acceptance and either
// a refund (outbid, cancellation, reserve not met) or consumption by
// settlement. At most one hold per (listing, bidder) pair.
type EscrowHold struct {
	ListingID string          `db:"listing_id" json:"listing_id"`
	Bidder    string          `db:"bidder" json:"bidder"`
	Amount    decimal.Decimal `db:"amount" json:"amount"` // The amount actually debited
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
