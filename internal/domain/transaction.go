// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a ledger entry.
type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypePurchase     TransactionType = "purchase"
	TransactionTypeAuctionSale  TransactionType = "auction_sale"
	TransactionTypePlatformFee  TransactionType = "platform_fee"
	TransactionTypeBuyerPremium TransactionType = "buyer_premium"
	TransactionTypeBidHold      TransactionType = "bid_hold"
	TransactionTypeBidRefund    TransactionType = "bid_refund"
	TransactionTypeTierCredit   TransactionType = "tier_credit"
)

// TransactionStatus defines the status of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry. Entries are never mutated
// after reaching the completed status; a completed entry is the single
// source of truth for "already paid" during crash recovery.
type Transaction struct {
	ID        int64             `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	Reference string            `db:"reference" json:"reference"`   // UUID, stable external identifier
	Type      TransactionType   `db:"type" json:"type"`             // Ledger entry type
	Amount    decimal.Decimal   `db:"amount" json:"amount"`         // Always positive, NUMERIC(20, 2) in DB
	FromOwner *string           `db:"from_owner" json:"from_owner"` // Source party (nullable for deposits)
	ToOwner   *string           `db:"to_owner" json:"to_owner"`     // Destination party (nullable for holds)
	Status    TransactionStatus `db:"status" json:"status"`         // completed | pending | failed
	ListingID *string           `db:"listing_id" json:"listing_id"` // Associated listing, if any
	OrderID   *string           `db:"order_id" json:"order_id"`     // Associated order, if any
	Memo      *string           `db:"memo" json:"memo"`             // Audit detail (tier, rates, reason)
	CreatedAt time.Time         `db:"created_at" json:"created_at"` // Timestamp of record creation
}

// NewTransaction creates a completed ledger entry. The caller supplies the
// reference so retried settlements can reuse a deterministic identifier.
func NewTransaction(
	reference string,
	txType TransactionType,
	amount decimal.Decimal,
	fromOwner *string,
	toOwner *string,
	listingID *string,
	orderID *string,
	memo *string,
) *Transaction {
	return &Transaction{
		Reference: reference,
		Type:      txType,
		Amount:    amount,
		FromOwner: fromOwner,
		ToOwner:   toOwner,
		Status:    TransactionStatusCompleted,
		ListingID: listingID,
		OrderID:   orderID,
		Memo:      memo,
		CreatedAt: time.Now().UTC(),
	}
}
