// internal/domain/order.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingStatus tracks post-sale fulfilment. Orders are created with
// shipping pending; later transitions are owned by the fulfilment flow.
type ShippingStatus string

const (
	ShippingStatusPending   ShippingStatus = "pending"
	ShippingStatusShipped   ShippingStatus = "shipped"
	ShippingStatusDelivered ShippingStatus = "delivered"
)

// PaymentStatus of an order. Settlement only ever creates orders whose
// payment has completed; there is no partially paid order.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Order is created exactly once per successful settlement. The unique
// constraint on ListingID in the database is the idempotence backstop.
type Order struct {
	ID             string              `db:"id" json:"id"` // UUID
	ListingID      string              `db:"listing_id" json:"listing_id"`
	Buyer          string              `db:"buyer" json:"buyer"`
	Seller         string              `db:"seller" json:"seller"`
	Price          decimal.Decimal     `db:"price" json:"price"`
	SellerEarnings decimal.Decimal     `db:"seller_earnings" json:"seller_earnings"`
	PlatformFee    decimal.Decimal     `db:"platform_fee" json:"platform_fee"`
	WasAuction     bool                `db:"was_auction" json:"was_auction"`
	FinalBid       decimal.NullDecimal `db:"final_bid" json:"final_bid"`
	ShippingStatus ShippingStatus      `db:"shipping_status" json:"shipping_status"`
	PaymentStatus  PaymentStatus       `db:"payment_status" json:"payment_status"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
}
