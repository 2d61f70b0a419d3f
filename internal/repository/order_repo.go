// internal/repository/order_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"bidflow/internal/domain"
)

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// CreateOrder inserts a new order. The unique constraint on listing_id
	// guarantees at most one order per listing even under racing retries.
	CreateOrder(ctx context.Context, q DBExecutor, order *domain.Order) error
	// GetOrderByListingID retrieves the order settled for a listing,
	// or util.ErrNotFound if settlement never completed.
	GetOrderByListingID(ctx context.Context, q DBExecutor, listingID string) (*domain.Order, error)
	// GetSellerStats returns the seller's cumulative completed sales count
	// and earnings, the inputs to commission tier selection.
	GetSellerStats(ctx context.Context, q DBExecutor, seller string) (int64, decimal.Decimal, error)
}
