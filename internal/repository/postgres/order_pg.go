// internal/repository/postgres/order_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// OrderRepository implements repository.OrderRepository for PostgreSQL.
type OrderRepository struct {
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) repository.OrderRepository {
	return &OrderRepository{}
}

// CreateOrder inserts a new order. The unique index on listing_id makes a
// duplicate settlement fail loudly instead of double-paying.
func (r *OrderRepository) CreateOrder(ctx context.Context, q repository.DBExecutor, order *domain.Order) error {
	query := `INSERT INTO orders (id, listing_id, buyer, seller, price, seller_earnings, platform_fee,
              was_auction, final_bid, shipping_status, payment_status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := q.ExecContext(ctx, query,
		order.ID, order.ListingID, order.Buyer, order.Seller,
		order.Price, order.SellerEarnings, order.PlatformFee,
		order.WasAuction, order.FinalBid, order.ShippingStatus,
		order.PaymentStatus, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order for listing %s: %w", order.ListingID, err)
	}
	return nil
}

// GetOrderByListingID retrieves the order settled for a listing.
func (r *OrderRepository) GetOrderByListingID(ctx context.Context, q repository.DBExecutor, listingID string) (*domain.Order, error) {
	var order domain.Order
	query := `SELECT id, listing_id, buyer, seller, price, seller_earnings, platform_fee,
              was_auction, final_bid, shipping_status, payment_status, created_at
              FROM orders WHERE listing_id = $1`
	err := q.GetContext(ctx, &order, query, listingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order for listing %s: %w", listingID, err)
	}
	return &order, nil
}

// GetSellerStats returns the seller's cumulative sales count and earnings
// across all settled orders. A seller with no orders gets zeroes.
func (r *OrderRepository) GetSellerStats(ctx context.Context, q repository.DBExecutor, seller string) (int64, decimal.Decimal, error) {
	var stats struct {
		Sales   int64           `db:"sales"`
		Revenue decimal.Decimal `db:"revenue"`
	}
	query := `SELECT COUNT(*) AS sales, COALESCE(SUM(seller_earnings), 0) AS revenue
              FROM orders WHERE seller = $1`
	if err := q.GetContext(ctx, &stats, query, seller); err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to get seller stats for %s: %w", seller, err)
	}
	return stats.Sales, stats.Revenue, nil
}
