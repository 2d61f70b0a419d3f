// internal/repository/postgres/listing_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ListingRepository implements repository.ListingRepository for PostgreSQL.
type ListingRepository struct {
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db *sqlx.DB) repository.ListingRepository {
	return &ListingRepository{}
}

const listingColumns = `id, seller, title, status, starting_price, min_increment, reserve_price,
	end_time, highest_bidder, highest_bid, bid_count, has_bid, created_at, updated_at`

// CreateListing inserts a new auction listing.
func (r *ListingRepository) CreateListing(ctx context.Context, q repository.DBExecutor, listing *domain.Listing) error {
	query := `INSERT INTO listings (id, seller, title, status, starting_price, min_increment, reserve_price,
              end_time, highest_bidder, highest_bid, bid_count, has_bid, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := q.ExecContext(ctx, query,
		listing.ID, listing.Seller, listing.Title, listing.Status,
		listing.StartingPrice, listing.MinIncrement, listing.ReservePrice,
		listing.EndTime, listing.HighestBidder, listing.HighestBid,
		listing.BidCount, listing.HasBid, listing.CreatedAt, listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetListingByID retrieves a listing by its ID.
func (r *ListingRepository) GetListingByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Listing, error) {
	var listing domain.Listing
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	err := q.GetContext(ctx, &listing, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return &listing, nil
}

// GetListingForUpdate retrieves a listing under a row lock. Callers must
// run it inside a transaction; the lock is held until that transaction
// finishes.
func (r *ListingRepository) GetListingForUpdate(ctx context.Context, q repository.DBExecutor, id string) (*domain.Listing, error) {
	var listing domain.Listing
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &listing, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to lock listing %s: %w", id, err)
	}
	return &listing, nil
}

// UpdateStatusIf is the compare-and-swap transition. A single conditional
// UPDATE is atomic in PostgreSQL, so exactly one of any number of
// concurrent callers observes matched=true for the same transition.
func (r *ListingRepository) UpdateStatusIf(ctx context.Context, q repository.DBExecutor, id string, expected, next domain.ListingStatus) (bool, error) {
	query := `UPDATE listings SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, next, time.Now().UTC(), id, expected)
	if err != nil {
		return false, fmt.Errorf("failed conditional status update for listing %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for listing %s: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// UpdateLeader refreshes the denormalized leader cache and normalizes the
// has_bid flag at bid-acceptance time.
func (r *ListingRepository) UpdateLeader(ctx context.Context, q repository.DBExecutor, id string, bidder string, amount decimal.Decimal) error {
	query := `UPDATE listings
              SET highest_bidder = $1, highest_bid = $2, bid_count = bid_count + 1,
                  has_bid = TRUE, updated_at = $3
              WHERE id = $4`
	result, err := q.ExecContext(ctx, query, bidder, amount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update leader for listing %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected updating leader for listing %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrListingNotFound
	}
	return nil
}

// AppendBid adds an entry to the chronological bid history.
func (r *ListingRepository) AppendBid(ctx context.Context, q repository.DBExecutor, bid *domain.Bid) error {
	query := `INSERT INTO bids (listing_id, bidder, amount, created_at)
              VALUES ($1, $2, $3, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, bid.ListingID, bid.Bidder, bid.Amount, bid.CreatedAt).Scan(&bid.ID)
	if err != nil {
		return fmt.Errorf("failed to append bid for listing %s: %w", bid.ListingID, err)
	}
	return nil
}

// GetBidsByListingID returns the full bid history, oldest first.
func (r *ListingRepository) GetBidsByListingID(ctx context.Context, q repository.DBExecutor, listingID string) ([]domain.Bid, error) {
	bids := []domain.Bid{}
	query := `SELECT id, listing_id, bidder, amount, created_at
              FROM bids WHERE listing_id = $1 ORDER BY created_at ASC, id ASC`
	if err := q.SelectContext(ctx, &bids, query, listingID); err != nil {
		return nil, fmt.Errorf("failed to fetch bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// FindDueForSettlement returns listings the recovery sweeper should re-drive.
// staleThreshold bounds how long an in-flight processing claim is trusted
// before being presumed crashed.
func (r *ListingRepository) FindDueForSettlement(ctx context.Context, q repository.DBExecutor, now time.Time, staleThreshold time.Duration) ([]domain.Listing, error) {
	listings := []domain.Listing{}
	query := `SELECT ` + listingColumns + ` FROM listings
              WHERE (status = 'active' AND end_time <= $1)
                 OR (status = 'processing' AND end_time <= $2)
                 OR (status = 'error' AND end_time <= $1)
              ORDER BY end_time ASC`
	cutoff := now.Add(-staleThreshold)
	if err := q.SelectContext(ctx, &listings, query, now, cutoff); err != nil {
		return nil, fmt.Errorf("failed to find listings due for settlement: %w", err)
	}
	return listings, nil
}

// FindByStatus lists listings in a given state, newest first.
func (r *ListingRepository) FindByStatus(ctx context.Context, q repository.DBExecutor, status domain.ListingStatus, limit, offset int) ([]domain.Listing, error) {
	listings := []domain.Listing{}
	query := `SELECT ` + listingColumns + ` FROM listings
              WHERE status = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &listings, query, status, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to find listings with status %s: %w", status, err)
	}
	return listings, nil
}
