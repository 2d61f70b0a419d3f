// internal/repository/postgres/hold_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"bidflow/internal/domain"
	"bidflow/internal/repository"
	"bidflow/internal/util"

	"github.com/jmoiron/sqlx"
)

// HoldRepository implements repository.HoldRepository for PostgreSQL.
type HoldRepository struct {
}

// NewHoldRepository creates a new HoldRepository.
func NewHoldRepository(db *sqlx.DB) repository.HoldRepository {
	return &HoldRepository{}
}

// CreateHold records a new escrow hold. The primary key on
// (listing_id, bidder) rejects a second hold for the same position.
func (r *HoldRepository) CreateHold(ctx context.Context, q repository.DBExecutor, hold *domain.EscrowHold) error {
	query := `INSERT INTO escrow_holds (listing_id, bidder, amount, created_at)
              VALUES ($1, $2, $3, $4)`
	_, err := q.ExecContext(ctx, query, hold.ListingID, hold.Bidder, hold.Amount, hold.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create escrow hold for listing %s bidder %s: %w", hold.ListingID, hold.Bidder, err)
	}
	return nil
}

// GetHold retrieves the hold for (listing, bidder).
func (r *HoldRepository) GetHold(ctx context.Context, q repository.DBExecutor, listingID, bidder string) (*domain.EscrowHold, error) {
	var hold domain.EscrowHold
	query := `SELECT listing_id, bidder, amount, created_at
              FROM escrow_holds WHERE listing_id = $1 AND bidder = $2`
	err := q.GetContext(ctx, &hold, query, listingID, bidder)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get escrow hold for listing %s bidder %s: %w", listingID, bidder, err)
	}
	return &hold, nil
}

// DeleteHold removes the hold and reports whether one existed.
func (r *HoldRepository) DeleteHold(ctx context.Context, q repository.DBExecutor, listingID, bidder string) (bool, error) {
	query := `DELETE FROM escrow_holds WHERE listing_id = $1 AND bidder = $2`
	result, err := q.ExecContext(ctx, query, listingID, bidder)
	if err != nil {
		return false, fmt.Errorf("failed to delete escrow hold for listing %s bidder %s: %w", listingID, bidder, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected deleting hold for listing %s bidder %s: %w", listingID, bidder, err)
	}
	return rowsAffected > 0, nil
}
