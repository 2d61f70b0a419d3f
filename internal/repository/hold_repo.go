// internal/repository/hold_repo.go
package repository

import (
	"context"

	"bidflow/internal/domain"
)

// HoldRepository defines the interface for escrow hold bookkeeping.
type HoldRepository interface {
	// CreateHold records a new escrow hold for (listing, bidder).
	CreateHold(ctx context.Context, q DBExecutor, hold *domain.EscrowHold) error
	// GetHold retrieves the hold for (listing, bidder), or util.ErrNotFound.
	GetHold(ctx context.Context, q DBExecutor, listingID, bidder string) (*domain.EscrowHold, error)
	// DeleteHold removes the hold and reports whether one existed. Callers
	// rely on the boolean to make refunds idempotent against double-calls.
	DeleteHold(ctx context.Context, q DBExecutor, listingID, bidder string) (bool, error)
}
