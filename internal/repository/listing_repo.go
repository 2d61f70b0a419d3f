// internal/repository/listing_repo.go
package repository

import (
	"context"
	"time"

	"bidflow/internal/domain"

	"github.com/shopspring/decimal"
)

// ListingRepository defines the interface for auction listing operations,
// including the append-only bid history that belongs to each listing.
type ListingRepository interface {
	// CreateListing adds a new auction listing.
	CreateListing(ctx context.Context, q DBExecutor, listing *domain.Listing) error
	// GetListingByID retrieves a listing by its ID.
	GetListingByID(ctx context.Context, q DBExecutor, id string) (*domain.Listing, error)
	// GetListingForUpdate retrieves a listing and takes a row lock on it,
	// serializing concurrent bid placement on the same listing. It must be
	// called with a transaction-scoped executor.
	GetListingForUpdate(ctx context.Context, q DBExecutor, id string) (*domain.Listing, error)
	// UpdateStatusIf performs the compare-and-swap transition used as the
	// settlement lock: status is set to next only if it currently equals
	// expected. It reports whether a row actually changed.
	UpdateStatusIf(ctx context.Context, q DBExecutor, id string, expected, next domain.ListingStatus) (bool, error)
	// UpdateLeader refreshes the denormalized leader cache after a bid is
	// accepted: highest bidder/amount, bid count, and the has_bid flag.
	UpdateLeader(ctx context.Context, q DBExecutor, id string, bidder string, amount decimal.Decimal) error
	// AppendBid adds an entry to a listing's chronological bid history.
	AppendBid(ctx context.Context, q DBExecutor, bid *domain.Bid) error
	// GetBidsByListingID returns the full bid history, oldest first.
	GetBidsByListingID(ctx context.Context, q DBExecutor, listingID string) ([]domain.Bid, error)
	// FindDueForSettlement returns listings the recovery sweeper should
	// re-drive: expired actives, stale processing claims, and errored
	// listings whose end time has passed.
	FindDueForSettlement(ctx context.Context, q DBExecutor, now time.Time, staleThreshold time.Duration) ([]domain.Listing, error)
	// FindByStatus lists listings in a given state, newest first.
	FindByStatus(ctx context.Context, q DBExecutor, status domain.ListingStatus, limit, offset int) ([]domain.Listing, error)
}
