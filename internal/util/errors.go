// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrListingNotFound     = errors.New("listing not found")
	ErrAuctionNotActive    = errors.New("auction is not active")
	ErrAuctionNotEnded     = errors.New("auction has not ended yet")
	ErrAuctionEnded        = errors.New("auction has already ended")
	ErrBidTooLow           = errors.New("bid is below the minimum acceptable amount")
	ErrSelfBid             = errors.New("seller cannot bid on their own listing")
	ErrOrderNotFound       = errors.New("order not found")
)

// IsError reports whether err matches the given sentinel error.
// It is a thin wrapper around errors.Is so callers outside this
// package do not need to import errors directly.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
