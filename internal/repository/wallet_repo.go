// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"bidflow/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet to the database using the provided DBExecutor.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByOwner retrieves a wallet by its owner identity.
	GetWalletByOwner(ctx context.Context, q DBExecutor, owner string) (*domain.Wallet, error)
	// EnsureWallet returns the owner's wallet, creating an empty one if none exists.
	EnsureWallet(ctx context.Context, q DBExecutor, owner string, role domain.WalletRole) (*domain.Wallet, error)
	// AdjustBalance applies a signed delta to the owner's balance atomically.
	// It fails with util.ErrInsufficientBalance when the delta would drive
	// the balance negative; wallets are never read-then-written.
	AdjustBalance(ctx context.Context, q DBExecutor, owner string, delta decimal.Decimal) error
}
